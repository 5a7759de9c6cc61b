// Package user provides the SQL-based implementation of the admin account repository.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/user"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/database"
)

// ErrEmailTaken is returned by Store when the email already has an account.
var ErrEmailTaken = errors.New("email already registered")

const adminColumns = `id, email, password_hash, confirmation_token, confirmed_at, created_at`

// SQLAdminRepository is the SQL-based implementation of the AdminRepository.
type SQLAdminRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

var _ user.AdminRepository = (*SQLAdminRepository)(nil)

// NewSQLAdminRepository creates a new instance of the repository.
func NewSQLAdminRepository(db *sql.DB, logger *logging.ChanneledLogger) *SQLAdminRepository {
	return &SQLAdminRepository{
		db:     db,
		logger: logger,
	}
}

// FindByID retrieves an admin by their unique identifier.
func (r *SQLAdminRepository) FindByID(ctx context.Context, id string) (*user.Admin, error) {
	return r.findOne(ctx, "id", id)
}

// FindByEmail matches case-insensitively.
func (r *SQLAdminRepository) FindByEmail(ctx context.Context, email string) (*user.Admin, error) {
	return r.findOne(ctx, "email", normalizeEmail(email))
}

func (r *SQLAdminRepository) FindByConfirmationToken(ctx context.Context, token string) (*user.Admin, error) {
	if token == "" {
		return nil, nil
	}
	return r.findOne(ctx, "confirmation_token", token)
}

func (r *SQLAdminRepository) findOne(ctx context.Context, column, value string) (*user.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_users WHERE ` + column + ` = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading admin", "by", column)

	admin, err := scanAdmin(r.db.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Database().Debug("Admin not found", "by", column)
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to load admin", "error", err.Error(), "by", column)
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return admin, nil
}

// Store creates the account. The email is stored lower-cased.
func (r *SQLAdminRepository) Store(ctx context.Context, admin *user.Admin) error {
	admin.Email = normalizeEmail(admin.Email)

	existing, err := r.FindByEmail(ctx, admin.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	query := `INSERT INTO admin_users (` + adminColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

	var confirmedAt sql.NullString
	if admin.ConfirmedAt != nil {
		confirmedAt = sql.NullString{String: database.FormatTime(*admin.ConfirmedAt), Valid: true}
	}
	var token sql.NullString
	if admin.ConfirmationToken != "" {
		token = sql.NullString{String: admin.ConfirmationToken, Valid: true}
	}

	start := time.Now()
	r.logger.Database().Debug("Executing admin insert", "id", admin.ID)

	_, err = r.db.ExecContext(ctx, query, admin.ID, admin.Email, admin.PasswordHash, token,
		confirmedAt, database.FormatTime(admin.CreatedAt))
	if err != nil {
		r.logger.Database().Error("Admin insert failed", "error", err.Error(), "id", admin.ID)
		return fmt.Errorf("failed to insert admin: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Admin insert completed", "id", admin.ID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return nil
}

// MarkConfirmed stamps the confirmation time and burns the token.
func (r *SQLAdminRepository) MarkConfirmed(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE admin_users SET confirmed_at = ?, confirmation_token = NULL WHERE id = ?`

	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, database.FormatTime(at), id)
	if err != nil {
		r.logger.Database().Error("Admin confirmation failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to confirm admin: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("failed to confirm admin %s: no such row", id)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *SQLAdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdmin(row rowScanner) (*user.Admin, error) {
	var (
		a                  user.Admin
		token, confirmedAt sql.NullString
		createdAt          string
	)
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &token, &confirmedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan admin: %w", err)
	}
	a.ConfirmationToken = token.String
	if confirmedAt.Valid {
		t, err := database.ParseTime(confirmedAt.String)
		if err != nil {
			return nil, err
		}
		a.ConfirmedAt = &t
	}
	if a.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
