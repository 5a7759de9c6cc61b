package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/domain/user"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	persistence "github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/user"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/security"
	"github.com/go-playground/validator/v10"
)

// Public messages shared with API clients. Clients match on them to pick a
// localized notice, so they are part of the wire contract.
const (
	MsgInvalidCredentials = "Invalid login credentials"
	MsgEmailNotConfirmed  = "Email not confirmed"
	MsgUserExists         = "User already registered"
	MsgSignupDisabled     = "Signups not allowed for this instance"
)

// AuthConfig holds the token and link settings for AuthService.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	PublicBaseURL string
	// AllowSignup opens the public sign-up route. Off, admins come only
	// from EnsureAdmin.
	AllowSignup bool
}

// AuthService handles authentication workflows and JWT operations
type AuthService struct {
	adminRepo user.AdminRepository
	mailer    email.Service
	config    AuthConfig
	logger    *logging.ChanneledLogger
	validate  *validator.Validate
}

// NewAuthService creates a new authentication service
func NewAuthService(adminRepo user.AdminRepository, mailer email.Service, config AuthConfig, logger *logging.ChanneledLogger) *AuthService {
	if config.TokenTTL <= 0 {
		config.TokenTTL = 24 * time.Hour
	}
	return &AuthService{
		adminRepo: adminRepo,
		mailer:    mailer,
		config:    config,
		logger:    logger,
		validate:  validator.New(),
	}
}

// AuthResult holds authentication result data
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *user.Admin `json:"user"`
}

// SignUpResult reports whether the new account still needs email confirmation.
type SignUpResult struct {
	User                 *user.Admin `json:"user"`
	ConfirmationRequired bool        `json:"confirmationRequired"`
}

// Login checks credentials and issues an admin token.
func (a *AuthService) Login(ctx context.Context, emailAddr, password string) (*AuthResult, error) {
	admin, err := a.adminRepo.FindByEmail(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	if admin == nil {
		a.logger.LogAuthOperation("login", emailAddr, false)
		return nil, apperr.UnauthorizedErr(MsgInvalidCredentials)
	}

	ok, err := security.CheckPassword(admin.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		a.logger.LogAuthOperation("login", emailAddr, false)
		return nil, apperr.UnauthorizedErr(MsgInvalidCredentials)
	}
	if !admin.IsConfirmed() {
		a.logger.LogAuthOperation("login_unconfirmed", emailAddr, false)
		return nil, apperr.ForbiddenErr(MsgEmailNotConfirmed)
	}

	token, expires, err := security.GenerateAdminToken(admin.ID, admin.Email, a.config.JWTSecret, a.config.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.LogAuthOperation("login", emailAddr, true)
	return &AuthResult{Token: token, ExpiresAt: expires, User: admin}, nil
}

// SignUp creates an admin and mails a confirmation link. With mail delivery
// disabled the account is confirmed immediately. It fails with Forbidden
// unless AllowSignup is set.
func (a *AuthService) SignUp(ctx context.Context, emailAddr, password string) (*SignUpResult, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if !a.config.AllowSignup {
		a.logger.LogAuthOperation("signup_disabled", emailAddr, false)
		return nil, apperr.ForbiddenErr(MsgSignupDisabled)
	}
	if err := a.validate.Var(emailAddr, "required,email"); err != nil {
		return nil, apperr.InvalidErr("a valid email is required", map[string]string{"email": "email"})
	}
	if len(password) < security.MinPasswordLength {
		return nil, apperr.InvalidErr(
			fmt.Sprintf("password must be at least %d characters", security.MinPasswordLength),
			map[string]string{"password": "min"})
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	token, err := security.GenerateSecureToken(32)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	admin := &user.Admin{
		ID:                security.GenerateULID(),
		Email:             emailAddr,
		PasswordHash:      hash,
		ConfirmationToken: token,
		CreatedAt:         now,
	}
	confirmationRequired := a.mailer.Enabled()
	if !confirmationRequired {
		admin.ConfirmationToken = ""
		admin.ConfirmedAt = &now
	}

	if err := a.adminRepo.Store(ctx, admin); err != nil {
		if errors.Is(err, persistence.ErrEmailTaken) {
			return nil, apperr.ConflictErr(MsgUserExists)
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	if confirmationRequired {
		link := a.config.PublicBaseURL + "/api/v1/auth/confirm?token=" + url.QueryEscape(token)
		if err := a.mailer.SendSignupConfirmation(admin.Email, link); err != nil {
			a.logger.Auth().Error("Confirmation email failed after sign-up", "error", err.Error(), "id", admin.ID)
			return nil, fmt.Errorf("failed to send confirmation email: %w", err)
		}
	} else {
		a.logger.Auth().Info("Email delivery disabled, admin auto-confirmed", "id", admin.ID)
	}

	a.logger.LogAuthOperation("signup", admin.Email, true)
	return &SignUpResult{User: admin, ConfirmationRequired: confirmationRequired}, nil
}

// Confirm activates the account owning token.
func (a *AuthService) Confirm(ctx context.Context, token string) (*user.Admin, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperr.InvalidErr("confirmation token is required", nil)
	}
	admin, err := a.adminRepo.FindByConfirmationToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up confirmation token: %w", err)
	}
	if admin == nil {
		return nil, apperr.NotFoundErr("confirmation link is invalid or already used")
	}

	now := time.Now().UTC()
	if err := a.adminRepo.MarkConfirmed(ctx, admin.ID, now); err != nil {
		return nil, fmt.Errorf("failed to confirm admin: %w", err)
	}
	admin.ConfirmedAt = &now
	admin.ConfirmationToken = ""

	a.logger.LogAuthOperation("confirm", admin.Email, true)
	return admin, nil
}

// ValidateToken checks an admin token without touching the database.
func (a *AuthService) ValidateToken(token string) (*security.AdminClaims, error) {
	if token == "" {
		return nil, apperr.UnauthorizedErr("authentication required")
	}
	claims, err := security.ParseAdminToken(token, a.config.JWTSecret)
	if err != nil {
		return nil, &apperr.AppError{Kind: apperr.Unauthorized, PublicMsg: "invalid or expired session", Err: err}
	}
	return claims, nil
}

// CurrentUser resolves a token to its account. A missing or invalid token
// yields nil without error.
func (a *AuthService) CurrentUser(ctx context.Context, token string) (*user.Admin, error) {
	claims, err := a.ValidateToken(token)
	if err != nil {
		return nil, nil
	}
	admin, err := a.adminRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	return admin, nil
}

// EnsureAdmin seeds a confirmed admin when the email has no account yet.
// Blank credentials are a no-op.
func (a *AuthService) EnsureAdmin(ctx context.Context, emailAddr, password string) (bool, error) {
	if emailAddr == "" || password == "" {
		return false, nil
	}
	existing, err := a.adminRepo.FindByEmail(ctx, emailAddr)
	if err != nil {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	admin := &user.Admin{
		ID:           security.GenerateULID(),
		Email:        emailAddr,
		PasswordHash: hash,
		ConfirmedAt:  &now,
		CreatedAt:    now,
	}
	if err := a.adminRepo.Store(ctx, admin); err != nil {
		return false, fmt.Errorf("failed to seed admin: %w", err)
	}
	a.logger.Auth().Info("Seeded admin account", "id", admin.ID)
	return true, nil
}
