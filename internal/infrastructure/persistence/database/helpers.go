package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/pkg/config"
)

// TimeLayout is a fixed-width UTC layout so stored timestamps sort lexically.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a stored timestamp, accepting RFC3339 variants written by other tools.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// NullString maps an optional string onto a nullable column value.
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// StringPtr maps a nullable column value back onto an optional string.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// Status describes database health for the status endpoint.
type Status struct {
	Driver    string        `json:"driver"`
	Healthy   bool          `json:"healthy"`
	Latency   time.Duration `json:"latency"`
	OpenConns int           `json:"openConnections"`
	InUse     int           `json:"inUse"`
	Error     string        `json:"error,omitempty"`
}

// CheckStatus runs a trivial query and reports pool statistics.
func CheckStatus(ctx context.Context, db *DB, logger *logging.ChanneledLogger) Status {
	start := time.Now()
	status := Status{Driver: db.Driver}

	var result int
	err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	status.Latency = time.Since(start)
	stats := db.Stats()
	status.OpenConns = stats.OpenConnections
	status.InUse = stats.InUse

	switch {
	case err != nil:
		logger.Database().Error("Database status check failed", "error", err.Error(), "driverName", db.Driver)
		status.Error = err.Error()
	case result != 1:
		logger.Database().Error("Unexpected status query result", "result", result, "expected", 1)
		status.Error = fmt.Sprintf("unexpected query result: %d", result)
	default:
		status.Healthy = true
		logger.Database().Debug("Database status check passed", "latency", status.Latency)
	}
	return status
}

// GetSlowQueryThreshold returns the configured slow query threshold
func GetSlowQueryThreshold() time.Duration {
	return config.SlowQueryThreshold
}

// CheckAndLogSlowQuery checks if a query duration exceeds threshold
// and logs it using the slow query channel if it does
func CheckAndLogSlowQuery(logger *logging.ChanneledLogger, query string, duration time.Duration) {
	threshold := GetSlowQueryThreshold()

	// Bulk inserts get a wider budget.
	if strings.HasPrefix(query, "BULK_") {
		threshold *= 3
	}

	if duration > threshold {
		logger.LogSlowQuery(query, duration)
	}
}
