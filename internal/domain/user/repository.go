// Package user defines admin accounts and the repository that persists them.
package user

import (
	"context"
	"time"
)

// Admin is an account allowed to edit the storefront.
type Admin struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	ConfirmationToken string     `json:"-"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// IsConfirmed reports whether the account finished email confirmation.
func (a *Admin) IsConfirmed() bool {
	return a.ConfirmedAt != nil
}

// AdminRepository persists admin accounts.
type AdminRepository interface {
	FindByID(ctx context.Context, id string) (*Admin, error)
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	FindByConfirmationToken(ctx context.Context, token string) (*Admin, error)
	Store(ctx context.Context, admin *Admin) error
	MarkConfirmed(ctx context.Context, id string, at time.Time) error
	Count(ctx context.Context) (int, error)
}
