// Package identity is the system of record for user accounts: creation,
// lookup, email-confirmation state, and password credentials. The auth
// flows treat it as a collaborator behind the Provider interface so the
// token protocol never touches storage directly.
package identity

import (
	"context"
	"errors"

	"github.com/cltvc/volunteercentral/internal/model"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")
)

// Provider exposes the account mutations the auth flows dispatch to after
// a token verifies: confirm-email for signup verification, update-password
// for password reset, plus the lookups the send-side flows need.
type Provider interface {
	CreateUser(ctx context.Context, email, password, fullName string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ConfirmEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, email, newPassword string) error
	VerifyPassword(ctx context.Context, email, password string) (*model.User, error)
}
