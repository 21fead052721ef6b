// Package users declares the credential-store contract the session service
// depends on.
package users

import (
	"context"

	"github.com/viewtube/viewtube/internal/server/models"
)

// Repository is the narrow persistence contract for user records. All
// methods return common.ErrNotFound when no row matches; Create returns
// common.ErrConflict on a username/email uniqueness violation.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)

	// UpdateRefreshToken unconditionally sets (or clears, when token is
	// nil) the stored refresh token.
	UpdateRefreshToken(ctx context.Context, id string, token *string) error

	// SwapRefreshToken replaces the stored refresh token with next only if
	// the current value still equals current. It reports whether the swap
	// happened; a false result means a concurrent rotation won.
	SwapRefreshToken(ctx context.Context, id, current, next string) (bool, error)

	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
