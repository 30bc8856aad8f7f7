package ports

import (
	"context"
	"time"

	"github.com/99minutos/invoice-system/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create inserts a user. Returns domain.ErrUserExists when the username or
	// email is already taken, compared case-insensitively.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByUsername and FindByEmail match case-insensitively.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByRefreshToken(ctx context.Context, tokenHash string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)

	// SetRefreshToken overwrites whatever refresh token the user holds.
	SetRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// RotateRefreshToken replaces oldHash with newHash only while oldHash is
	// still the user's current token. Returns domain.ErrInvalidToken otherwise.
	RotateRefreshToken(ctx context.Context, userID, oldHash, newHash string, expiresAt time.Time) error
	// ClearRefreshToken removes the token from its holder and reports whether
	// any user held it.
	ClearRefreshToken(ctx context.Context, tokenHash string) (bool, error)
}
