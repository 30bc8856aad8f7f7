package ports

import (
	"context"
	"time"

	"github.com/99minutos/invoice-system/internal/core/domain"
)

// TokenPair is the result of a login or refresh.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, username, password string, role domain.Role) (*TokenPair, *domain.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	RevokeToken(ctx context.Context, refreshToken string) (bool, error)
	// ValidateAccessToken has no side effects.
	ValidateAccessToken(token string) (domain.Principal, error)
}
