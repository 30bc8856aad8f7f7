package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
	"github.com/99minutos/invoice-system/internal/pkg/metrics"
)

const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour

	refreshTokenBytes = 32
)

// TokenConfig is loaded once at startup and never changes afterwards.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

type accessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login and the refresh-token lifecycle.
type AuthService struct {
	repo   ports.UserRepository
	cfg    TokenConfig
	logger zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.UserRepository, cfg TokenConfig, logger zerolog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		cfg:    cfg,
		logger: logger.With().Str("component", "auth").Logger(),
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string, role domain.Role) (_ *domain.User, err error) {
	defer func() { recordAuth("register", err) }()

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	verr := &domain.ValidationError{}
	switch {
	case username == "":
		verr.Add("username", "username is required")
	case utf8.RuneCountInString(username) > domain.MaxUsernameLength:
		verr.Add("username", fmt.Sprintf("username must be at most %d characters", domain.MaxUsernameLength))
	}
	if email == "" {
		verr.Add("email", "email is required")
	}
	if strings.TrimSpace(password) == "" {
		verr.Add("password", "password is required")
	}
	if !role.Valid() {
		verr.Add("role", "role must be either 'User' or 'Admin'")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", string(role)).Msg("user registered")
	return created, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("register: %w", err)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Login verifies credentials and starts a new session, replacing any previous one.
// A missing user and a wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string, role domain.Role) (_ *ports.TokenPair, _ *domain.User, err error) {
	defer func() { recordAuth("login", err) }()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if user.Role != role {
		s.logger.Warn().Str("user_id", user.ID).Str("requested_role", string(role)).Msg("login role mismatch")
		return nil, nil, domain.ErrRoleMismatch
	}

	now := s.now()
	refresh, refreshHash, err := newRefreshToken()
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	refreshExpiry := now.Add(RefreshTokenTTL).UTC()

	if err := s.repo.SetRefreshToken(ctx, user.ID, refreshHash, refreshExpiry); err != nil {
		return nil, nil, fmt.Errorf("login: store refresh token: %w", err)
	}

	access, accessExpiry, err := s.generateAccessToken(user.ID, user.Username, user.Email, user.Role, now)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("login succeeded")
	return &ports.TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  accessExpiry,
		RefreshToken:       refresh,
		RefreshTokenExpiry: refreshExpiry,
	}, user, nil
}

// RefreshToken rotates a refresh token. The presented token is single-use:
// the swap is conditioned on it still being current.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (_ *ports.TokenPair, err error) {
	defer func() { recordAuth("refresh", err) }()

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, domain.ErrInvalidToken
	}
	oldHash := hashToken(refreshToken)

	user, err := s.repo.FindByRefreshToken(ctx, oldHash)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	now := s.now()
	if !now.Before(user.RefreshTokenExpiresAt) {
		return nil, domain.ErrTokenExpired
	}

	refresh, newHash, err := newRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	refreshExpiry := now.Add(RefreshTokenTTL).UTC()

	if err := s.repo.RotateRefreshToken(ctx, user.ID, oldHash, newHash, refreshExpiry); err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			s.logger.Warn().Str("user_id", user.ID).Msg("refresh token reused during rotation")
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("refresh token: rotate: %w", err)
	}

	access, accessExpiry, err := s.generateAccessToken(user.ID, user.Username, user.Email, user.Role, now)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	return &ports.TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  accessExpiry,
		RefreshToken:       refresh,
		RefreshTokenExpiry: refreshExpiry,
	}, nil
}

// RevokeToken ends the session holding refreshToken. It returns false when no
// user holds it.
func (s *AuthService) RevokeToken(ctx context.Context, refreshToken string) (bool, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return false, nil
	}
	revoked, err := s.repo.ClearRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		return false, fmt.Errorf("revoke token: %w", err)
	}
	return revoked, nil
}

// ValidateAccessToken checks signature, issuer, audience and expiry with no
// clock skew tolerance.
func (s *AuthService) ValidateAccessToken(token string) (domain.Principal, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return []byte(s.cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, domain.ErrTokenExpired
		}
		return domain.Principal{}, domain.ErrInvalidToken
	}

	role := domain.Role(claims.Role)
	if claims.Subject == "" || !role.Valid() {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	return domain.Principal{
		ID:       claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     role,
	}, nil
}

func (s *AuthService) generateAccessToken(userID, username, email string, role domain.Role, now time.Time) (string, time.Time, error) {
	expiry := now.Add(AccessTokenTTL).UTC()
	claims := accessClaims{
		Username: username,
		Email:    email,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiry, nil
}

// newRefreshToken returns an opaque token and the hash stored for it.
func newRefreshToken() (token, hash string, err error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(b)
	return token, hashToken(token), nil
}

func recordAuth(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
