package domain

import (
	"strings"
	"time"
)

// Role is the closed set of actor roles. A user's role is fixed at registration.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// MaxUsernameLength caps usernames, in characters.
const MaxUsernameLength = 100

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole matches s case-insensitively against the known roles.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	}
	return "", NewValidationError("role", "role must be either 'User' or 'Admin'")
}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`

	// RefreshTokenHash is the SHA-256 of the single live refresh token, empty
	// when the user has no session.
	RefreshTokenHash      string    `json:"-"`
	RefreshTokenExpiresAt time.Time `json:"-"`
}

// LookupKey normalises a username or email for case-insensitive uniqueness.
func LookupKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
