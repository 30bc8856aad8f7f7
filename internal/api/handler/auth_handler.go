package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request / Response types ---

type registerRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type authResponse struct {
	AccessToken        string    `json:"accessToken"`
	RefreshToken       string    `json:"refreshToken"`
	Username           string    `json:"username,omitempty"`
	Role               string    `json:"role,omitempty"`
	AccessTokenExpiry  time.Time `json:"accessTokenExpiry"`
	RefreshTokenExpiry time.Time `json:"refreshTokenExpiry"`
}

func toAuthResponse(pair *ports.TokenPair, user *domain.User) authResponse {
	resp := authResponse{
		AccessToken:        pair.AccessToken,
		RefreshToken:       pair.RefreshToken,
		AccessTokenExpiry:  pair.AccessTokenExpiry,
		RefreshTokenExpiry: pair.RefreshTokenExpiry,
	}
	if user != nil {
		resp.Username = user.Username
		resp.Role = string(user.Role)
	}
	return resp
}

// requestedRole defaults an omitted role to User.
func requestedRole(raw string) (domain.Role, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.RoleUser, nil
	}
	return domain.ParseRole(raw)
}

// Register creates a new account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorBody
// @Failure      409   {object}  errorBody
// @Failure      500   {object}  errorBody
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := requestedRole(req.Role)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.authService.Register(ctx, req.Username, req.Email, req.Password, role); err != nil {
		return err
	}

	pair, user, err := h.authService.Login(ctx, req.Username, req.Password, role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toAuthResponse(pair, user))
}

// Login authenticates a user for the requested role.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := requestedRole(req.Role)
	if err != nil {
		return err
	}

	pair, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password, role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAuthResponse(pair, user))
}

// RefreshToken rotates a refresh token into a new token pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshTokenRequest  true  "Current refresh token"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Router       /api/auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAuthResponse(pair, nil))
}

// RevokeToken ends the session holding the given refresh token.
//
// @Summary      Revoke a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      refreshTokenRequest  true  "Refresh token to revoke"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Router       /api/auth/revoke-token [post]
func (h *AuthHandler) RevokeToken(c echo.Context) error {
	var req refreshTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	revoked, err := h.authService.RevokeToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	if !revoked {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to revoke token")
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Token revoked successfully"})
}

// Logout revokes the refresh token when one is supplied. It always succeeds
// so that clients can discard local state unconditionally.
//
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshTokenRequest  false  "Refresh token to revoke"
// @Success      200   {object}  messageResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshTokenRequest
	if err := c.Bind(&req); err == nil && req.RefreshToken != "" {
		_, _ = h.authService.RevokeToken(c.Request().Context(), req.RefreshToken)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}
