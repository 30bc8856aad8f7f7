package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/invoice-system/internal/api/middleware"
	"github.com/99minutos/invoice-system/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware. A
// missing principal means the route was registered without Auth.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || !p.Role.Valid() {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// bindAndValidate decodes the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("body", "invalid payload")
	}
	return c.Validate(req)
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorBody documents the error envelope rendered by the API error handler.
type errorBody struct {
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}
