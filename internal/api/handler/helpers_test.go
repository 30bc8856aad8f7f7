package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/invoice-system/internal/api/middleware"
	"github.com/99minutos/invoice-system/internal/core/domain"
)

var (
	adminPrincipal = domain.Principal{ID: "admin-1", Username: "admin", Role: domain.RoleAdmin}
	userPrincipal  = domain.Principal{ID: "user-1", Username: "john_doe", Role: domain.RoleUser}
)

// newTestContext builds an echo context with the JSON validator installed.
// A nil principal leaves the request unauthenticated.
func newTestContext(method, target, body string, principal *domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if principal != nil {
		middleware.SetPrincipal(c, *principal)
	}
	return c, rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
