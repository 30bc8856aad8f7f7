package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/invoice-system/internal/core/ports"
)

// UserHandler serves the user directory used for invoice assignment.
type UserHandler struct {
	invoices ports.InvoiceService
}

func NewUserHandler(invoices ports.InvoiceService) *UserHandler {
	return &UserHandler{invoices: invoices}
}

// List returns the users an admin can assign invoices to.
//
// @Summary      List assignable users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	users, err := h.invoices.ListAssignableUsers(c.Request().Context(), actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUserResponses(users))
}
