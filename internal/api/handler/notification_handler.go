package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
)

// NotificationHandler exposes the caller's notification inbox.
type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// --- Request / Response types ---

type notificationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	IsRead    bool      `json:"isRead"`
}

type markReadResponse struct {
	Message        string `json:"message"`
	NotificationID string `json:"notificationId"`
	IsRead         bool   `json:"isRead"`
}

type markAllReadResponse struct {
	Message     string `json:"message"`
	MarkedCount int64  `json:"markedCount"`
}

type deleteNotificationResponse struct {
	Message        string `json:"message"`
	NotificationID string `json:"notificationId"`
}

func toNotificationResponses(items []*domain.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, notificationResponse{
			ID:        n.ID,
			UserID:    n.UserID,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
			IsRead:    n.IsRead,
		})
	}
	return out
}

// List returns the caller's notifications, newest first.
//
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   notificationResponse
// @Failure      401  {object}  errorBody
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	items, err := h.service.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toNotificationResponses(items))
}

// MarkRead marks one of the caller's notifications as read.
//
// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  markReadResponse
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /api/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	n, err := h.service.MarkRead(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, markReadResponse{
		Message:        "Notification marked as read",
		NotificationID: n.ID,
		IsRead:         true,
	})
}

// MarkAllRead marks every unread notification of the caller as read.
//
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  markAllReadResponse
// @Failure      401  {object}  errorBody
// @Router       /api/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	marked, err := h.service.MarkAllRead(c.Request().Context(), actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, markAllReadResponse{
		Message:     "All notifications marked as read",
		MarkedCount: marked,
	})
}

// Delete removes one of the caller's notifications.
//
// @Summary      Delete notification
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  deleteNotificationResponse
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := h.service.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, deleteNotificationResponse{
		Message:        "Notification deleted successfully",
		NotificationID: id,
	})
}

// UnreadCount returns the number of unread notifications as a bare integer.
//
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {integer}  int
// @Failure      401  {object}   errorBody
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	count, err := h.service.UnreadCount(c.Request().Context(), actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, count)
}
