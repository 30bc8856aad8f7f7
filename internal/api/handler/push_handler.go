package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/invoice-system/internal/core/domain"
)

// PushServer upgrades a request into a push channel bound to a principal.
type PushServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, principal domain.Principal) error
}

// PushHandler serves the WebSocket push channel.
type PushHandler struct {
	server PushServer
	logger zerolog.Logger
}

func NewPushHandler(server PushServer, logger zerolog.Logger) *PushHandler {
	return &PushHandler{server: server, logger: logger.With().Str("component", "push_handler").Logger()}
}

// Connect upgrades the connection and blocks until the client disconnects.
// Browsers pass the access token as the access_token query parameter.
//
// @Summary      Open the push channel
// @Tags         push
// @Security     BearerAuth
// @Param        access_token  query  string  false  "Access token for browser clients"
// @Success      101
// @Failure      401  {object}  errorBody
// @Router       /ws [get]
func (h *PushHandler) Connect(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	// The upgrader has already answered the request when this fails.
	if err := h.server.ServeWS(c.Response(), c.Request(), actor); err != nil {
		h.logger.Warn().Err(err).Str("user_id", actor.ID).Msg("websocket upgrade failed")
	}
	return nil
}
