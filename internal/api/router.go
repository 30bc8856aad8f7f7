package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/99minutos/invoice-system/internal/api/handler"
	"github.com/99minutos/invoice-system/internal/api/middleware"
	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Auth          ports.AuthService
	Invoices      ports.InvoiceService
	Notifications ports.NotificationService
	Push          handler.PushServer
	HealthChecks  map[string]handler.HealthCheck
	Logger        zerolog.Logger

	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
	}))
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "invoice_http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/ws"
		},
	}))

	authHandler := handler.NewAuthHandler(deps.Auth)
	invoiceHandler := handler.NewInvoiceHandler(deps.Invoices)
	userHandler := handler.NewUserHandler(deps.Invoices)
	notificationHandler := handler.NewNotificationHandler(deps.Notifications)
	pushHandler := handler.NewPushHandler(deps.Push, deps.Logger)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)

	requireAuth := middleware.Auth(deps.Auth)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	userOnly := middleware.RBAC(domain.RoleUser)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh-token", authHandler.RefreshToken)
	auth.POST("/revoke-token", authHandler.RevokeToken, requireAuth)
	auth.POST("/logout", authHandler.Logout)

	// --- Invoice routes ---
	invoices := e.Group("/api/invoices", requireAuth)
	invoices.GET("", invoiceHandler.List)
	invoices.POST("", invoiceHandler.Create, adminOnly)
	invoices.GET("/:id", invoiceHandler.Get)
	invoices.PUT("/:id/status", invoiceHandler.UpdateStatus)
	invoices.POST("/:id/accept", invoiceHandler.Accept, userOnly)
	invoices.POST("/:id/reject", invoiceHandler.Reject, userOnly)
	invoices.GET("/:id/download", invoiceHandler.Download)

	e.GET("/api/users", userHandler.List, requireAuth, adminOnly)

	// --- Notification routes ---
	notifications := e.Group("/api/notifications", requireAuth)
	notifications.GET("", notificationHandler.List)
	notifications.GET("/unread-count", notificationHandler.UnreadCount)
	notifications.PUT("/read-all", notificationHandler.MarkAllRead)
	notifications.PUT("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.Delete)

	// --- Push channel ---
	e.GET("/ws", pushHandler.Connect, requireAuth)

	// --- Operations (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= 500:
				evt = log.Error().Err(v.Error)
			case v.Error != nil:
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
