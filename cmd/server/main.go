package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/99minutos/invoice-system/docs"
	"github.com/99minutos/invoice-system/internal/api"
	"github.com/99minutos/invoice-system/internal/api/handler"
	"github.com/99minutos/invoice-system/internal/core/ports"
	"github.com/99minutos/invoice-system/internal/core/service"
	"github.com/99minutos/invoice-system/internal/infrastructure/config"
	mongodb "github.com/99minutos/invoice-system/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/invoice-system/internal/infrastructure/db/redis"
	"github.com/99minutos/invoice-system/internal/infrastructure/pdf"
	"github.com/99minutos/invoice-system/internal/infrastructure/push"
	"github.com/99minutos/invoice-system/internal/infrastructure/queue"
	"github.com/99minutos/invoice-system/pkg/logger"
)

const (
	serviceName     = "invoice-system"
	companyName     = "Invoice System"
	shutdownTimeout = 10 * time.Second
)

// @title                       Invoice System API
// @version                     1.0
// @description                 Invoice workflow with role-based access, refresh-token sessions and real-time notifications.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Service: serviceName})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty && !cfg.IsProduction(),
		Service: serviceName,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server exited")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := mongodb.NewUserRepository(db)
	invoices := mongodb.NewInvoiceRepository(db)
	notifications := mongodb.NewNotificationRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, invoices, notifications); err != nil {
		return err
	}
	tx := mongodb.NewTransactor(mongoClient, mongodb.SupportsTransactions(ctx, mongoClient), log)

	// --- Push delivery ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	hub := push.NewHub(log)
	var pusher ports.Pusher = hub
	if cfg.Push.Fanout == config.FanoutRedis {
		broker := push.NewRedisBroker(rdb, hub, log)
		pusher = broker
		go func() {
			if err := broker.Run(workerCtx); err != nil {
				log.Error().Err(err).Msg("push fan-out stopped")
			}
		}()
	}

	dispatcher := queue.NewDispatcher(pusher, queue.Options{
		Workers:     cfg.Push.Workers,
		QueueSize:   cfg.Push.QueueSize,
		MaxAttempts: cfg.Push.MaxAttempts,
		Backoff:     cfg.Push.RetryBackoff,
	}, log)
	dispatcher.Start(workerCtx)

	// --- Services ---
	authService := service.NewAuthService(users, service.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	}, log)
	notificationService := service.NewNotificationService(notifications, dispatcher, log)
	invoiceService := service.NewInvoiceService(service.InvoiceServiceDeps{
		Invoices: invoices,
		Users:    users,
		Notifier: notificationService,
		Tx:       tx,
		Sequence: redisdb.NewInvoiceSequence(rdb),
		Renderer: pdf.NewRenderer(companyName),
	}, log)

	if cfg.SeedDemo {
		if err := seedDemo(ctx, authService, invoiceService, log); err != nil {
			return err
		}
	}

	// --- HTTP ---
	router := api.NewRouter(api.Dependencies{
		Auth:          authService,
		Invoices:      invoiceService,
		Notifications: notificationService,
		Push:          hub,
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": func(ctx context.Context) error { return mongodb.Ping(ctx, mongoClient) },
			"redis":   func(ctx context.Context) error { return redisdb.Ping(ctx, rdb) },
		},
		Logger: log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("fanout", cfg.Push.Fanout).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	// --- Graceful shutdown ---
	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	cancelWorkers()
	dispatcher.Wait()
	return nil
}
