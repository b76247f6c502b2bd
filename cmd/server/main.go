package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/invoice-console/config"
	"github.com/ErlanBelekov/invoice-console/internal/apiclient"
	"github.com/ErlanBelekov/invoice-console/internal/email"
	"github.com/ErlanBelekov/invoice-console/internal/health"
	"github.com/ErlanBelekov/invoice-console/internal/infrastructure/api"
	"github.com/ErlanBelekov/invoice-console/internal/infrastructure/memory"
	"github.com/ErlanBelekov/invoice-console/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/invoice-console/internal/log"
	"github.com/ErlanBelekov/invoice-console/internal/metrics"
	"github.com/ErlanBelekov/invoice-console/internal/repository"
	"github.com/ErlanBelekov/invoice-console/internal/scheduler"
	httptransport "github.com/ErlanBelekov/invoice-console/internal/transport/http"
	"github.com/ErlanBelekov/invoice-console/internal/transport/http/handler"
	"github.com/ErlanBelekov/invoice-console/internal/transport/http/middleware"
	"github.com/ErlanBelekov/invoice-console/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

const sessionCookie = "session_id"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// The anonymous client serves login, registration and refresh; every
	// other call goes through the session-aware copy.
	baseClient := apiclient.New(cfg.APIHost, cfg.APITimeout(), logger)
	deps := map[string]health.Pinger{"api": baseClient}

	// Sessions
	var sessionRepo repository.SessionRepository
	switch cfg.SessionStore {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			stop()
			log.Fatalf("db: %v", err)
		}
		defer pool.Close()

		repo := postgres.NewSessionRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			stop()
			log.Fatalf("migrate sessions: %v", err)
		}
		sessionRepo = repo
		deps["postgres"] = pool
		logger.Info("session store ready", "store", "postgres")
	default:
		sessionRepo = memory.NewSessionRepository()
		logger.Info("session store ready", "store", "memory")
	}

	authGateway := api.NewAuthGateway(baseClient)
	sessionUsecase := usecase.NewSessionUsecase(sessionRepo, authGateway, cfg.AccessTTL(), cfg.RefreshTTL(), logger)
	client := baseClient.WithTokens(sessionUsecase)

	// Account and invoices
	userRepo := api.NewUserRepository(client)
	invoiceRepo := api.NewInvoiceRepository(client)
	mailer := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	accountUsecase := usecase.NewAccountUsecase(userRepo, logger)
	invoiceUsecase := usecase.NewInvoiceUsecase(invoiceRepo, userRepo, mailer, logger)

	cookie := middleware.Cookie{Name: sessionCookie, Secure: cfg.CookieSecure}
	handlers := httptransport.Handlers{
		Auth:     handler.NewAuthHandler(sessionUsecase, cookie, logger),
		Account:  handler.NewAccountHandler(accountUsecase, logger),
		Invoices: handler.NewInvoiceHandler(invoiceUsecase, logger),
		Reports:  handler.NewReportHandler(invoiceUsecase, logger),
	}

	metrics.Register()
	checker := health.NewChecker(deps, logger, prometheus.DefaultRegisterer)

	runner := scheduler.NewRunner(logger)
	if err := runner.Add("purge_sessions", cfg.SessionPurgeCron, scheduler.PurgeSessions(sessionUsecase, logger)); err != nil {
		stop()
		log.Fatalf("scheduler: %v", err)
	}

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, handlers, sessionUsecase, cookie),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "api_host", cfg.APIHost)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	cronDone := make(chan struct{})
	go func() {
		defer close(cronDone)
		runner.Start(ctx)
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	select {
	case <-cronDone:
	case <-shutdownCtx.Done():
		logger.Error("scheduler shutdown", "error", shutdownCtx.Err())
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
