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
	ctxlog "github.com/ErlanBelekov/invoice-console/internal/log"
	"github.com/ErlanBelekov/invoice-console/internal/mockapi"
	"github.com/ErlanBelekov/invoice-console/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.LoadMockAPI()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	store, err := mockapi.NewSeededStore(bcrypt.DefaultCost)
	if err != nil {
		stop()
		log.Fatalf("seed: %v", err)
	}
	logger.Info("store seeded", "demo_user", mockapi.DemoEmail)

	secret := []byte(cfg.JWTSecret)
	tokens := mockapi.NewTokenIssuer(secret, cfg.AccessTTL(), cfg.RefreshTTL())
	h := mockapi.NewHandler(store, tokens, cfg.RotateRefreshTokens, cfg.MediaBaseURL, logger)

	runner := scheduler.NewRunner(logger)
	if err := runner.Add("overdue_sweep", cfg.OverdueSweepCron, mockapi.OverdueSweep(store, logger)); err != nil {
		stop()
		log.Fatalf("scheduler: %v", err)
	}

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mockapi.NewRouter(logger, h, secret),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("mock api started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
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
	<-cronDone
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
