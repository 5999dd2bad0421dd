package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/proxybin/proxybin/internal/config"
	"github.com/proxybin/proxybin/internal/executor"
	"github.com/proxybin/proxybin/internal/handler"
	"github.com/proxybin/proxybin/internal/identity"
	"github.com/proxybin/proxybin/internal/observability"
	"github.com/proxybin/proxybin/internal/store"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		l := observability.NewLogger("info")
		l.Fatal().Err(err).Msg("loading config")
	}
	logger := observability.NewLogger(cfg.LogLevel)

	s, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("opening store")
	}
	defer s.Close()

	h := handler.NewHandler(
		s,
		executor.New(cfg.ExecuteTimeout),
		identity.NewManager(cfg.CookieSecret),
		logger,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler.NewRouter(h),
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
