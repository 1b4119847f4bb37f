package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ojcli/internal/mockjudge"
	"ojcli/pkg/utils/logger"

	"go.uber.org/zap"
)

const defaultShutdownTimeout = 5 * time.Second

func main() {
	addr := flag.String("addr", ":8000", "Listen address")
	secret := flag.String("secret", "", "JWT signing secret (defaults to a dev secret)")
	pendingFor := flag.Duration("pending-for", 2*time.Second, "How long submissions report pending")
	runningFor := flag.Duration("running-for", 3*time.Second, "How long submissions report running")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	if err := logger.Init(logger.Config{Level: *logLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() { _ = logger.Sync() }()

	server := mockjudge.New(mockjudge.Config{
		JWTSecret:  []byte(*secret),
		PendingFor: *pendingFor,
		RunningFor: *runningFor,
	})

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "mock judge started", zap.String("addr", *addr))
		errCh <- httpServer.ListenAndServe()
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}
