package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"target-shooting/internal/config"
	"target-shooting/internal/db"
	"target-shooting/internal/server"
)

func main() {
	dotenvErr := config.LoadDotEnv(".env")
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	if dotenvErr != nil {
		logger.Warn("failed to load .env", zap.Error(dotenvErr))
	}

	gw, conn, err := db.OpenGateway(cfg)
	if err != nil {
		logger.Fatal("storage setup failed", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer func() { _ = db.Close(conn) }()

	srv, err := server.New(gw, conn, cfg, logger)
	if err != nil {
		logger.Fatal("server setup failed", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("target-shooting server listening",
		zap.String("addr", httpServer.Addr),
		zap.String("storage", gw.Name()),
		zap.String("env", cfg.Env),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server shut down")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
