package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"noisemap/internal/app/server/api"
	"noisemap/internal/app/server/config"
	"noisemap/internal/app/server/hub"
	"noisemap/internal/infrastructure/storage/postgres"
	"noisemap/internal/utils/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := postgres.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to init storage", logger.Err(err))
		os.Exit(1)
	}
	defer storage.Close()

	h := hub.New(log, hub.Config{Buffer: cfg.Hub.Buffer, WriteTimeout: cfg.Hub.WriteTimeout})
	h.Start()

	srv := &http.Server{
		Addr:    cfg.Server.RunAddress,
		Handler: api.New(storage, h, cfg, log),
	}

	go func() {
		log.Info("starting server", "address", cfg.Server.RunAddress, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", logger.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// WebSocket-соединения не закрываются Shutdown'ом, поэтому хаб останавливаем первым.
	h.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", logger.Err(err))
	}
}
