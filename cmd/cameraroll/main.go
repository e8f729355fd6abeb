package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arawak/cameraroll/internal/app"
	"github.com/arawak/cameraroll/internal/config"
	"github.com/arawak/cameraroll/internal/httpapi"
	"github.com/arawak/cameraroll/internal/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat).With("version", version)

	var apiKeys *httpapi.APIKeyStore
	if cfg.AuthMode == config.AuthAPIKey {
		apiKeys, err = httpapi.LoadAPIKeys(cfg.APIKeysFile)
		if err != nil {
			log.Error("failed to load api keys", "error", err)
			os.Exit(1)
		}
	}

	a, err := app.Build(cfg, log, nil)
	if err != nil {
		log.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	router := httpapi.NewRouter(cfg, a.Service, a, a.Media, apiKeys, log)

	srv := &http.Server{Addr: cfg.Bind, Handler: router}
	go func() {
		log.Info("server starting", "addr", cfg.Bind, "backend", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", "error", err)
	}

	if err := a.Close(); err != nil {
		log.Error("close error", "error", err)
	}
}
