package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doc-translator/internal/api"
	"doc-translator/internal/config"
	"doc-translator/internal/job"
	"doc-translator/internal/logger"
	"doc-translator/internal/pipeline"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("cannot create working directories", err)
		os.Exit(1)
	}

	pipe := pipeline.New(cfg)
	defer pipe.Close()

	probeCtx, probeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pipe.ProbeCapabilities(probeCtx)
	probeCancel()

	queue, err := job.NewQueue(cfg, pipe)
	if err != nil {
		logger.Error("cannot start job queue", err)
		os.Exit(1)
	}
	defer queue.Stop()

	router := api.NewRouter(cfg, queue)
	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("server starting",
		logger.String("addr", addr),
		logger.String("backend", cfg.TranslatorBackend),
		logger.String("target", cfg.TargetLanguage))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", err)
		os.Exit(1)
	}
}
