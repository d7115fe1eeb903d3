package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rod1202/print-inv/internal/config"
	"github.com/Rod1202/print-inv/internal/httpx"
)

func main() {
	configPath := flag.String("config", config.Getenv("CONFIG", ""), "path to YAML config")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("config_error", "err", err)
		os.Exit(1)
	}

	h, err := httpx.NewMux(logger, cfg)
	if err != nil {
		logger.Error("wiring_error", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Inventario.Listen,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http_start", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http_error", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info("http_shutdown")
}
