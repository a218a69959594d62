// Package main is the entry point for fairsim, the simulated workflow API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/joe/fairwatch/internal/config"
	"github.com/joe/fairwatch/internal/logging"
	"github.com/joe/fairwatch/internal/simbackend"
)

func main() {
	cfg, err := config.ParseSimFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.SimConfig) error {
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics := simbackend.NewMetrics(registry)
	sim := simbackend.New(simbackend.Options{
		Capacity:        cfg.Capacity,
		StartDelayScale: cfg.StartDelayScale,
		Logger:          logger,
		Metrics:         metrics,
	})

	server := &simbackend.Server{
		Sim:      sim,
		Logger:   logger,
		Metrics:  metrics,
		Gatherer: registry,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sim.Run(ctx, cfg.Step)

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Handler(cfg.AllowedOrigins),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("fairsim listening",
			"addr", cfg.Listen,
			"capacity", cfg.Capacity,
			"step", cfg.Step)

		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)
