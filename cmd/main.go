package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skarras/circuitguard/circuitbreaker"
	"github.com/skarras/circuitguard/config"
	"github.com/skarras/circuitguard/internal/health"
	"github.com/skarras/circuitguard/internal/httpserver"
	"github.com/skarras/circuitguard/internal/probe"
	"github.com/skarras/circuitguard/internal/target"
	"github.com/skarras/circuitguard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	targets, err := initializeTargets(cfg, log)
	if err != nil {
		log.Error("Failed to initialize targets", slog.Any("err", err))
		os.Exit(1)
	}

	interval, _ := time.ParseDuration(cfg.Probe.Interval)
	timeout, _ := time.ParseDuration(cfg.Probe.Timeout)

	for _, t := range targets {
		go probe.Run(ctx, t, interval, timeout, log)
	}

	healthHandler := health.New(log, circuitbreaker.DefaultRegistry())

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(healthHandler))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Circuit monitor started",
		slog.String("address", cfg.Server.Address),
		slog.Int("targets", len(targets)))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting server", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func initializeTargets(cfg *config.Config, log *slog.Logger) ([]*target.Target, error) {
	var targets []*target.Target

	for _, bc := range cfg.Breakers {
		u, err := url.Parse(bc.URL)
		if err != nil {
			log.Error("Failed to parse URL",
				slog.String("url", bc.URL),
				slog.String("error", err.Error()))
			continue
		}

		recovery, err := time.ParseDuration(bc.RecoveryTimeout)
		if err != nil {
			log.Error("Failed to parse recovery timeout",
				slog.String("breaker", bc.Name),
				slog.String("error", err.Error()))
			continue
		}

		cb, err := circuitbreaker.New(
			circuitbreaker.WithName(bc.Name),
			circuitbreaker.WithFailureThreshold(bc.FailureThreshold),
			circuitbreaker.WithRecoveryTimeout(recovery),
			circuitbreaker.WithExpectedFailure(probe.ErrFailed),
		)
		if err != nil {
			return nil, err
		}

		targets = append(targets, target.New(bc.Name, u, cb))
	}

	if len(targets) == 0 {
		return nil, os.ErrInvalid
	}

	return targets, nil
}
