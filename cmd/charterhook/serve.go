package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/charterhook/internal/config"
	"github.com/mattjoyce/charterhook/internal/events"
	"github.com/mattjoyce/charterhook/internal/extract"
	"github.com/mattjoyce/charterhook/internal/log"
	"github.com/mattjoyce/charterhook/internal/pipeline"
	"github.com/mattjoyce/charterhook/internal/quarantine"
	"github.com/mattjoyce/charterhook/internal/signature"
	"github.com/mattjoyce/charterhook/internal/sink"
	"github.com/mattjoyce/charterhook/internal/telemetry"
	"github.com/mattjoyce/charterhook/internal/webhook"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook receiver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *configPath)
		},
	}
}

// runServe wires the service and blocks until ctx is cancelled. Shutdown
// order: HTTP server, pipeline drain, telemetry flush, sink close.
func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("serve")
	if hash, err := config.FileHash(configPath); err == nil && hash != "" {
		logger.Info("config loaded", "path", configPath, "config_hash", hash[:16])
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	rowSink, closeSink, err := sink.Open(ctx, cfg.Sink, log.WithComponent("sink"))
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	defer func() {
		if err := closeSink(); err != nil {
			logger.Warn("sink close failed", "error", err)
		}
	}()

	hub := events.NewHub(256)
	opts := []pipeline.Option{pipeline.WithHub(hub)}

	if cfg.Quarantine.Path != "" {
		store, err := quarantine.Open(ctx, cfg.Quarantine.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, pipeline.WithQuarantine(store))
		logger.Info("quarantine enabled", "path", cfg.Quarantine.Path)
	}

	client, err := telemetry.NewClient(cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("posthog client: %w", err)
	}
	if client != nil {
		fwd := telemetry.NewForwarder(client, cfg.Service.Name, log.WithComponent("telemetry"))
		tctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			fwd.Run(tctx, hub)
			close(done)
		}()
		defer func() {
			cancel()
			<-done
		}()
	}

	pool := pipeline.New(
		pipeline.Config{Workers: cfg.Pipeline.Workers, QueueSize: cfg.Pipeline.QueueSize},
		extract.New(),
		sink.NewDispatcher(rowSink, log.WithComponent("sink")),
		opts...,
	)
	pool.Start(ctx)
	defer pool.Stop()

	wc, err := webhook.FromGlobalConfig(cfg)
	if err != nil {
		return err
	}
	verifier := signature.NewVerifier(cfg.Slack.SigningSecret, log.WithComponent("signature"))
	server := webhook.New(wc, verifier, pool, log.WithComponent("webhook"))

	logger.Info("charterhook starting",
		"sink", cfg.Sink.Kind,
		"workers", cfg.Pipeline.Workers,
		"version", currentVersionInfo().Version,
	)
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
