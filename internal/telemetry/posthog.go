// Package telemetry forwards pipeline outcomes to PostHog.
package telemetry

import (
	"context"
	"log/slog"

	"github.com/posthog/posthog-go"

	"github.com/mattjoyce/charterhook/internal/config"
	"github.com/mattjoyce/charterhook/internal/events"
)

// Client is the subset of posthog.Client the forwarder uses.
type Client interface {
	Enqueue(posthog.Message) error
	Close() error
}

// NewClient creates a PostHog client, or returns nil when no API key is set.
func NewClient(cfg config.TelemetryConfig) (Client, error) {
	if cfg.PostHogAPIKey == "" {
		return nil, nil
	}
	return posthog.NewWithConfig(cfg.PostHogAPIKey, posthog.Config{Endpoint: cfg.PostHogEndpoint})
}

// Forwarder relays hub events as PostHog captures.
type Forwarder struct {
	client     Client
	distinctID string
	logger     *slog.Logger
}

// NewForwarder creates a Forwarder. distinctID identifies this service
// instance in PostHog.
func NewForwarder(client Client, distinctID string, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		client:     client,
		distinctID: distinctID,
		logger:     logger,
	}
}

// Run forwards events until ctx is done, then closes the client to flush
// pending captures.
func (f *Forwarder) Run(ctx context.Context, hub *events.Hub) {
	ch, cancel := hub.Subscribe()
	defer cancel()
	defer func() {
		if err := f.client.Close(); err != nil {
			f.logger.Warn("posthog close failed", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			f.forward(ev)
		}
	}
}

func (f *Forwarder) forward(ev events.Event) {
	// Accepted is implied by every other outcome.
	if ev.Type == events.TypeAccepted {
		return
	}

	props := posthog.NewProperties().
		Set("delivery_id", ev.Data.DeliveryID).
		Set("is_error", ev.Type == events.TypeSinkFailed || ev.Type == events.TypeQueueFull)
	if ev.Data.CharterID != "" {
		props.Set("charter_id", ev.Data.CharterID)
	}
	if ev.Data.CellsWritten > 0 {
		props.Set("cells_written", ev.Data.CellsWritten)
	}
	if ev.Data.Reason != "" {
		props.Set("reason", ev.Data.Reason)
	}
	if len(ev.Data.MissingFields) > 0 {
		props.Set("missing_fields", ev.Data.MissingFields)
	}
	if ev.Data.Duration > 0 {
		props.Set("latency_ms", ev.Data.Duration.Milliseconds())
	}

	err := f.client.Enqueue(posthog.Capture{
		DistinctId: f.distinctID,
		Event:      ev.Type,
		Timestamp:  ev.At,
		Properties: props,
	})
	if err != nil {
		f.logger.Warn("posthog enqueue failed", "event", ev.Type, "error", err)
	}
}
