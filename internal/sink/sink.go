// Package sink appends charter rows to external storage.
//
// Dispatch is best effort: a failed append is logged and reported to the
// caller, never retried or queued. Losing a row is preferred over blocking
// ingestion.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mattjoyce/charterhook/internal/charter"
)

//go:generate mockgen -destination=mocks/mock_sink.go -package=mocks github.com/mattjoyce/charterhook/internal/sink Sink

// Sink is the row-oriented storage collaborator.
type Sink interface {
	// Append stores one row and reports how many cells were written.
	Append(ctx context.Context, row []string) (int, error)
}

// ErrNotConfigured is returned by sinks whose destination or credentials are missing.
var ErrNotConfigured = errors.New("sink not configured")

// Dispatcher hands assembled records to a Sink.
type Dispatcher struct {
	sink   Sink
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher for s.
func NewDispatcher(s Sink, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sink:   s,
		logger: logger,
	}
}

// Dispatch appends rec's row. No retry is attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, rec charter.Record) (int, error) {
	cells, err := d.sink.Append(ctx, rec.Row())
	if err != nil {
		d.logger.Error("sink append failed, record dropped",
			"charter_id", rec.CharterID,
			"error", err,
		)
		return 0, fmt.Errorf("dispatch charter %s: %w", rec.CharterID, err)
	}

	d.logger.Info("charter row appended",
		"charter_id", rec.CharterID,
		"cells_written", cells,
	)
	return cells, nil
}

// unavailable fails every append with err. It stands in for a sink that could
// not be opened so the ingestion path can still start.
type unavailable struct {
	err error
}

func (u unavailable) Append(context.Context, []string) (int, error) {
	return 0, u.err
}

func checkWidth(row []string) error {
	if len(row) != charter.RowWidth {
		return fmt.Errorf("row has %d columns, want %d", len(row), charter.RowWidth)
	}
	return nil
}
