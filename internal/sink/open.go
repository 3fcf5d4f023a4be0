package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mattjoyce/charterhook/internal/config"
	"github.com/mattjoyce/charterhook/internal/storage"
)

// Open builds the sink selected by cfg.Kind. The returned close function is
// always non-nil.
//
// A sink that lacks credentials or a destination does not fail Open; it is
// replaced by one that rejects every append with ErrNotConfigured, so the
// endpoint keeps acknowledging events while the operator fixes the config.
func Open(ctx context.Context, cfg config.SinkConfig, logger *slog.Logger) (Sink, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Kind {
	case config.SinkSheets:
		return NewSheetsSink(cfg.Sheets.SpreadsheetID, cfg.Sheets.Range,
			WithCredentialsFile(cfg.Sheets.CredentialsFile),
			WithCredentialsJSON(cfg.Sheets.CredentialsJSON),
		), noop, nil

	case config.SinkSQLite:
		db, err := storage.OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, noop, err
		}
		return NewSQLiteSink(db), db.Close, nil

	case config.SinkKafka:
		k, err := NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if errors.Is(err, ErrNotConfigured) {
			logger.Warn("kafka sink unavailable", "error", err)
			return unavailable{err: err}, noop, nil
		}
		if err != nil {
			return nil, noop, err
		}
		return k, k.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown sink kind %q", cfg.Kind)
}
