package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/charterhook/internal/config"
	"github.com/mattjoyce/charterhook/internal/quarantine"
)

func newQuarantineCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quarantine",
		Short: "Review messages that failed extraction",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "Print quarantined messages as JSON, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuarantineList(cmd.Context(), cmd.OutOrStdout(), *configPath, limit)
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries to print")

	cmd.AddCommand(list)
	return cmd
}

func runQuarantineList(ctx context.Context, w io.Writer, configPath string, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", limit)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Quarantine.Path == "" {
		return errors.New("quarantine is not enabled (set quarantine.path or CHARTERHOOK_QUARANTINE_PATH)")
	}

	store, err := quarantine.Open(ctx, cfg.Quarantine.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []quarantine.Entry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("render quarantine: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
