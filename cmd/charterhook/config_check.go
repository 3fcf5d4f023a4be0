package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/charterhook/internal/config"
)

func newConfigCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	var strict bool
	check := &cobra.Command{
		Use:   "check",
		Short: "Load and validate configuration, then print effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigCheck(cmd.OutOrStdout(), cmd.ErrOrStderr(), *configPath, strict)
		},
	}
	check.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	cmd.AddCommand(check)
	return cmd
}

func runConfigCheck(stdout, stderr io.Writer, configPath string, strict bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	hash, err := config.FileHash(configPath)
	if err != nil {
		return err
	}
	if hash != "" {
		fmt.Fprintf(stderr, "config: %s (blake3 %s)\n", configPath, hash[:16])
	}

	warnings := cfg.Warnings()
	for _, w := range warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	out, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	if _, err := stdout.Write(out); err != nil {
		return err
	}

	if strict && len(warnings) > 0 {
		return fmt.Errorf("%d configuration warning(s)", len(warnings))
	}
	return nil
}
