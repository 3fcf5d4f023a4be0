package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "charterhook",
		Short:        "Slack charter request webhook",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file (optional)")

	cmd.AddCommand(
		newServeCommand(&configPath),
		newExtractCommand(),
		newSignCommand(),
		newConfigCommand(&configPath),
		newQuarantineCommand(&configPath),
		newVersionCommand(),
	)
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
