package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/charterhook/internal/config"
	"github.com/mattjoyce/charterhook/internal/signature"
)

func newSignCommand() *cobra.Command {
	var (
		secret    string
		timestamp string
	)

	cmd := &cobra.Command{
		Use:   "sign [file]",
		Short: "Print Slack signing headers for a request body (stdin if no file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if secret == "" {
				secret = os.Getenv("SLACK_SIGNING_SECRET")
			}
			if timestamp == "" {
				timestamp = strconv.FormatInt(time.Now().Unix(), 10)
			}
			return runSign(cmd.OutOrStdout(), body, timestamp, secret)
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (default: $SLACK_SIGNING_SECRET)")
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "Unix timestamp to sign (default: now)")
	return cmd
}

func runSign(w io.Writer, body []byte, timestamp, secret string) error {
	if secret == "" {
		return fmt.Errorf("signing secret is required (--secret or SLACK_SIGNING_SECRET)")
	}
	if _, err := strconv.ParseInt(timestamp, 10, 64); err != nil {
		return fmt.Errorf("timestamp must be unix seconds: %w", err)
	}
	fmt.Fprintf(w, "%s: %s\n", config.DefaultTimestampHeader, timestamp)
	fmt.Fprintf(w, "%s: %s\n", config.DefaultSignatureHeader, signature.Sign(body, timestamp, secret))
	return nil
}
