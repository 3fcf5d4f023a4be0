package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/charterhook/internal/charter"
	"github.com/mattjoyce/charterhook/internal/extract"
)

type extractOutput struct {
	charter.Record
	HasReturnDate bool     `json:"has_return_date"`
	Row           []string `json:"row"`
}

func newExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract a charter record from message text (stdin if no file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return runExtract(cmd.OutOrStdout(), string(text), time.Now())
		},
	}
}

func runExtract(w io.Writer, text string, now time.Time) error {
	fields, err := extract.New().Extract(text)
	if err != nil {
		var missing *extract.MissingFieldsError
		if errors.As(err, &missing) {
			partial, _ := json.MarshalIndent(fields, "", "  ")
			fmt.Fprintf(w, "%s\n", partial)
		}
		return err
	}

	rec, err := charter.Assemble(fields, now)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(extractOutput{
		Record:        rec,
		HasReturnDate: rec.HasReturnDate(),
		Row:           rec.Row(),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", data)
	return nil
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(cmd.InOrStdin())
}
