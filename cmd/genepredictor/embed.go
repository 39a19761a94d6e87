package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ersonp/genepredictor/internal/application/handlers"
	"github.com/ersonp/genepredictor/internal/infrastructure/parsers"
)

type embedFlags struct {
	input       string
	format      string
	strategies  []string
	concurrency int
}

func newEmbedCmd() *cobra.Command {
	var flags embedFlags

	cmd := &cobra.Command{
		Use:   "embed [SEQUENCE...]",
		Short: "Embed sequences and print JSON lines",
		Long: "Runs the prediction pipeline locally on sequences given as arguments or read " +
			"from --input, printing one JSON object per record. Records that fail are printed " +
			"with their error and make the command exit non-zero.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmbed(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "Input file (- for stdin, .gz accepted)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "Input format (auto, fasta, txt, csv, json)")
	cmd.Flags().StringSliceVarP(&flags.strategies, "strategy", "s", nil, "Pooling strategies (default from config)")
	cmd.Flags().IntVarP(&flags.concurrency, "concurrency", "n", DefaultConcurrency, "Parallel predictions")

	return cmd
}

func runEmbed(cmd *cobra.Command, args []string, flags embedFlags) error {
	if !slices.Contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	records, err := collectRecords(args, flags)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.New("no sequences given (pass them as arguments or use --input)")
	}

	return withDeps(cmd, func(deps *Deps) error {
		ctx := cmd.Context()

		if _, err := deps.Model.Load(ctx); err != nil {
			return fmt.Errorf("loading model: %w", err)
		}

		results, err := deps.PredictHandler.HandleBatch(ctx, records, handlers.BatchOptions{
			Strategies:  flags.strategies,
			Concurrency: flags.concurrency,
		})
		if err != nil {
			return err
		}

		failed, err := writeResults(cmd.OutOrStdout(), results)
		if err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d records failed", failed, len(results))
		}
		return nil
	})
}

func collectRecords(args []string, flags embedFlags) ([]parsers.Record, error) {
	records := make([]parsers.Record, 0, len(args))
	for i, seq := range args {
		records = append(records, parsers.Record{Sequence: seq, Line: i + 1})
	}

	if flags.input == "" {
		return records, nil
	}

	format := flags.format
	if flags.input == "-" && format == "auto" {
		format = "fasta"
	}
	fromFile, err := handlers.ReadRecords(flags.input, format)
	if err != nil {
		return nil, err
	}
	return append(records, fromFile...), nil
}

// embedLine is one output record: a response or an error, never both.
type embedLine struct {
	ID   string `json:"id,omitempty"`
	Line int    `json:"line,omitempty"`
	*handlers.PredictResponse
	*handlers.ErrorResponse
}

// writeResults prints one JSON line per result and returns how many failed.
func writeResults(w io.Writer, results []handlers.BatchResult) (int, error) {
	enc := json.NewEncoder(w)
	failed := 0
	for _, res := range results {
		line := embedLine{ID: res.Record.ID, Line: res.Record.Line}
		if res.Err != nil {
			failed++
			body := handlers.NewErrorResponse(res.Err)
			line.ErrorResponse = &body
		} else {
			line.PredictResponse = res.Response
		}
		if err := enc.Encode(line); err != nil {
			return failed, err
		}
	}
	return failed, nil
}
