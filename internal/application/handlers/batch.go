package handlers

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ersonp/genepredictor/internal/infrastructure/parsers"
)

// BatchOptions controls batch embedding.
type BatchOptions struct {
	Strategies  []string
	Concurrency int // Parallel predictions; <= 0 means GOMAXPROCS
}

// BatchResult pairs an input record with its response or error.
type BatchResult struct {
	Record   parsers.Record
	Response *PredictResponse
	Err      error
}

// HandleBatch embeds every record with bounded concurrency. A failing
// record does not stop the others; results keep input order.
func (h *PredictHandler) HandleBatch(ctx context.Context, records []parsers.Record, opts BatchOptions) ([]BatchResult, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]BatchResult, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			resp, err := h.Handle(gctx, PredictRequest{Sequence: rec.Sequence, Strategies: opts.Strategies})
			results[i] = BatchResult{Record: rec, Response: resp, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch interrupted: %w", err)
	}
	return results, nil
}

// ReadRecords parses the records of the file at path. An empty or "auto"
// format is chosen from the file extension; "-" reads stdin.
func ReadRecords(path, format string) ([]parsers.Record, error) {
	var parser parsers.Parser
	if format == "" || format == "auto" {
		parser = parsers.ForFile(path)
	} else {
		parser = parsers.ForFormat(format)
	}

	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", path)
	}

	file, err := parsers.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	records, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	return records, nil
}
