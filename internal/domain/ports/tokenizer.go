// Package ports defines interfaces for the model backend capabilities.
package ports

import (
	"context"

	"github.com/ersonp/genepredictor/internal/domain/entities"
)

// Tokenizer converts a validated sequence into model token ids.
type Tokenizer interface {
	// Tokenize returns the token ids for seq. Output is deterministic for
	// identical input and may include sentinel tokens.
	Tokenize(ctx context.Context, seq entities.Sequence) (entities.TokenSequence, error)
}
