package ports

import (
	"context"

	"github.com/ersonp/genepredictor/internal/domain/entities"
)

// EmbeddingModel runs the forward pass of a pretrained sequence model.
// Implementations must be safe for concurrent use.
type EmbeddingModel interface {
	// Infer returns one hidden-state vector per token.
	Infer(ctx context.Context, tokens entities.TokenSequence) (entities.HiddenStateMatrix, error)

	// Dimension returns the hidden size of the model.
	Dimension() int
}

// Backend bundles the tokenizer and model that belong to one model id.
type Backend struct {
	ModelID   string
	Tokenizer Tokenizer
	Model     EmbeddingModel
}

// ModelLoader provides a Backend for a model identifier.
type ModelLoader interface {
	Load(ctx context.Context, modelID string) (*Backend, error)
}
