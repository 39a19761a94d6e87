package entities

import (
	"fmt"
	"strings"
)

// PoolingStrategy names the reduction used to collapse token vectors.
type PoolingStrategy string

// Supported pooling strategies.
const (
	PoolingMean PoolingStrategy = "mean"
	PoolingMax  PoolingStrategy = "max"
)

// DefaultStrategies are pooled when a request does not name any.
var DefaultStrategies = []PoolingStrategy{PoolingMean, PoolingMax}

// IsValid checks if the strategy is a supported one.
func (p PoolingStrategy) IsValid() bool {
	switch p {
	case PoolingMean, PoolingMax:
		return true
	default:
		return false
	}
}

// ParseStrategies converts names into strategies, dropping duplicates and
// keeping first-seen order. An empty input yields DefaultStrategies.
func ParseStrategies(names []string) ([]PoolingStrategy, error) {
	if len(names) == 0 {
		return append([]PoolingStrategy(nil), DefaultStrategies...), nil
	}

	seen := make(map[PoolingStrategy]struct{}, len(names))
	out := make([]PoolingStrategy, 0, len(names))
	for _, name := range names {
		s := PoolingStrategy(strings.ToLower(strings.TrimSpace(name)))
		if !s.IsValid() {
			return nil, &Error{
				Kind:    KindUnknownStrategy,
				Message: fmt.Sprintf("unknown pooling strategy %q (valid: mean, max)", name),
			}
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

// Embedding is a fixed-length vector produced by one pooling strategy.
type Embedding struct {
	Strategy PoolingStrategy
	Vector   []float32
}

// Dim returns the vector length.
func (e Embedding) Dim() int {
	return len(e.Vector)
}

// PredictionResult is the outcome of a successful prediction.
type PredictionResult struct {
	Sequence   Sequence
	Embeddings map[PoolingStrategy]Embedding
	TokenCount int
}
