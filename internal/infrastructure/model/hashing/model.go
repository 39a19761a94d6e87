// Package hashing provides a deterministic EmbeddingModel that needs no
// weights. Every token id maps to a fixed pseudo-random vector derived from
// xxhash, and each hidden state mixes in its neighbours so that output
// depends on local context the way an encoder's does.
package hashing

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/ersonp/genepredictor/internal/domain/entities"
)

// DefaultDimension matches the hidden size of BERT-base style DNA encoders.
const DefaultDimension = 768

// Mixing weights for the token itself and each neighbour.
const (
	selfWeight      = 0.6
	neighbourWeight = 0.2
)

// Model is safe for concurrent use; it has no mutable state.
type Model struct {
	dim  int
	seed uint64
}

// New creates a model with the given hidden size and seed.
func New(dim int, seed uint64) (*Model, error) {
	if dim <= 0 {
		dim = DefaultDimension
	}
	if dim > 1<<16 {
		return nil, fmt.Errorf("dimension %d is too large", dim)
	}
	return &Model{dim: dim, seed: seed}, nil
}

// Dimension implements ports.EmbeddingModel.
func (m *Model) Dimension() int {
	return m.dim
}

// Infer implements ports.EmbeddingModel.
func (m *Model) Infer(ctx context.Context, tokens entities.TokenSequence) (entities.HiddenStateMatrix, error) {
	if len(tokens) == 0 {
		return entities.HiddenStateMatrix{}, nil
	}

	base := make(map[int64][]float32)
	for _, tok := range tokens {
		if _, ok := base[tok]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		base[tok] = m.tokenVector(tok)
	}

	out := make(entities.HiddenStateMatrix, len(tokens))
	for i, tok := range tokens {
		self := base[tok]
		row := make([]float32, m.dim)
		for j := range row {
			row[j] = selfWeight * self[j]
		}
		if i > 0 {
			addScaled(row, base[tokens[i-1]], neighbourWeight)
		}
		if i < len(tokens)-1 {
			addScaled(row, base[tokens[i+1]], neighbourWeight)
		}
		out[i] = row
	}

	return out, nil
}

// tokenVector derives a vector in [-1, 1) for tok.
func (m *Model) tokenVector(tok int64) []float32 {
	var key [20]byte
	binary.LittleEndian.PutUint64(key[0:8], m.seed)
	binary.LittleEndian.PutUint64(key[8:16], uint64(tok))

	vec := make([]float32, m.dim)
	for j := range vec {
		binary.LittleEndian.PutUint32(key[16:20], uint32(j))
		h := xxhash.Sum64(key[:])
		// Top 24 bits give an exactly representable float32 in [0, 1).
		u := float32(h>>40) / float32(1<<24)
		vec[j] = 2*u - 1
	}
	return vec
}

func addScaled(dst, src []float32, w float32) {
	for j, v := range src {
		dst[j] += w * v
	}
}
