package services

import (
	"fmt"

	"github.com/ersonp/genepredictor/internal/domain/entities"
)

// Pooler reduces a hidden-state matrix to fixed-size embeddings.
type Pooler struct{}

// NewPooler creates a new pooler.
func NewPooler() *Pooler {
	return &Pooler{}
}

// Pool applies strategy to matrix. The matrix is never modified.
func (p *Pooler) Pool(matrix entities.HiddenStateMatrix, strategy entities.PoolingStrategy) (entities.Embedding, error) {
	if matrix.Rows() == 0 {
		return entities.Embedding{}, &entities.Error{
			Kind:    entities.KindEmptyMatrix,
			Message: "model returned no token vectors",
		}
	}

	dim := matrix.Dim()
	for i, row := range matrix {
		if len(row) != dim {
			return entities.Embedding{}, &entities.Error{
				Kind:    entities.KindInferenceFailure,
				Message: "model returned vectors of inconsistent size",
				Err:     fmt.Errorf("row %d has %d values, want %d", i, len(row), dim),
			}
		}
	}

	var vec []float32
	switch strategy {
	case entities.PoolingMean:
		vec = meanPool(matrix, dim)
	case entities.PoolingMax:
		vec = maxPool(matrix, dim)
	default:
		return entities.Embedding{}, &entities.Error{
			Kind:    entities.KindUnknownStrategy,
			Message: fmt.Sprintf("unknown pooling strategy %q", strategy),
		}
	}

	return entities.Embedding{Strategy: strategy, Vector: vec}, nil
}

// PoolAll applies every strategy and keys the results by strategy.
func (p *Pooler) PoolAll(matrix entities.HiddenStateMatrix, strategies []entities.PoolingStrategy) (map[entities.PoolingStrategy]entities.Embedding, error) {
	out := make(map[entities.PoolingStrategy]entities.Embedding, len(strategies))
	for _, s := range strategies {
		emb, err := p.Pool(matrix, s)
		if err != nil {
			return nil, err
		}
		out[s] = emb
	}
	return out, nil
}

// meanPool sums in float64 to keep float32 rounding error out of long sequences.
func meanPool(matrix entities.HiddenStateMatrix, dim int) []float32 {
	sums := make([]float64, dim)
	for _, row := range matrix {
		for j, v := range row {
			sums[j] += float64(v)
		}
	}

	n := float64(len(matrix))
	out := make([]float32, dim)
	for j, s := range sums {
		out[j] = float32(s / n)
	}
	return out
}

func maxPool(matrix entities.HiddenStateMatrix, dim int) []float32 {
	out := make([]float32, dim)
	copy(out, matrix[0])
	for _, row := range matrix[1:] {
		for j, v := range row {
			if v > out[j] {
				out[j] = v
			}
		}
	}
	return out
}
