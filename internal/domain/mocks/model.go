package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/ersonp/genepredictor/internal/domain/entities"
	"github.com/ersonp/genepredictor/internal/domain/ports"
)

// EmbeddingModel is a mock implementation of ports.EmbeddingModel.
// When InferFunc is nil it returns a copy of Matrix.
type EmbeddingModel struct {
	Matrix    entities.HiddenStateMatrix
	Err       error
	Dim       int
	Delay     time.Duration
	InferFunc func(tokens entities.TokenSequence) (entities.HiddenStateMatrix, error)

	mu        sync.Mutex
	callCount int
}

// Infer returns the configured matrix or error after the optional delay.
func (m *EmbeddingModel) Infer(ctx context.Context, tokens entities.TokenSequence) (entities.HiddenStateMatrix, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if m.InferFunc != nil {
		return m.InferFunc(tokens)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	out := make(entities.HiddenStateMatrix, len(m.Matrix))
	for i, row := range m.Matrix {
		out[i] = append([]float32(nil), row...)
	}
	return out, nil
}

// Dimension returns Dim, or the width of Matrix when Dim is unset.
func (m *EmbeddingModel) Dimension() int {
	if m.Dim > 0 {
		return m.Dim
	}
	return m.Matrix.Dim()
}

// CallCount returns how many times Infer was called.
func (m *EmbeddingModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// ModelLoader is a mock implementation of ports.ModelLoader.
// LoadFunc, when set, replaces Backend and Err.
type ModelLoader struct {
	Backend  *ports.Backend
	Err      error
	Delay    time.Duration
	LoadFunc func(modelID string) (*ports.Backend, error)

	mu        sync.Mutex
	callCount int
	lastID    string
}

// Load returns the configured backend or error.
func (m *ModelLoader) Load(ctx context.Context, modelID string) (*ports.Backend, error) {
	m.mu.Lock()
	m.callCount++
	m.lastID = modelID
	m.mu.Unlock()

	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if m.LoadFunc != nil {
		return m.LoadFunc(modelID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Backend, nil
}

// CallCount returns how many times Load was called.
func (m *ModelLoader) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastModelID returns the identifier passed to the most recent call.
func (m *ModelLoader) LastModelID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastID
}
