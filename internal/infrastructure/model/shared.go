package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ersonp/genepredictor/internal/domain/entities"
	"github.com/ersonp/genepredictor/internal/domain/ports"
)

// SharedModel loads a backend at most once and serves it to every request.
// It implements ports.Tokenizer and ports.EmbeddingModel by delegation, so a
// failed load surfaces as ModelUnavailable on each call.
type SharedModel struct {
	loader  ports.ModelLoader
	modelID string

	once    sync.Once
	backend *ports.Backend
	err     error
}

// NewSharedModel creates a SharedModel for modelID. Nothing is loaded until
// the first call to Load, Tokenize or Infer.
func NewSharedModel(loader ports.ModelLoader, modelID string) *SharedModel {
	return &SharedModel{loader: loader, modelID: modelID}
}

// Load calls the loader on first use and returns the cached backend or
// failure afterwards. The load is not bound to ctx cancellation so a
// cancelled caller cannot poison the cache.
func (s *SharedModel) Load(ctx context.Context) (*ports.Backend, error) {
	s.once.Do(func() {
		s.err = s.unavailable(errors.New("model load did not complete"))
		defer func() {
			if p := recover(); p != nil {
				s.err = s.unavailable(fmt.Errorf("loader panicked: %v", p))
			}
		}()

		b, err := s.loader.Load(context.WithoutCancel(ctx), s.modelID)
		if err == nil && (b == nil || b.Tokenizer == nil || b.Model == nil) {
			err = errors.New("loader returned an incomplete backend")
		}
		if err != nil {
			s.err = s.unavailable(err)
			return
		}
		s.backend, s.err = b, nil
	})
	return s.backend, s.err
}

func (s *SharedModel) unavailable(cause error) error {
	return entities.NewError(entities.KindModelUnavailable,
		fmt.Sprintf("model %s is not available", s.modelID), cause)
}

// Tokenize implements ports.Tokenizer.
func (s *SharedModel) Tokenize(ctx context.Context, seq entities.Sequence) (entities.TokenSequence, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return b.Tokenizer.Tokenize(ctx, seq)
}

// Infer implements ports.EmbeddingModel.
func (s *SharedModel) Infer(ctx context.Context, tokens entities.TokenSequence) (entities.HiddenStateMatrix, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return b.Model.Infer(ctx, tokens)
}

// Dimension implements ports.EmbeddingModel. It is zero if loading failed.
func (s *SharedModel) Dimension() int {
	b, err := s.Load(context.Background())
	if err != nil {
		return 0
	}
	return b.Model.Dimension()
}
