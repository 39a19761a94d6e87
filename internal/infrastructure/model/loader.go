// Package model wires tokenizers and embedding models into loadable backends.
package model

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ersonp/genepredictor/internal/domain/ports"
	"github.com/ersonp/genepredictor/internal/infrastructure/config"
	"github.com/ersonp/genepredictor/internal/infrastructure/model/hashing"
	"github.com/ersonp/genepredictor/internal/infrastructure/model/remote"
	"github.com/ersonp/genepredictor/internal/infrastructure/tokenizer/kmer"
)

// Loader builds a Backend from model configuration.
type Loader struct {
	cfg config.ModelConfig
}

// NewLoader creates a new Loader.
func NewLoader(cfg config.ModelConfig) *Loader {
	return &Loader{cfg: cfg}
}

// Load implements ports.ModelLoader. modelID overrides the configured id
// when non-empty.
func (l *Loader) Load(ctx context.Context, modelID string) (*ports.Backend, error) {
	cfg := l.cfg
	if modelID != "" {
		cfg.ID = modelID
	}

	tok, err := l.tokenizer(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer: %w", err)
	}

	var m ports.EmbeddingModel
	switch cfg.Backend {
	case config.BackendHashing:
		m, err = hashing.New(cfg.Dimension, cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("creating hashing model: %w", err)
		}
	case config.BackendRemote:
		client, err := remote.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating remote model client: %w", err)
		}
		if err := client.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connecting to model server: %w", err)
		}
		m = client
	default:
		return nil, fmt.Errorf("unknown model backend: %s", cfg.Backend)
	}

	zerolog.Ctx(ctx).Info().
		Str("model_id", cfg.ID).
		Str("backend", cfg.Backend).
		Int("kmer_size", tok.K()).
		Int("vocab_size", tok.VocabSize()).
		Int("dimension", m.Dimension()).
		Msg("model loaded")

	return &ports.Backend{ModelID: cfg.ID, Tokenizer: tok, Model: m}, nil
}

func (l *Loader) tokenizer(cfg config.ModelConfig) (*kmer.Tokenizer, error) {
	if cfg.VocabPath != "" {
		return kmer.Load(cfg.VocabPath, cfg.KmerSize)
	}
	return kmer.New(cfg.KmerSize)
}
