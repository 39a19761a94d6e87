// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/genepredictor/internal/domain/entities"
)

// Tokenizer is a mock implementation of ports.Tokenizer.
// When TokenizeFunc is nil it returns Tokens, or one token per nucleotide
// if Tokens is also nil.
type Tokenizer struct {
	Tokens       entities.TokenSequence
	Err          error
	TokenizeFunc func(seq entities.Sequence) (entities.TokenSequence, error)

	mu        sync.Mutex
	callCount int
	lastSeq   entities.Sequence
}

// Tokenize returns the configured tokens or error.
func (m *Tokenizer) Tokenize(ctx context.Context, seq entities.Sequence) (entities.TokenSequence, error) {
	m.mu.Lock()
	m.callCount++
	m.lastSeq = seq
	m.mu.Unlock()

	if m.TokenizeFunc != nil {
		return m.TokenizeFunc(seq)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Tokens != nil {
		return append(entities.TokenSequence(nil), m.Tokens...), nil
	}

	tokens := make(entities.TokenSequence, seq.Len())
	for i, c := range seq.String() {
		tokens[i] = int64(c)
	}
	return tokens, nil
}

// CallCount returns how many times Tokenize was called.
func (m *Tokenizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastSequence returns the sequence passed to the most recent call.
func (m *Tokenizer) LastSequence() entities.Sequence {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSeq
}
