package model

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/genepredictor/internal/domain/entities"
	"github.com/ersonp/genepredictor/internal/domain/mocks"
	"github.com/ersonp/genepredictor/internal/domain/ports"
)

func newMockBackend() *ports.Backend {
	return &ports.Backend{
		ModelID:   "mock",
		Tokenizer: &mocks.Tokenizer{Tokens: entities.TokenSequence{2, 7, 3}},
		Model: &mocks.EmbeddingModel{
			Matrix: entities.HiddenStateMatrix{{1, 2}, {3, 4}, {5, 6}},
		},
	}
}

func TestSharedModel_LoadsOnceUnderConcurrency(t *testing.T) {
	loader := &mocks.ModelLoader{Backend: newMockBackend(), Delay: 20 * time.Millisecond}
	shared := NewSharedModel(loader, "mock")

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := shared.Load(context.Background())
			assert.NoError(t, err)
			assert.NotNil(t, b)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, loader.CallCount())
	assert.Equal(t, "mock", loader.LastModelID())
}

func TestSharedModel_Delegates(t *testing.T) {
	loader := &mocks.ModelLoader{Backend: newMockBackend()}
	shared := NewSharedModel(loader, "mock")

	tokens, err := shared.Tokenize(t.Context(), entities.NewSequence("ACGTAC"))
	require.NoError(t, err)
	assert.Equal(t, entities.TokenSequence{2, 7, 3}, tokens)

	matrix, err := shared.Infer(t.Context(), tokens)
	require.NoError(t, err)
	assert.Equal(t, 3, matrix.Rows())
	assert.Equal(t, 2, shared.Dimension())

	assert.Equal(t, 1, loader.CallCount())
}

func TestSharedModel_FailureIsCached(t *testing.T) {
	loader := &mocks.ModelLoader{Err: errors.New("weights not found")}
	shared := NewSharedModel(loader, "dnabert")

	_, err := shared.Load(t.Context())
	require.Error(t, err)
	assert.Equal(t, entities.KindModelUnavailable, entities.KindOf(err))
	assert.Contains(t, err.Error(), "weights not found")

	_, err = shared.Tokenize(t.Context(), entities.NewSequence("ACGTAC"))
	assert.Equal(t, entities.KindModelUnavailable, entities.KindOf(err))

	_, err = shared.Infer(t.Context(), entities.TokenSequence{2, 3})
	assert.Equal(t, entities.KindModelUnavailable, entities.KindOf(err))

	assert.Zero(t, shared.Dimension())
	assert.Equal(t, 1, loader.CallCount())
}

func TestSharedModel_IncompleteBackend(t *testing.T) {
	loader := &mocks.ModelLoader{Backend: &ports.Backend{ModelID: "half"}}
	shared := NewSharedModel(loader, "half")

	_, err := shared.Load(t.Context())
	require.Error(t, err)
	assert.Equal(t, entities.KindModelUnavailable, entities.KindOf(err))
}

func TestSharedModel_LoaderPanicIsCachedAsUnavailable(t *testing.T) {
	loader := &mocks.ModelLoader{LoadFunc: func(string) (*ports.Backend, error) {
		panic("corrupt weights")
	}}
	shared := NewSharedModel(loader, "dnabert")

	_, err := shared.Load(t.Context())
	require.Error(t, err)
	assert.Equal(t, entities.KindModelUnavailable, entities.KindOf(err))
	assert.Contains(t, err.Error(), "corrupt weights")

	assert.NotPanics(t, func() {
		_, err = shared.Tokenize(t.Context(), entities.NewSequence("ACGTAC"))
		assert.Equal(t, entities.KindModelUnavailable, entities.KindOf(err))

		_, err = shared.Infer(t.Context(), entities.TokenSequence{2, 3})
		assert.Equal(t, entities.KindModelUnavailable, entities.KindOf(err))

		assert.Zero(t, shared.Dimension())
	})
	assert.Equal(t, 1, loader.CallCount())
}

func TestSharedModel_CancelledCallerDoesNotPoisonCache(t *testing.T) {
	loader := &mocks.ModelLoader{Backend: newMockBackend()}
	shared := NewSharedModel(loader, "mock")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	b, err := shared.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mock", b.ModelID)
}
