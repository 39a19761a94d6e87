// Package handlers exposes the embedding use cases to the transport layers.
package handlers

import (
	"context"
	"errors"

	"github.com/ersonp/genepredictor/internal/domain/entities"
	"github.com/ersonp/genepredictor/internal/domain/services"
)

// PredictHandler handles embedding requests.
type PredictHandler struct {
	service  *services.PredictionService
	defaults []entities.PoolingStrategy
}

// NewPredictHandler creates a new predict handler. defaults are pooled when
// a request names no strategies; nil means mean and max.
func NewPredictHandler(service *services.PredictionService, defaults []entities.PoolingStrategy) *PredictHandler {
	return &PredictHandler{
		service:  service,
		defaults: defaults,
	}
}

// PredictRequest is the body of an embedding request.
type PredictRequest struct {
	Sequence   string   `json:"sequence"`
	Strategies []string `json:"strategies,omitempty"`
}

// PredictResponse is the body of a successful embedding response.
type PredictResponse struct {
	Sequence   string               `json:"sequence"`
	Embeddings map[string][]float32 `json:"embeddings"`
	TokenCount int                  `json:"token_count"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error   entities.ErrorKind `json:"error"`
	Message string             `json:"message"`
}

// NewErrorResponse builds the client-facing view of err. The internal
// cause is never included.
func NewErrorResponse(err error) ErrorResponse {
	if e, ok := entities.AsError(err); ok {
		return ErrorResponse{Error: e.Kind, Message: e.Message}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorResponse{Error: entities.KindTimeout, Message: "request deadline exceeded"}
	}
	return ErrorResponse{Error: entities.KindInferenceFailure, Message: "internal error"}
}

// Handle embeds a single sequence.
func (h *PredictHandler) Handle(ctx context.Context, req PredictRequest) (*PredictResponse, error) {
	result, err := h.service.Predict(ctx, req.Sequence, h.strategies(req.Strategies)...)
	if err != nil {
		return nil, err
	}
	return toResponse(result), nil
}

func (h *PredictHandler) strategies(names []string) []entities.PoolingStrategy {
	if len(names) == 0 {
		return h.defaults
	}
	out := make([]entities.PoolingStrategy, len(names))
	for i, n := range names {
		out[i] = entities.PoolingStrategy(n)
	}
	return out
}

func toResponse(result *entities.PredictionResult) *PredictResponse {
	embeddings := make(map[string][]float32, len(result.Embeddings))
	for strategy, emb := range result.Embeddings {
		embeddings[string(strategy)] = emb.Vector
	}
	return &PredictResponse{
		Sequence:   result.Sequence.String(),
		Embeddings: embeddings,
		TokenCount: result.TokenCount,
	}
}
