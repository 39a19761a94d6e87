package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ersonp/genepredictor/internal/domain/entities"
	"github.com/ersonp/genepredictor/internal/domain/ports"
)

// DefaultInferenceTimeout bounds a single forward pass.
const DefaultInferenceTimeout = 30 * time.Second

// PredictionService runs validate, tokenize, infer and pool for one
// sequence. It holds no per-request state and is safe for concurrent use.
type PredictionService struct {
	validator *SequenceValidator
	tokenizer ports.Tokenizer
	model     ports.EmbeddingModel
	pooler    *Pooler
	timeout   time.Duration
}

// NewPredictionService creates a new prediction service.
func NewPredictionService(validator *SequenceValidator, tokenizer ports.Tokenizer, model ports.EmbeddingModel, timeout time.Duration) *PredictionService {
	if validator == nil {
		validator = NewSequenceValidator(DefaultMinLength, DefaultMaxLength)
	}
	if timeout <= 0 {
		timeout = DefaultInferenceTimeout
	}
	return &PredictionService{
		validator: validator,
		tokenizer: tokenizer,
		model:     model,
		pooler:    NewPooler(),
		timeout:   timeout,
	}
}

// run tracks the stage of one request.
type run struct {
	stage   entities.Stage
	started time.Time
	logger  *zerolog.Logger
}

func (r *run) advance(next entities.Stage) {
	if !r.stage.CanAdvanceTo(next) {
		panic(fmt.Sprintf("illegal stage transition %s -> %s", r.stage, next))
	}
	r.stage = next
}

// fail moves the run to Errored and returns err as a typed error carrying
// the last stage reached.
func (r *run) fail(err error) error {
	var e *entities.Error
	if found, ok := entities.AsError(err); ok {
		cp := *found
		e = &cp
	} else {
		e = entities.NewError(entities.KindInferenceFailure, "unexpected pipeline error", err)
	}
	e.Stage = r.stage
	r.advance(entities.StageErrored)

	ev := r.logger.Error()
	if e.Kind.IsClientError() {
		ev = r.logger.Debug()
	}
	ev.Str("kind", string(e.Kind)).
		Str("stage", e.Stage.String()).
		Dur("elapsed", time.Since(r.started)).
		Err(e.Err).
		Msg(e.Message)
	return e
}

// Predict computes one embedding per strategy for raw. With no strategies
// given, mean and max are both pooled.
func (s *PredictionService) Predict(ctx context.Context, raw string, strategies ...entities.PoolingStrategy) (*entities.PredictionResult, error) {
	r := &run{stage: entities.StageReceived, started: time.Now(), logger: zerolog.Ctx(ctx)}

	strategies, err := normalizeStrategies(strategies)
	if err != nil {
		return nil, r.fail(err)
	}

	seq, err := s.validator.Validate(raw)
	if err != nil {
		return nil, r.fail(err)
	}
	r.advance(entities.StageValidated)

	tokens, err := s.tokenizer.Tokenize(ctx, seq)
	if err != nil {
		if entities.KindOf(err) == entities.KindModelUnavailable {
			return nil, r.fail(err)
		}
		return nil, r.fail(entities.NewError(entities.KindTokenizationFailure, "tokenizer failed", err))
	}
	r.advance(entities.StageTokenized)

	matrix, err := s.infer(ctx, tokens)
	if err != nil {
		return nil, r.fail(err)
	}
	if matrix.Rows() != len(tokens) {
		return nil, r.fail(entities.NewError(entities.KindInferenceFailure, "model output does not match token count",
			fmt.Errorf("got %d rows for %d tokens", matrix.Rows(), len(tokens))))
	}
	r.advance(entities.StageInferred)

	embeddings, err := s.pooler.PoolAll(matrix, strategies)
	if err != nil {
		return nil, r.fail(err)
	}
	r.advance(entities.StagePooled)

	result := &entities.PredictionResult{
		Sequence:   seq,
		Embeddings: embeddings,
		TokenCount: len(tokens),
	}
	r.advance(entities.StageCompleted)

	r.logger.Debug().
		Int("length", seq.Len()).
		Int("tokens", len(tokens)).
		Dur("elapsed", time.Since(r.started)).
		Msg("prediction completed")
	return result, nil
}

type inferResult struct {
	matrix entities.HiddenStateMatrix
	err    error
}

// infer runs the model under the configured timeout. A pass that outlives
// the deadline keeps running in its goroutine and its result is dropped.
func (s *PredictionService) infer(ctx context.Context, tokens entities.TokenSequence) (entities.HiddenStateMatrix, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan inferResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- inferResult{err: entities.NewError(entities.KindInferenceFailure,
					"model inference failed", fmt.Errorf("panic: %v", p))}
			}
		}()
		m, err := s.model.Infer(ctx, tokens)
		done <- inferResult{matrix: m, err: err}
	}()

	select {
	case res := <-done:
		if res.err == nil {
			return res.matrix, nil
		}
		if errors.Is(res.err, context.DeadlineExceeded) {
			return nil, s.timeoutError(res.err)
		}
		if e, ok := entities.AsError(res.err); ok {
			switch e.Kind {
			case entities.KindModelUnavailable, entities.KindInferenceFailure, entities.KindTimeout:
				return nil, res.err
			}
		}
		return nil, entities.NewError(entities.KindInferenceFailure, "model inference failed", res.err)
	case <-ctx.Done():
		return nil, s.timeoutError(ctx.Err())
	}
}

func (s *PredictionService) timeoutError(cause error) error {
	return entities.NewError(entities.KindTimeout,
		fmt.Sprintf("inference did not complete within %s", s.timeout), cause)
}

func normalizeStrategies(in []entities.PoolingStrategy) ([]entities.PoolingStrategy, error) {
	names := make([]string, len(in))
	for i, s := range in {
		names[i] = string(s)
	}
	return entities.ParseStrategies(names)
}
