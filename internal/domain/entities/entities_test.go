package entities

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolingStrategy_IsValid(t *testing.T) {
	assert.True(t, PoolingMean.IsValid())
	assert.True(t, PoolingMax.IsValid())
	assert.False(t, PoolingStrategy("median").IsValid())
	assert.False(t, PoolingStrategy("").IsValid())
}

func TestParseStrategies(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []PoolingStrategy
		wantErr  bool
	}{
		{
			name:     "empty uses defaults",
			input:    nil,
			expected: []PoolingStrategy{PoolingMean, PoolingMax},
		},
		{
			name:     "single strategy",
			input:    []string{"max"},
			expected: []PoolingStrategy{PoolingMax},
		},
		{
			name:     "case and whitespace normalized",
			input:    []string{" MEAN "},
			expected: []PoolingStrategy{PoolingMean},
		},
		{
			name:     "duplicates dropped",
			input:    []string{"max", "mean", "max"},
			expected: []PoolingStrategy{PoolingMax, PoolingMean},
		},
		{
			name:    "unknown strategy",
			input:   []string{"mean", "cls"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseStrategies(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindUnknownStrategy, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseStrategies_DoesNotAliasDefaults(t *testing.T) {
	result, err := ParseStrategies(nil)
	require.NoError(t, err)

	result[0] = PoolingMax
	assert.Equal(t, PoolingMean, DefaultStrategies[0])
}

func TestStage_Transitions(t *testing.T) {
	assert.True(t, StageReceived.CanAdvanceTo(StageValidated))
	assert.True(t, StageInferred.CanAdvanceTo(StagePooled))
	assert.True(t, StageTokenized.CanAdvanceTo(StageErrored))

	assert.False(t, StageReceived.CanAdvanceTo(StageTokenized), "skipping a stage")
	assert.False(t, StagePooled.CanAdvanceTo(StageInferred), "moving backwards")
	assert.False(t, StageCompleted.CanAdvanceTo(StageErrored), "leaving a terminal stage")
	assert.False(t, StageErrored.CanAdvanceTo(StageErrored))
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "Received", StageReceived.String())
	assert.Equal(t, "Errored", StageErrored.String())
	assert.Equal(t, "Unknown", Stage(42).String())
}

func TestKindOf(t *testing.T) {
	typed := &Error{Kind: KindTooLong, Message: "too long"}

	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.Equal(t, KindTooLong, KindOf(typed))
	assert.Equal(t, KindTooLong, KindOf(fmt.Errorf("wrapped: %w", typed)))
	assert.Equal(t, KindInferenceFailure, KindOf(errors.New("plain")))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(KindModelUnavailable, "model server not reachable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ModelUnavailable")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorKind_IsClientError(t *testing.T) {
	for _, k := range []ErrorKind{KindEmpty, KindTooShort, KindTooLong, KindInvalidCharacter, KindUnknownStrategy, KindInvalidRequest} {
		assert.True(t, k.IsClientError(), k)
	}
	for _, k := range []ErrorKind{KindTokenizationFailure, KindInferenceFailure, KindEmptyMatrix, KindModelUnavailable, KindTimeout} {
		assert.False(t, k.IsClientError(), k)
	}
}

func TestHiddenStateMatrix_Dims(t *testing.T) {
	assert.Equal(t, 0, HiddenStateMatrix{}.Rows())
	assert.Equal(t, 0, HiddenStateMatrix{}.Dim())

	m := HiddenStateMatrix{{1, 2, 3}, {4, 5, 6}}
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 3, m.Dim())
}
