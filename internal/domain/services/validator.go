// Package services implements the embedding pipeline.
package services

import (
	"fmt"
	"strings"

	"github.com/ersonp/genepredictor/internal/domain/entities"
)

const (
	// DefaultMinLength is the shortest sequence the tokenizer can turn into
	// at least one meaningful token.
	DefaultMinLength = 6
	// DefaultMaxLength bounds inference cost per request.
	DefaultMaxLength = 5000
)

// SequenceValidator checks raw input before any expensive work happens.
type SequenceValidator struct {
	minLen int
	maxLen int
}

// NewSequenceValidator creates a validator. Non-positive bounds fall back
// to the defaults.
func NewSequenceValidator(minLen, maxLen int) *SequenceValidator {
	if minLen <= 0 {
		minLen = DefaultMinLength
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	return &SequenceValidator{minLen: minLen, maxLen: maxLen}
}

// MinLength returns the configured lower bound.
func (v *SequenceValidator) MinLength() int { return v.minLen }

// MaxLength returns the configured upper bound.
func (v *SequenceValidator) MaxLength() int { return v.maxLen }

// Validate trims and uppercases raw, then checks emptiness, length and
// alphabet in that order. Lengths and indexes count characters.
func (v *SequenceValidator) Validate(raw string) (entities.Sequence, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if normalized == "" {
		return entities.Sequence{}, &entities.Error{
			Kind:    entities.KindEmpty,
			Message: "sequence is empty",
		}
	}

	runes := []rune(normalized)
	if len(runes) < v.minLen {
		return entities.Sequence{}, &entities.Error{
			Kind:    entities.KindTooShort,
			Message: fmt.Sprintf("sequence length %d is below the minimum of %d", len(runes), v.minLen),
		}
	}
	if len(runes) > v.maxLen {
		return entities.Sequence{}, &entities.Error{
			Kind:    entities.KindTooLong,
			Message: fmt.Sprintf("sequence length %d exceeds the maximum of %d", len(runes), v.maxLen),
		}
	}

	for i, r := range runes {
		if !entities.IsNucleotide(r) {
			return entities.Sequence{}, &entities.Error{
				Kind:    entities.KindInvalidCharacter,
				Message: fmt.Sprintf("invalid character %q at index %d (allowed: A, C, G, T)", r, i),
				Index:   i,
				Char:    r,
			}
		}
	}

	return entities.NewSequence(normalized), nil
}
