// Package entities contains core domain data structures.
package entities

// Alphabet is the set of nucleotides accepted in a Sequence.
const Alphabet = "ACGT"

// Sequence is a validated, uppercase DNA sequence.
// Sequences are built per request and never persisted.
type Sequence struct {
	text string
}

// NewSequence wraps already-normalized text. Callers outside of the
// validator should go through SequenceValidator.Validate instead.
func NewSequence(text string) Sequence {
	return Sequence{text: text}
}

// String returns the normalized sequence text.
func (s Sequence) String() string {
	return s.text
}

// Len returns the number of nucleotides in the sequence.
func (s Sequence) Len() int {
	return len(s.text)
}

// IsNucleotide reports whether r is one of A, C, G or T.
func IsNucleotide(r rune) bool {
	switch r {
	case 'A', 'C', 'G', 'T':
		return true
	default:
		return false
	}
}

// TokenSequence is the ordered list of token ids produced for one Sequence.
type TokenSequence []int64

// HiddenStateMatrix holds one hidden-state vector per token.
type HiddenStateMatrix [][]float32

// Rows returns the number of token vectors.
func (m HiddenStateMatrix) Rows() int {
	return len(m)
}

// Dim returns the dimensionality of the first row, or 0 for an empty matrix.
func (m HiddenStateMatrix) Dim() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}
