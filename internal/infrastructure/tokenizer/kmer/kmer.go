// Package kmer provides an overlapping k-mer Tokenizer.
package kmer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ersonp/genepredictor/internal/domain/entities"
)

// Special tokens, in vocabulary order.
const (
	PadToken  = "[PAD]"
	UnkToken  = "[UNK]"
	ClsToken  = "[CLS]"
	SepToken  = "[SEP]"
	MaskToken = "[MASK]"
)

var specialTokens = []string{PadToken, UnkToken, ClsToken, SepToken, MaskToken}

const (
	// DefaultK is the k-mer size used when none is configured.
	DefaultK = 6
	// MaxK keeps the generated vocabulary (4^k entries) bounded.
	MaxK = 8
)

// Tokenizer splits a sequence into overlapping k-mers with stride 1 and
// wraps them in [CLS] ... [SEP]. It is read-only after construction.
type Tokenizer struct {
	k     int
	vocab map[string]int64
	unk   int64
	cls   int64
	sep   int64
}

// New creates a tokenizer with a generated vocabulary: the special tokens
// followed by all 4^k k-mers in lexicographic order.
func New(k int) (*Tokenizer, error) {
	if k <= 0 {
		k = DefaultK
	}
	if k > MaxK {
		return nil, fmt.Errorf("k-mer size %d exceeds maximum %d", k, MaxK)
	}

	tokens := append([]string(nil), specialTokens...)
	tokens = append(tokens, allKmers(k)...)
	return newFromTokens(k, tokens)
}

// Load creates a tokenizer from a vocabulary file with one token per line;
// a token's id is its zero-based line number.
func Load(path string, k int) (*Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vocabulary: %w", err)
	}
	defer f.Close()

	return Read(f, k)
}

// Read parses a vocabulary from r. See Load.
func Read(r io.Reader, k int) (*Tokenizer, error) {
	if k <= 0 {
		k = DefaultK
	}

	var tokens []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		tokens = append(tokens, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading vocabulary: %w", err)
	}

	return newFromTokens(k, tokens)
}

func newFromTokens(k int, tokens []string) (*Tokenizer, error) {
	vocab := make(map[string]int64, len(tokens))
	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		if _, dup := vocab[tok]; !dup {
			vocab[tok] = int64(i)
		}
	}

	t := &Tokenizer{k: k, vocab: vocab}
	var missing []string
	for _, special := range []struct {
		name string
		dst  *int64
	}{
		{UnkToken, &t.unk},
		{ClsToken, &t.cls},
		{SepToken, &t.sep},
	} {
		id, ok := vocab[special.name]
		if !ok {
			missing = append(missing, special.name)
			continue
		}
		*special.dst = id
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("vocabulary is missing special tokens: %s", strings.Join(missing, ", "))
	}

	return t, nil
}

// K returns the k-mer size.
func (t *Tokenizer) K() int { return t.k }

// VocabSize returns the number of distinct tokens.
func (t *Tokenizer) VocabSize() int { return len(t.vocab) }

// Tokenize implements ports.Tokenizer. A sequence shorter than k becomes
// a single [UNK] between the sentinels.
func (t *Tokenizer) Tokenize(ctx context.Context, seq entities.Sequence) (entities.TokenSequence, error) {
	text := seq.String()
	if text == "" {
		return nil, errors.New("cannot tokenize an empty sequence")
	}

	n := len(text) - t.k + 1
	if n < 1 {
		return entities.TokenSequence{t.cls, t.unk, t.sep}, nil
	}

	out := make(entities.TokenSequence, 0, n+2)
	out = append(out, t.cls)
	for i := 0; i < n; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		id, ok := t.vocab[text[i:i+t.k]]
		if !ok {
			id = t.unk
		}
		out = append(out, id)
	}
	out = append(out, t.sep)

	return out, nil
}

// ID returns the id of token, if present.
func (t *Tokenizer) ID(token string) (int64, bool) {
	id, ok := t.vocab[token]
	return id, ok
}

func allKmers(k int) []string {
	out := []string{""}
	for range k {
		next := make([]string, 0, len(out)*len(entities.Alphabet))
		for _, prefix := range out {
			for _, c := range entities.Alphabet {
				next = append(next, prefix+string(c))
			}
		}
		out = next
	}
	return out
}
