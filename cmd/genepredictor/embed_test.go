package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/genepredictor/internal/application/handlers"
	"github.com/ersonp/genepredictor/internal/domain/entities"
	"github.com/ersonp/genepredictor/internal/infrastructure/config"
	"github.com/ersonp/genepredictor/internal/infrastructure/parsers"
)

func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	prevLog, prevConfig := logOutput, globalConfig
	logOutput = io.Discard
	t.Cleanup(func() { logOutput, globalConfig = prevLog, prevConfig })

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var lines []map[string]any
	scanner := bufio.NewScanner(bytes.NewBufferString(out))
	scanner.Buffer(make([]byte, 1<<20), 1<<24)
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestEmbed_Arguments(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := executeCmd(t, "embed", "ACGTAGCATCGGATCTATCT", "TTTTAAAACCCGGGGGNNNN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 records failed")

	lines := decodeLines(t, out)
	require.Len(t, lines, 2)

	ok := lines[0]
	assert.Equal(t, "ACGTAGCATCGGATCTATCT", ok["sequence"])
	assert.InDelta(t, 20-6+1+2, ok["token_count"], 0)
	embeddings := ok["embeddings"].(map[string]any)
	assert.Len(t, embeddings["mean"], 768)
	assert.Len(t, embeddings["max"], 768)
	assert.NotContains(t, ok, "error")

	bad := lines[1]
	assert.Equal(t, "InvalidCharacter", bad["error"])
	assert.Contains(t, bad["message"], "'N'")
	assert.InDelta(t, 2, bad["line"], 0)
	assert.NotContains(t, bad, "embeddings")
}

func TestEmbed_InputFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	fasta := filepath.Join(dir, "reads.fa")
	require.NoError(t, os.WriteFile(fasta, []byte(">r1\nACGTAC\nGTACGT\n>r2\nTTTTGGGGCC\n"), 0644))

	out, err := executeCmd(t, "embed", "--input", fasta, "--strategy", "mean")
	require.NoError(t, err)

	lines := decodeLines(t, out)
	require.Len(t, lines, 2)
	assert.Equal(t, "r1", lines[0]["id"])
	assert.Equal(t, "ACGTACGTACGT", lines[0]["sequence"])
	assert.Equal(t, "r2", lines[1]["id"])

	embeddings := lines[1]["embeddings"].(map[string]any)
	assert.Contains(t, embeddings, "mean")
	assert.NotContains(t, embeddings, "max")
}

func TestEmbed_UsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "custom.yaml")
	content := "model:\n  backend: hashing\n  id: small\n  kmer_size: 3\n  dimension: 8\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	out, err := executeCmd(t, "--config", path, "embed", "ACGTACGT")
	require.NoError(t, err)

	lines := decodeLines(t, out)
	require.Len(t, lines, 1)
	assert.InDelta(t, 8-3+1+2, lines[0]["token_count"], 0)
	assert.Len(t, lines[0]["embeddings"].(map[string]any)["mean"], 8)
}

func TestEmbed_Errors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{
			name:   "no sequences",
			args:   []string{"embed"},
			errMsg: "no sequences given",
		},
		{
			name:   "invalid format",
			args:   []string{"embed", "--format", "genbank", "ACGTAC"},
			errMsg: "invalid format",
		},
		{
			name:   "missing input file",
			args:   []string{"embed", "--input", "missing.fa"},
			errMsg: "opening file",
		},
		{
			name:   "missing explicit config",
			args:   []string{"--config", "nope.yaml", "embed", "ACGTAC"},
			errMsg: "loading config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())

			_, err := executeCmd(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWriteResults(t *testing.T) {
	results := []handlers.BatchResult{
		{
			Record: parsers.Record{ID: "a", Line: 1},
			Response: &handlers.PredictResponse{
				Sequence:   "ACGTAC",
				Embeddings: map[string][]float32{"mean": {0.5, -0.25}},
				TokenCount: 3,
			},
		},
		{
			Record: parsers.Record{ID: "b", Line: 2},
			Err:    entities.NewError(entities.KindTooShort, "sequence too short", errors.New("internal detail")),
		},
	}

	var buf bytes.Buffer
	failed, err := writeResults(&buf, results)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	expected := `{"id":"a","line":1,"sequence":"ACGTAC","embeddings":{"mean":[0.5,-0.25]},"token_count":3}` + "\n" +
		`{"id":"b","line":2,"error":"TooShort","message":"sequence too short"}` + "\n"
	assert.Equal(t, expected, buf.String())
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := executeCmd(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, config.DefaultConfigDir)
	assert.True(t, config.Exists(dir))

	_, err = executeCmd(t, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}
