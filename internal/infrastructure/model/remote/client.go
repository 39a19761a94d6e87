// Package remote provides an EmbeddingModel backed by a model server that
// speaks the KServe v2 HTTP inference protocol (Triton, KServe, Seldon MLServer).
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ersonp/genepredictor/internal/domain/entities"
	"github.com/ersonp/genepredictor/internal/infrastructure/config"
)

const (
	// DefaultOutputName is the encoder output holding per-token states.
	DefaultOutputName = "last_hidden_state"
	// DefaultRequestTimeout bounds a single HTTP call to the server.
	DefaultRequestTimeout = 60 * time.Second

	inputIDsName      = "input_ids"
	attentionMaskName = "attention_mask"
	maxErrorBody      = 4 << 10
	maxDimension      = 1 << 16
)

// Client implements ports.EmbeddingModel over HTTP.
type Client struct {
	http       *http.Client
	endpoint   string
	modelID    string
	outputName string
	apiKey     string
	dim        int
}

// NewClient creates a client for cfg.ID served at cfg.Endpoint.
// Dimension may be left at zero and discovered with Connect.
func NewClient(cfg config.ModelConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("model endpoint is required for the remote backend")
	}
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid model endpoint %q: %w", cfg.Endpoint, err)
	}
	if cfg.ID == "" {
		return nil, errors.New("model id is required for the remote backend")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	output := cfg.OutputName
	if output == "" {
		output = DefaultOutputName
	}

	return &Client{
		http:       &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		modelID:    cfg.ID,
		outputName: output,
		apiKey:     cfg.APIKey,
		dim:        cfg.Dimension,
	}, nil
}

// Dimension implements ports.EmbeddingModel.
func (c *Client) Dimension() int {
	return c.dim
}

// Connect checks that the model is ready and, if the dimension was not
// configured, reads it from the model metadata. It must be called before
// the client is shared.
func (c *Client) Connect(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/ready", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return entities.NewError(entities.KindModelUnavailable, "model server not reachable", err)
	}
	drain(resp)
	if resp.StatusCode != http.StatusOK {
		return entities.NewError(entities.KindModelUnavailable, "model is not ready",
			fmt.Errorf("ready check returned status %d", resp.StatusCode))
	}

	if c.dim > 0 {
		return nil
	}

	meta, err := c.metadata(ctx)
	if err != nil {
		return err
	}
	for _, out := range meta.Outputs {
		if out.Name != c.outputName || len(out.Shape) == 0 {
			continue
		}
		if d := out.Shape[len(out.Shape)-1]; d > 0 && d <= maxDimension {
			c.dim = int(d)
			return nil
		}
	}
	return entities.NewError(entities.KindModelUnavailable, "model metadata does not declare a hidden size",
		fmt.Errorf("output %q not found or has variable last dimension", c.outputName))
}

func (c *Client) metadata(ctx context.Context) (*MetadataResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, entities.NewError(entities.KindModelUnavailable, "model server not reachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, entities.NewError(entities.KindModelUnavailable, "model metadata unavailable", statusError(resp))
	}

	var meta MetadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, entities.NewError(entities.KindModelUnavailable, "model metadata unreadable", err)
	}
	return &meta, nil
}

// Infer implements ports.EmbeddingModel.
func (c *Client) Infer(ctx context.Context, tokens entities.TokenSequence) (entities.HiddenStateMatrix, error) {
	n := int64(len(tokens))
	mask := make([]int64, n)
	for i := range mask {
		mask[i] = 1
	}

	body, err := json.Marshal(InferRequest{
		Inputs: []Tensor{
			{Name: inputIDsName, Shape: []int64{1, n}, Datatype: "INT64", Data: []int64(tokens)},
			{Name: attentionMaskName, Shape: []int64{1, n}, Datatype: "INT64", Data: mask},
		},
		Outputs: []RequestedOutput{{Name: c.outputName}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling infer request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/infer", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("calling model server: %w", ctxErr)
		}
		return nil, entities.NewError(entities.KindModelUnavailable, "model server not reachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusNotFound:
		return nil, entities.NewError(entities.KindModelUnavailable, "model is not available on the server", statusError(resp))
	default:
		return nil, entities.NewError(entities.KindInferenceFailure, "model server rejected the request", statusError(resp))
	}

	var out InferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, entities.NewError(entities.KindInferenceFailure, "model server returned an unreadable response", err)
	}

	matrix, err := c.toMatrix(out, len(tokens))
	if err != nil {
		return nil, entities.NewError(entities.KindInferenceFailure, "model server returned malformed hidden states", err)
	}
	return matrix, nil
}

// toMatrix reshapes the flattened [1, n, D] output into n rows of D.
func (c *Client) toMatrix(resp InferResponse, n int) (entities.HiddenStateMatrix, error) {
	var tensor *OutputTensor
	for i := range resp.Outputs {
		if resp.Outputs[i].Name == c.outputName {
			tensor = &resp.Outputs[i]
			break
		}
	}
	if tensor == nil {
		return nil, fmt.Errorf("output %q missing from response", c.outputName)
	}
	if tensor.Datatype != "" && tensor.Datatype != "FP32" {
		return nil, fmt.Errorf("output datatype %s, want FP32", tensor.Datatype)
	}
	if len(tensor.Shape) != 3 || tensor.Shape[0] != 1 || tensor.Shape[1] != int64(n) {
		return nil, fmt.Errorf("output shape %v, want [1 %d D]", tensor.Shape, n)
	}

	if tensor.Shape[2] <= 0 || tensor.Shape[2] > maxDimension {
		return nil, fmt.Errorf("hidden size %d out of range (1..%d)", tensor.Shape[2], maxDimension)
	}
	dim := int(tensor.Shape[2])
	if c.dim > 0 && dim != c.dim {
		return nil, fmt.Errorf("hidden size %d, want %d", dim, c.dim)
	}
	if len(tensor.Data) != n*dim {
		return nil, fmt.Errorf("output has %d values, want %d", len(tensor.Data), n*dim)
	}

	matrix := make(entities.HiddenStateMatrix, n)
	for i := range matrix {
		matrix[i] = tensor.Data[i*dim : (i+1)*dim : (i+1)*dim]
	}
	return matrix, nil
}

func (c *Client) newRequest(ctx context.Context, method, suffix string, body io.Reader) (*http.Request, error) {
	u := c.endpoint + "/v2/models/" + url.PathEscape(c.modelID) + suffix
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var e errorResponse
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return fmt.Errorf("status %d: %s", resp.StatusCode, e.Error)
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}
