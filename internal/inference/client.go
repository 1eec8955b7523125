package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"datagen/internal/schema"
)

// Result maps a table name to its generated rows, in the order the service
// returned them.
type Result map[string][]map[string]any

func (r Result) RowCount() int {
	total := 0
	for _, rows := range r {
		total += len(rows)
	}
	return total
}

var ErrEmptyOutput = errors.New("inference response has no output")

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Client posts generation requests to the scoring endpoint.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: timeout},
	}
}

type scoreResponse struct {
	Output json.RawMessage `json:"output"`
}

// Generate sends the request and decodes the generated rows. Transport,
// status and decoding failures are all returned as errors.
func (c *Client) Generate(ctx context.Context, req schema.GenerationRequest) (Result, error) {
	body, err := json.Marshal(schema.WrapUserInput(req))
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach inference endpoint: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read inference response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet(payload)}
	}

	return decodeOutput(payload)
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference endpoint returned %d: %s", e.StatusCode, e.Body)
}

// decodeOutput accepts the output either as a JSON encoded string or as an
// inline object.
func decodeOutput(payload []byte) (Result, error) {
	var sr scoreResponse
	if err := json.Unmarshal(payload, &sr); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}
	raw := bytes.TrimSpace(sr.Output)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrEmptyOutput
	}

	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("failed to decode inference output: %w", err)
		}
		raw = []byte(encoded)
	}

	return DecodeResult(raw)
}

// DecodeResult parses a table-to-rows document, keeping numbers as
// json.Number so integers survive unchanged.
func DecodeResult(raw []byte) (Result, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var result Result
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse generated rows: %w", err)
	}
	if result == nil {
		return nil, ErrEmptyOutput
	}
	return result, nil
}

func snippet(b []byte) string {
	const limit = 512
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
