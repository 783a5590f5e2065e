package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"
)

type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// Base is the underlying round tripper; http.DefaultTransport when nil.
	Base http.RoundTripper
}

type GeminiClient struct {
	endpoint string
	client   *http.Client
}

// keyTransport adds the API key as the "key" query parameter.
type keyTransport struct {
	rt  http.RoundTripper
	key string
}

func (t keyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone request to avoid mutating the original
	cl := req.Clone(req.Context())
	q := cl.URL.Query()
	q.Set("key", t.key)
	cl.URL.RawQuery = q.Encode()
	return t.rt.RoundTrip(cl)
}

func NewGemini(cfg GeminiConfig) *GeminiClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return &GeminiClient{
		endpoint: fmt.Sprintf("%s/models/%s:generateContent", baseURL, model),
		client: &http.Client{
			Timeout:   timeout,
			Transport: keyTransport{rt: base, key: cfg.APIKey},
		},
	}
}

// Post sends body to generateContent and returns the status and full body.
// Non-200 statuses are not errors at this level; only failures to complete
// the exchange are.
func (c *GeminiClient) Post(ctx context.Context, body []byte) (RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return RawResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return RawResponse{}, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawResponse{Status: resp.StatusCode}, fmt.Errorf("read response: %w", err)
	}
	return RawResponse{Status: resp.StatusCode, Body: respBody}, nil
}

// Endpoint returns the generateContent URL without credentials.
func (c *GeminiClient) Endpoint() string { return c.endpoint }

// Close releases pooled idle connections.
func (c *GeminiClient) Close() {
	c.client.CloseIdleConnections()
}
