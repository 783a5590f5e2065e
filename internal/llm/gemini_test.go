package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestPost_SendsKeyAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1beta/models/test-model:generateContent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("expected key test-key, got %q", got)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json, got %q", r.Header.Get("Content-Type"))
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != `{"contents":[]}` {
			t.Errorf("unexpected body %q", b)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	c := NewGemini(GeminiConfig{APIKey: "test-key", BaseURL: server.URL + "/v1beta/", Model: "test-model"})
	defer c.Close()

	resp, err := c.Post(context.Background(), []byte(`{"contents":[]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusOK || string(resp.Body) != `{"candidates":[]}` {
		t.Fatalf("unexpected response: %d %q", resp.Status, resp.Body)
	}
	if strings.Contains(c.Endpoint(), "test-key") {
		t.Fatalf("endpoint leaks credential: %s", c.Endpoint())
	}
}

func TestPost_Non200IsNotTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
	}))
	defer server.Close()

	c := NewGemini(GeminiConfig{APIKey: "bad", BaseURL: server.URL})
	resp, err := c.Post(context.Background(), []byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusBadRequest || !strings.Contains(string(resp.Body), "API key not valid") {
		t.Fatalf("unexpected response: %d %q", resp.Status, resp.Body)
	}
}

func TestPost_TimeoutIsError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := NewGemini(GeminiConfig{APIKey: "k", BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	if _, err := c.Post(context.Background(), []byte(`{}`)); err == nil {
		t.Fatal("expected timeout error")
	}
}

type countingBody struct {
	io.Reader
	closed *int32
}

func (b countingBody) Close() error {
	atomic.AddInt32(b.closed, 1)
	return nil
}

type stubRoundTripper struct {
	calls  int32
	closed int32
	err    error
}

func (s *stubRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       countingBody{Reader: strings.NewReader(`{"candidates":[]}`), closed: &s.closed},
		Header:     http.Header{},
		Request:    req,
	}, nil
}

func TestPost_ClosesBodyOnEveryCall(t *testing.T) {
	rt := &stubRoundTripper{}
	c := NewGemini(GeminiConfig{APIKey: "k", BaseURL: "http://gemini.test", Base: rt})

	for i := 0; i < 5; i++ {
		if _, err := c.Post(context.Background(), []byte(`{}`)); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if rt.calls != 5 {
		t.Fatalf("expected 5 round trips, got %d", rt.calls)
	}
	if rt.closed != 5 {
		t.Fatalf("expected every body closed, got %d of 5", rt.closed)
	}
}

func TestPost_NetworkError(t *testing.T) {
	rt := &stubRoundTripper{err: errors.New("connection refused")}
	c := NewGemini(GeminiConfig{APIKey: "k", BaseURL: "http://gemini.test", Base: rt})

	_, err := c.Post(context.Background(), []byte(`{}`))
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected wrapped network error, got %v", err)
	}
}
