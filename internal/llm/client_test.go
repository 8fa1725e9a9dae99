package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daydemir/vibe/internal/types"
)

func testClient(url string) *Client {
	c := NewClient(Config{
		Provider: "openai",
		Model:    "gpt-4.1-mini",
		BaseURL:  url,
		APIKey:   "test-key",
	})
	c.retry.baseDelay = 0 // no backoff sleeps in tests
	return c
}

func chatBody(content string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"content":%q}}]}`, content)
}

func TestProposeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		fmt.Fprint(w, chatBody(`{"phase":"plan","task_md_patch":"# Task"}`))
	}))
	defer srv.Close()

	d, err := testClient(srv.URL).Propose(context.Background(), []Message{{Role: "user", Content: "go"}})
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if d.Phase != types.PhasePlan {
		t.Errorf("phase = %q, want plan", d.Phase)
	}
}

func TestProposeRetriesTransientFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, chatBody(`{"phase":"plan","task_md_patch":"x"}`))
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Propose(context.Background(), nil); err != nil {
		t.Fatalf("Propose() error = %v after %d calls", err, calls)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestProposeDoesNotRetryAuthFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Propose(context.Background(), nil)
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *ProviderError", err)
	}
	if pe.Retryable {
		t.Error("401 marked retryable")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestProposeRetriesExhausted(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Propose(context.Background(), nil)
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *ProviderError", err)
	}
	if pe.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", pe.StatusCode)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestProposeMissingAPIKey(t *testing.T) {
	c := NewClient(Config{Provider: "openai", Model: "m", BaseURL: "http://unused"})
	_, err := c.Propose(context.Background(), nil)
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *ProviderError", err)
	}
}

func TestNewClientQwenBaseRemap(t *testing.T) {
	c := NewClient(Config{Provider: "qwen", BaseURL: "https://api.openai.com/v1", APIKey: "k"})
	if c.config.BaseURL != dashscopeBase {
		t.Errorf("base = %q, want dashscope compatible-mode", c.config.BaseURL)
	}

	c = NewClient(Config{Provider: "openai", BaseURL: "https://api.openai.com/v1/", APIKey: "k"})
	if c.config.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("base = %q, trailing slash not trimmed", c.config.BaseURL)
	}
}
