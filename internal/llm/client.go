package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/daydemir/vibe/internal/types"
)

const (
	dashscopeBase  = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	requestTimeout = 60 * time.Second
)

// Config holds model client settings
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// Client talks to an OpenAI-compatible chat-completions endpoint and
// decodes the reply into a step decision.
type Client struct {
	config Config
	http   *http.Client
	retry  retryPolicy
}

// NewClient creates a model client for the configured provider
func NewClient(config Config) *Client {
	base := strings.TrimRight(config.BaseURL, "/")
	// The qwen provider only speaks the compatible-mode endpoint.
	if config.Provider == "qwen" && !strings.Contains(base, "dashscope.aliyuncs.com") {
		base = dashscopeBase
	}
	config.BaseURL = base

	return &Client{
		config: config,
		http:   &http.Client{Timeout: requestTimeout},
		retry:  defaultRetryPolicy(),
	}
}

// Name returns the backend name
func (c *Client) Name() string {
	return c.config.Provider
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Propose implements Backend. Transient provider failures are retried with
// exponential backoff before surfacing.
func (c *Client) Propose(ctx context.Context, messages []Message) (*types.StepDecision, error) {
	if c.config.APIKey == "" {
		return nil, &ProviderError{
			Provider: c.config.Provider,
			Message:  "API_KEY/OPENAI_API_KEY not set",
		}
	}

	content, err := withRetry(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.complete(ctx, messages)
	})
	if err != nil {
		return nil, err
	}

	return ParseDecision(content)
}

// complete performs one chat-completions round trip
func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:          c.config.Model,
		Messages:       messages,
		ResponseFormat: &responseFormat{Type: "json_object"},
		Temperature:    0.2,
	})
	if err != nil {
		return "", fmt.Errorf("cannot encode request: %w", err)
	}

	url := c.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("cannot build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", networkError(c.config.Provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", networkError(c.config.Provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errorFromStatus(c.config.Provider, resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ParseError{Raw: string(body), Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &ParseError{Raw: string(body), Err: fmt.Errorf("response has no choices")}
	}
	return parsed.Choices[0].Message.Content, nil
}
