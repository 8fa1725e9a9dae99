package llm

import "fmt"

// ProviderError represents a failure at the model provider boundary.
// The run loop surfaces these to the operator instead of crashing.
type ProviderError struct {
	Provider   string
	StatusCode int // 0 for network-level failures
	Message    string
	Retryable  bool
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("[%s] network error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("[%s] http %d: %s (retryable=%v)", e.Provider, e.StatusCode, e.Message, e.Retryable)
}

// errorFromStatus maps an HTTP status code to a typed provider error.
// 408/409/429 and all 5xx are transient and worth a retry.
func errorFromStatus(provider string, status int, body string) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: status,
		Message:    tail(body, 800),
		Retryable:  status == 408 || status == 409 || status == 429 || status >= 500,
	}
}

// networkError wraps a transport-level failure as a retryable provider error
func networkError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Message:   err.Error(),
		Retryable: true,
	}
}

// ParseError reports model output that could not be decoded into a
// step decision. Recoverable: the loop rejects it back to the model.
type ParseError struct {
	Raw string
	Err error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse model output as step decision: %v", e.Err)
}

// Unwrap returns the underlying decode error
func (e *ParseError) Unwrap() error {
	return e.Err
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
