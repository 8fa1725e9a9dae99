package llm

import (
	"context"

	"github.com/daydemir/vibe/internal/types"
)

// Message is one turn of conversational history sent to the model
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Backend represents a model client: a function from accumulated history
// to the next structured step decision.
type Backend interface {
	// Name returns the backend name (e.g., "openai", "qwen")
	Name() string

	// Propose asks the model for the next step decision given the run
	// history. Transport, auth and rate-limit failures surface as
	// *ProviderError; malformed model output surfaces as *ParseError.
	Propose(ctx context.Context, messages []Message) (*types.StepDecision, error)
}
