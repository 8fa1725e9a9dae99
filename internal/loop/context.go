package loop

import (
	"fmt"

	"github.com/daydemir/vibe/internal/llm"
	"github.com/daydemir/vibe/internal/types"
)

// Context accumulates, in order, every step decision, command result and
// human intervention for the lifetime of one run. Append-only; the model
// reads it back as conversational history. Owned exclusively by the run
// loop (consoles append through the Transcript interface).
type Context struct {
	messages []llm.Message
}

// NewContext seeds the history with the system prompt
func NewContext(system string) *Context {
	return &Context{
		messages: []llm.Message{{Role: "system", Content: system}},
	}
}

// Messages returns the accumulated history
func (c *Context) Messages() []llm.Message {
	return c.messages
}

// Len returns the number of accumulated messages
func (c *Context) Len() int {
	return len(c.messages)
}

// AddUser appends a user turn
func (c *Context) AddUser(content string) {
	c.messages = append(c.messages, llm.Message{Role: "user", Content: content})
}

// AddAssistant appends the model's decision as an assistant turn
func (c *Context) AddAssistant(d *types.StepDecision) {
	c.messages = append(c.messages, llm.Message{Role: "assistant", Content: llm.MarshalDecision(d)})
}

// AddFeedback appends operator feedback from a console session
func (c *Context) AddFeedback(text string) {
	c.AddUser("Human feedback: " + text)
}

// AddManualCommand appends an operator-run command and its output
func (c *Context) AddManualCommand(command, output string) {
	c.AddUser(fmt.Sprintf("human_manual_command: %s\noutput:\n%s", command, output))
}
