package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/daydemir/vibe/internal/types"
)

// ParseDecision decodes the model's reply into a step decision. Models in
// json_object mode still occasionally fence the payload or prepend prose,
// so the parser trims to the outermost JSON object before decoding.
func ParseDecision(raw string) (*types.StepDecision, error) {
	text := extractJSON(raw)
	if text == "" {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("no JSON object found")}
	}

	var decision types.StepDecision
	if err := json.Unmarshal([]byte(text), &decision); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	// Absent decision defaults to direct_execute, matching the schema.
	if decision.Decision == "" {
		decision.Decision = types.DecisionExecute
	}
	return &decision, nil
}

// extractJSON strips markdown fences and surrounding prose, returning the
// outermost {...} span.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// MarshalDecision re-encodes a decision for the assistant turn appended to
// the run context.
func MarshalDecision(d *types.StepDecision) string {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprintf(`{"phase":%q}`, d.Phase)
	}
	return string(data)
}
