package types

import (
	"fmt"
	"strings"
)

// ProtocolViolation reports a step decision that breaks the one-command
// protocol. It is recoverable: the decision is rejected back to the model
// without executing anything.
type ProtocolViolation struct {
	Field   string // JSON field that violated the protocol, e.g. "cmd"
	Message string // human-readable description
}

// Error implements the error interface
func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation in %s: %s", e.Field, e.Message)
}

// ToPrompt formats the violation for model consumption, so the model can
// re-emit a valid decision on the next step.
func (e *ProtocolViolation) ToPrompt() string {
	return fmt.Sprintf("Invalid output: %s (%s). Please emit a valid next JSON step.", e.Message, e.Field)
}

// Validate checks a decision against the step protocol. step is the
// 1-based step counter; step 1 must be a plan.
func (d *StepDecision) Validate(step int) error {
	if !d.Phase.IsValid() {
		return &ProtocolViolation{
			Field:   "phase",
			Message: fmt.Sprintf("invalid phase %q, expected one of: %s", d.Phase, joinPhases()),
		}
	}
	if !d.Decision.IsValid() {
		return &ProtocolViolation{
			Field:   "decision",
			Message: fmt.Sprintf("invalid decision %q, expected direct_execute or ask_user", d.Decision),
		}
	}
	if step == 1 && d.Phase != PhasePlan {
		return &ProtocolViolation{
			Field:   "phase",
			Message: "step 1 must be phase=plan",
		}
	}
	if !d.HasMemoryUpdate() {
		return &ProtocolViolation{
			Field:   "task_md_patch",
			Message: "task_md_patch is required on every step (full TASK.md content)",
		}
	}

	cmd := strings.TrimSpace(d.Command)
	if d.Phase.RequiresCommand() {
		if cmd == "" && d.Decision != DecisionAskUser {
			return &ProtocolViolation{
				Field:   "cmd",
				Message: fmt.Sprintf("phase=%s requires exactly one non-empty cmd unless decision=ask_user", d.Phase),
			}
		}
		return nil
	}
	if cmd != "" {
		return &ProtocolViolation{
			Field:   "cmd",
			Message: fmt.Sprintf("phase=%s must have empty cmd", d.Phase),
		}
	}
	return nil
}

func joinPhases() string {
	all := AllPhases()
	parts := make([]string, len(all))
	for i, p := range all {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
