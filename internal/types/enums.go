package types

// Phase represents the intent the model declares for a step
type Phase string

const (
	// PhasePlan is a thinking step; no command may be executed
	PhasePlan Phase = "plan"
	// PhaseAct executes exactly one shell command
	PhaseAct Phase = "act"
	// PhaseVerify executes one command whose result is judged as a check
	PhaseVerify Phase = "verify"
	// PhaseChat is a side-channel conversation step; execution is disabled
	PhaseChat Phase = "chat"
	// PhaseDone signals the model believes the goal is satisfied.
	// It never terminates the run by itself; it opens the post-verify gate.
	PhaseDone Phase = "done"
)

// IsValid checks if a phase value is valid
func (p Phase) IsValid() bool {
	for _, valid := range AllPhases() {
		if p == valid {
			return true
		}
	}
	return false
}

// AllPhases returns all valid phase values
func AllPhases() []Phase {
	return []Phase{PhasePlan, PhaseAct, PhaseVerify, PhaseChat, PhaseDone}
}

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// RequiresCommand reports whether the phase must carry a command
func (p Phase) RequiresCommand() bool {
	return p == PhaseAct || p == PhaseVerify
}

// Decision represents how the model wants the step handled
type Decision string

const (
	// DecisionExecute proceeds without asking the operator
	DecisionExecute Decision = "direct_execute"
	// DecisionAskUser blocks on clarifying questions before anything runs
	DecisionAskUser Decision = "ask_user"
)

// IsValid checks if a decision value is valid
func (d Decision) IsValid() bool {
	for _, valid := range AllDecisions() {
		if d == valid {
			return true
		}
	}
	return false
}

// AllDecisions returns all valid decision values
func AllDecisions() []Decision {
	return []Decision{DecisionExecute, DecisionAskUser}
}

// String returns the string representation of the decision
func (d Decision) String() string {
	return string(d)
}
