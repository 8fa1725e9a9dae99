package loop

import (
	"fmt"

	"github.com/daydemir/vibe/internal/types"
)

// Machine tracks the live phase of a run. The model re-declares its phase
// every step and the machine accepts the re-assignment unconditionally,
// with one hard rule: the terminal done state is reachable only through
// the post-verify gate with explicit operator confirmation. A model
// declaration of "done" opens the gate, it never ends the run. Aborted is
// reachable only via a confirmed operator quit.
type Machine struct {
	phase    types.Phase
	gateOpen bool
	done     bool
	aborted  bool
}

// NewMachine starts in plan, matching the step-1-must-plan rule
func NewMachine() *Machine {
	return &Machine{phase: types.PhasePlan}
}

// Phase returns the current model-directed phase
func (m *Machine) Phase() types.Phase {
	return m.phase
}

// Declare re-assigns the live phase to the model's declaration. done is
// routed to the gate instead of being adopted as a phase.
func (m *Machine) Declare(p types.Phase) error {
	if m.Terminal() {
		return fmt.Errorf("run already terminal")
	}
	if p == types.PhaseDone {
		m.gateOpen = true
		return nil
	}
	m.gateOpen = false
	m.phase = p
	return nil
}

// OpenGate opens the post-verify completion gate (a passing verify)
func (m *Machine) OpenGate() {
	if !m.Terminal() {
		m.gateOpen = true
	}
}

// GateOpen reports whether the post-verify gate is open
func (m *Machine) GateOpen() bool {
	return m.gateOpen
}

// CloseGate returns to the model-directed loop without ending the run
func (m *Machine) CloseGate() {
	m.gateOpen = false
}

// ConfirmDone moves to terminal done. Only legal while the gate is open:
// no model assertion or step count alone ever ends the run.
func (m *Machine) ConfirmDone() error {
	if m.Terminal() {
		return fmt.Errorf("run already terminal")
	}
	if !m.gateOpen {
		return fmt.Errorf("done requires the post-verify gate to be open")
	}
	m.done = true
	m.gateOpen = false
	return nil
}

// Abort moves to terminal aborted after a confirmed operator quit
func (m *Machine) Abort() {
	m.aborted = true
	m.gateOpen = false
}

// Done reports terminal, operator-confirmed completion
func (m *Machine) Done() bool {
	return m.done
}

// Aborted reports terminal operator abort
func (m *Machine) Aborted() bool {
	return m.aborted
}

// Terminal reports whether the run has ended either way
func (m *Machine) Terminal() bool {
	return m.done || m.aborted
}
