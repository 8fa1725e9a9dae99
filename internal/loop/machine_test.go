package loop

import (
	"testing"

	"github.com/daydemir/vibe/internal/types"
)

func TestMachineLenientRedeclaration(t *testing.T) {
	m := NewMachine()

	// Any non-terminal phase may follow any other.
	sequence := []types.Phase{types.PhaseAct, types.PhasePlan, types.PhaseVerify, types.PhaseChat, types.PhaseAct}
	for _, p := range sequence {
		if err := m.Declare(p); err != nil {
			t.Fatalf("Declare(%s) error = %v", p, err)
		}
		if m.Phase() != p {
			t.Errorf("phase = %s, want %s", m.Phase(), p)
		}
	}
	if m.Terminal() {
		t.Error("re-declarations must never terminate the run")
	}
}

func TestMachineDoneDeclarationOpensGateOnly(t *testing.T) {
	m := NewMachine()
	if err := m.Declare(types.PhaseDone); err != nil {
		t.Fatal(err)
	}
	if !m.GateOpen() {
		t.Error("done declaration should open the gate")
	}
	if m.Done() || m.Terminal() {
		t.Error("done declaration must not be terminal")
	}
}

func TestMachineConfirmDoneRequiresGate(t *testing.T) {
	m := NewMachine()

	if err := m.ConfirmDone(); err == nil {
		t.Fatal("ConfirmDone() without open gate should fail")
	}

	m.OpenGate()
	if err := m.ConfirmDone(); err != nil {
		t.Fatalf("ConfirmDone() with open gate error = %v", err)
	}
	if !m.Done() || !m.Terminal() {
		t.Error("confirmed done should be terminal")
	}

	// Terminal is final.
	if err := m.Declare(types.PhaseAct); err == nil {
		t.Error("Declare() after terminal should fail")
	}
	if err := m.ConfirmDone(); err == nil {
		t.Error("ConfirmDone() after terminal should fail")
	}
}

func TestMachineCloseGateResumes(t *testing.T) {
	m := NewMachine()
	m.OpenGate()
	m.CloseGate()

	if m.GateOpen() {
		t.Error("gate still open after CloseGate()")
	}
	if err := m.Declare(types.PhaseAct); err != nil {
		t.Errorf("Declare() after resume error = %v", err)
	}
}

func TestMachineAbort(t *testing.T) {
	m := NewMachine()
	m.Abort()

	if !m.Aborted() || !m.Terminal() {
		t.Error("Abort() should be terminal")
	}
	if m.Done() {
		t.Error("aborted run reported done")
	}
}

func TestMachineGateClosesOnRedeclaration(t *testing.T) {
	m := NewMachine()
	m.OpenGate()
	if err := m.Declare(types.PhasePlan); err != nil {
		t.Fatal(err)
	}
	if m.GateOpen() {
		t.Error("gate should close when the model re-declares a working phase")
	}
}
