package loop

// State is the live run state: current step, remaining step budget, pause
// flag and the phase machine. It is mutated only on the run loop's
// goroutine; the interrupt listener communicates through its own latch
// and never touches this directly.
type State struct {
	Step    int
	Budget  int
	Paused  bool
	Machine *Machine
}

// NewState creates run state with the configured step budget
func NewState(maxSteps int) *State {
	return &State{
		Budget:  maxSteps,
		Machine: NewMachine(),
	}
}
