package types

// StepDecision is the structured output the model must emit each step.
// The wire format is strict JSON; field names match the schema the system
// prompt mandates.
type StepDecision struct {
	Phase     Phase    `json:"phase"`
	Decision  Decision `json:"decision"`
	Questions []string `json:"questions,omitempty"`
	Say       string   `json:"say,omitempty"`
	Goal      string   `json:"goal,omitempty"`
	Checklist []string `json:"checklist,omitempty"`
	Command   string   `json:"cmd"`

	// MemoryUpdate is the full replacement text for the working-memory file.
	// nil means the model omitted it, which is a protocol violation.
	MemoryUpdate *string  `json:"task_md_patch"`
	MemoryAdd    []string `json:"memory_add,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// HasMemoryUpdate reports whether the decision carries the mandatory
// working-memory replacement.
func (d *StepDecision) HasMemoryUpdate() bool {
	return d.MemoryUpdate != nil
}

// Memory returns the working-memory replacement text, or "" if absent.
func (d *StepDecision) Memory() string {
	if d.MemoryUpdate == nil {
		return ""
	}
	return *d.MemoryUpdate
}
