package loop

import (
	"strings"
	"testing"

	"github.com/daydemir/vibe/internal/types"
)

func TestContextAccumulatesInOrder(t *testing.T) {
	c := NewContext("system prompt")

	patch := "# Task"
	c.AddUser("initial")
	c.AddAssistant(&types.StepDecision{Phase: types.PhasePlan, Decision: types.DecisionExecute, MemoryUpdate: &patch})
	c.AddFeedback("go faster")
	c.AddManualCommand("ls", "file.txt")

	msgs := c.Messages()
	if len(msgs) != 5 {
		t.Fatalf("len = %d, want 5", len(msgs))
	}

	wantRoles := []string{"system", "user", "assistant", "user", "user"}
	for i, role := range wantRoles {
		if msgs[i].Role != role {
			t.Errorf("msgs[%d].Role = %q, want %q", i, msgs[i].Role, role)
		}
	}

	if !strings.HasPrefix(msgs[3].Content, "Human feedback: ") {
		t.Errorf("feedback content = %q", msgs[3].Content)
	}
	if !strings.HasPrefix(msgs[4].Content, "human_manual_command: ls") {
		t.Errorf("manual command content = %q", msgs[4].Content)
	}
	if !strings.Contains(msgs[2].Content, `"phase":"plan"`) {
		t.Errorf("assistant turn not re-marshalled: %q", msgs[2].Content)
	}
}
