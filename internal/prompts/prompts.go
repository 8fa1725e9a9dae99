// Package prompts holds the system prompt and the context builders for the
// step protocol. The model must answer every turn with one strict-JSON
// step decision.
package prompts

import "fmt"

// System is the protocol prompt sent as the first message of every run
const System = `You are Vibe Coding Runner agent.
Output STRICT JSON only. No markdown, no extra text.

Schema:
{"phase":"plan|act|verify|chat|done","decision":"direct_execute|ask_user","questions":["optional"],"say":"user-facing reply when phase=chat","goal":"...","checklist":["[ ] ..."],"cmd":"single bash command","task_md_patch":"FULL TASK.md","memory_add":["optional stable fact/decision"],"notes":"optional"}

Execution rules:
1) Step 1 MUST be phase=plan and cmd="".
2) Every step MUST include task_md_patch (full TASK.md content).
3) Use exactly ONE bash command in cmd when phase is act/verify.
4) For file edits, use bash methods only (cat <<'EOF', sed, perl, etc.).

Tool/runtime rules:
1) Do not assume a specific programming language or runtime.
2) Prefer commands documented in Agent.md or project files.
3) Before using a tool/runtime, ensure it exists in this environment.
4) If runtime/tool choice is ambiguous or unavailable, use decision=ask_user.

Decision rules:
1) If context is sufficient, use decision=direct_execute.
2) If context is insufficient, use decision=ask_user with concise questions and do not execute.
3) For explanation/consulting tasks, prefer phase=chat and provide user-facing text in say.
4) Use phase=done only when task goal is fully satisfied.`

// InitialContext builds the first user message seeding the run
func InitialContext(goal, workDir, fileList, previews, agentNotes, memory string) string {
	return fmt.Sprintf("Goal: %s\n\nWorking directory: %s\n\nExisting files:\n%s\n\nText previews:\n%s\n\nAgent.md:\n%s\n\nCurrent TASK.md:\n%s",
		goal, workDir, fileList, previews, agentNotes, memory)
}

// CommandFeedback builds the user turn that follows an executed (or
// denied) command.
func CommandFeedback(output, fileList, memory string) string {
	return fmt.Sprintf("command_output:\n%s\n\nExisting files now:\n%s\n\nCurrent TASK.md:\n%s",
		output, fileList, memory)
}

// CommandOutput renders a command result the way the model expects it,
// with the git snapshot appended.
func CommandOutput(exitCode int, output, gitSnapshot string) string {
	return fmt.Sprintf("[exit_code]\n%d\n%s%s", exitCode, output, gitSnapshot)
}

// HumanAnswer builds the user turn carrying an ask_user answer
func HumanAnswer(answer, memory string) string {
	return fmt.Sprintf("Human answer: %s\nCurrent TASK.md:\n%s", answer, memory)
}

// MemoryFailure reports a failed working-memory update back to the model
func MemoryFailure(err error) string {
	return fmt.Sprintf("Warning: the TASK.md update could not be applied (%v). Re-emit the full task_md_patch next step.", err)
}

// ResumeAfterGate nudges the model to keep going after an operator resume
const ResumeAfterGate = "Human chose resume. Continue improving; do not finalize yet."
