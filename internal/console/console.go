// Package console implements the three blocking operator prompts: the
// control mode opened by a pause, the post-verify completion gate, and the
// chat side-channel. All three share one input grammar; which verbs are
// live depends on the mode.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/daydemir/vibe/internal/audit"
	"github.com/daydemir/vibe/internal/display"
	"github.com/daydemir/vibe/internal/executor"
	"github.com/daydemir/vibe/internal/guard"
	"github.com/daydemir/vibe/internal/prompts"
	"github.com/daydemir/vibe/internal/workspace"
)

// Action is the way a console session ended
type Action string

const (
	// ActionResume returns control to the model-directed loop
	ActionResume Action = "resume"
	// ActionDone confirms completion (post-verify gate only)
	ActionDone Action = "done"
	// ActionQuit aborts the whole run
	ActionQuit Action = "quit"
)

// Transcript is the slice of the run context a console may append to.
// The run loop owns the context; consoles only feed it.
type Transcript interface {
	AddFeedback(text string)
	AddManualCommand(command, output string)
	AddUser(content string)
}

// manualOutputTail caps how much manual-command output is echoed back
const manualOutputTail = 1200

// Console dispatches the shared grammar for all three prompt kinds.
// Input comes from an injected reader so sessions can be scripted in tests.
type Console struct {
	in    *bufio.Scanner
	disp  *display.Display
	guard *guard.Guard
	exec  *executor.Executor
	ws    *workspace.Workspace
	log   *audit.Log

	// ioErr holds the first audit-trail write failure. Once set, sessions
	// end immediately: operator actions must not continue unrecorded.
	ioErr error
}

// New creates a console reading operator input from in
func New(in io.Reader, disp *display.Display, g *guard.Guard, exec *executor.Executor, ws *workspace.Workspace, log *audit.Log) *Console {
	return &Console{
		in:    bufio.NewScanner(in),
		disp:  disp,
		guard: g,
		exec:  exec,
		ws:    ws,
		log:   log,
	}
}

// Control runs the pause console. It blocks until the operator resumes or
// quits; feedback and manual commands keep the session open.
func (c *Console) Control(ctx context.Context, t Transcript) Action {
	c.disp.Box("PAUSED",
		"commands: resume | feedback <text> | run <command> | quit",
		"bare text => feedback + resume")

	for {
		if c.ioErr != nil {
			return ActionQuit
		}

		raw, ok := c.readLine("control")
		if !ok {
			c.record("control", "eof")
			return ActionQuit
		}

		switch {
		case raw == "resume" || raw == "r":
			c.record("control", "resume")
			c.disp.Action("resume")
			return ActionResume

		case isQuitWord(raw):
			if c.confirm("confirm quit? [y/N] ") {
				c.record("control", "quit")
				c.disp.Action("quit")
				return ActionQuit
			}
			c.disp.Action("cancel_quit")

		case strings.HasPrefix(raw, "feedback "):
			if fb := strings.TrimSpace(raw[len("feedback "):]); fb != "" {
				c.record("control", "feedback "+fb)
				t.AddFeedback(fb)
				c.disp.Action("feedback_sent")
			}

		case strings.HasPrefix(raw, "run "):
			c.runManual(ctx, t, "control", strings.TrimSpace(raw[len("run "):]))

		case raw != "":
			// Bare text: feedback plus automatic resume.
			c.record("control", "feedback "+raw)
			t.AddFeedback(raw)
			c.record("control", "resume_after_bare_text")
			c.disp.Action("feedback_sent")
			c.disp.Action("resume")
			return ActionResume

		default:
			fmt.Println("empty input ignored; use resume/feedback/run/quit")
		}
	}
}

// PostVerify runs the completion gate. mode is "verify" when a verify
// command passed, "done" when the model declared itself finished; it only
// changes the banner and the audit wording.
func (c *Console) PostVerify(ctx context.Context, t Transcript, mode string) Action {
	banner := "[verify passed]"
	if mode == "done" {
		banner = "[agent says done]"
	}
	c.disp.Box(banner,
		"commands: done | resume | feedback <text> | run <command> | quit",
		"bare text => feedback + resume")

	for {
		if c.ioErr != nil {
			return ActionQuit
		}

		raw, ok := c.readLine("post-verify")
		if !ok {
			c.record("post_"+mode, "eof")
			return ActionQuit
		}

		switch {
		case raw == "done" || raw == "d":
			if c.confirm("confirm done? [y/N] ") {
				c.record("status", "done_by_user")
				c.disp.Action("done")
				return ActionDone
			}
			c.disp.Action("cancel_done")

		case raw == "resume" || raw == "r":
			c.record("status", "resume_after_"+mode)
			t.AddUser(prompts.ResumeAfterGate)
			c.disp.Action("resume")
			return ActionResume

		case isQuitWord(raw):
			if c.confirm("confirm quit? [y/N] ") {
				c.record("status", "quit_after_"+mode)
				c.disp.Action("quit")
				return ActionQuit
			}
			c.disp.Action("cancel_quit")

		case strings.HasPrefix(raw, "feedback "):
			if fb := strings.TrimSpace(raw[len("feedback "):]); fb != "" {
				c.record("post_"+mode+"_feedback", fb)
				t.AddFeedback(fb)
				c.disp.Action("feedback_sent")
			}

		case strings.HasPrefix(raw, "run "):
			c.runManual(ctx, t, "post_"+mode, strings.TrimSpace(raw[len("run "):]))

		case raw != "":
			c.record("post_"+mode+"_feedback", raw)
			t.AddFeedback(raw)
			c.record("status", "resume_after_"+mode+"_bare_text")
			c.disp.Action("feedback_sent")
			c.disp.Action("resume")
			return ActionResume

		default:
			fmt.Println("empty input ignored; use done/resume/feedback/run/quit")
		}
	}
}

// Chat runs the side-channel console. Command execution is disabled here:
// there is no run verb, and quit needs no confirmation.
func (c *Console) Chat(t Transcript, say string) Action {
	if say != "" {
		c.disp.Agent(say)
		c.record("chat_say", display.Truncate(say, 500))
	}
	c.disp.Box("CHAT",
		"commands: resume | feedback <text> | quit",
		"bare text => feedback + resume")

	for {
		if c.ioErr != nil {
			return ActionQuit
		}

		raw, ok := c.readLine("chat")
		if !ok {
			c.record("chat", "eof")
			return ActionQuit
		}

		switch {
		case raw == "resume" || raw == "r":
			c.record("chat", "resume")
			return ActionResume

		case isQuitWord(raw) || raw == "done":
			c.record("chat", "quit")
			return ActionQuit

		case strings.HasPrefix(raw, "feedback "):
			if fb := strings.TrimSpace(raw[len("feedback "):]); fb != "" {
				c.record("chat_feedback", fb)
				t.AddFeedback(fb)
				c.disp.Action("feedback_sent")
			}

		case raw != "":
			c.record("chat_feedback", raw)
			t.AddFeedback(raw)
			c.record("chat", "resume_after_bare_text")
			c.disp.Action("feedback_sent")
			c.disp.Action("resume")
			return ActionResume

		default:
			fmt.Println("empty input ignored; use resume/feedback/quit")
		}
	}
}

// AskHuman surfaces the model's clarifying questions and blocks for one
// answer. ok is false when input is exhausted.
func (c *Console) AskHuman(questions []string) (string, bool) {
	fmt.Println("\nAgent asks for clarification:")
	if len(questions) > 3 {
		questions = questions[:3]
	}
	for _, q := range questions {
		c.disp.Agent("- " + q)
	}

	ans, ok := c.readLine("you")
	if !ok {
		return "", false
	}
	c.record("human_answer", ans)
	return ans, true
}

// runManual vets and executes an operator command without leaving the
// session. The guard applies to operator commands exactly as it does to
// model commands.
func (c *Console) runManual(ctx context.Context, t Transcript, logKey, command string) {
	if command == "" {
		return
	}

	var res *executor.Result
	if err := c.guard.Vet(command); err != nil {
		res = &executor.Result{
			Command:  command,
			ExitCode: executor.ExitDenied,
			Stderr:   "[blocked by denylist]",
		}
	} else {
		res = c.exec.Execute(ctx, command)
	}

	out := prompts.CommandOutput(res.ExitCode, res.Output(), c.ws.GitSnapshot(ctx))
	c.record(logKey+"_run", "cmd="+command)
	t.AddManualCommand(command, out)
	c.disp.CommandOutput(out, manualOutputTail)
	c.disp.Action("run_sent")
}

// record appends one intervention to the audit trail, remembering the
// first write failure so the run loop can terminate once the session
// returns. Audit integrity over liveness: no further interventions are
// written (or accepted) after a failure.
func (c *Console) record(kind, detail string) {
	if c.ioErr != nil {
		return
	}
	if err := c.log.Intervention(kind, detail); err != nil {
		c.ioErr = err
		c.disp.Error(err.Error())
	}
}

// Err returns the first audit-trail failure hit during any session
func (c *Console) Err() error {
	return c.ioErr
}

// readLine blocks for one trimmed line of operator input
func (c *Console) readLine(label string) (string, bool) {
	c.disp.Prompt(label)
	if !c.in.Scan() {
		fmt.Println()
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// confirm asks a y/N question; anything but y/yes declines
func (c *Console) confirm(prompt string) bool {
	fmt.Print(prompt)
	if !c.in.Scan() {
		fmt.Println()
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(c.in.Text()))
	return answer == "y" || answer == "yes"
}

func isQuitWord(s string) bool {
	return s == "quit" || s == "q" || s == "exit"
}
