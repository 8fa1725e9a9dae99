// Package loop composes the supervisor: one model decision, at most one
// vetted command, one context/memory/audit update per step, with the
// operator able to pause, steer or gate completion at any point.
package loop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daydemir/vibe/internal/audit"
	"github.com/daydemir/vibe/internal/config"
	"github.com/daydemir/vibe/internal/console"
	"github.com/daydemir/vibe/internal/display"
	"github.com/daydemir/vibe/internal/executor"
	"github.com/daydemir/vibe/internal/guard"
	"github.com/daydemir/vibe/internal/interrupt"
	"github.com/daydemir/vibe/internal/llm"
	"github.com/daydemir/vibe/internal/prompts"
	"github.com/daydemir/vibe/internal/types"
	"github.com/daydemir/vibe/internal/workspace"
)

// Outcome is how a run ended
type Outcome string

const (
	// OutcomeDone means the operator confirmed completion at the gate
	OutcomeDone Outcome = "done"
	// OutcomeAborted means the operator quit the run
	OutcomeAborted Outcome = "aborted"
)

// stepOutputTail caps the output echoed to the terminal per step
const stepOutputTail = 1200

// Options wires the loop's collaborators
type Options struct {
	Config     *config.Config
	Backend    llm.Backend
	Guard      *guard.Guard
	Executor   *executor.Executor
	Workspace  *workspace.Workspace
	Console    *console.Console
	Audit      *audit.Log
	Interrupts *interrupt.Controller
	Display    *display.Display
}

// Loop drives one supervised run to its terminal state
type Loop struct {
	cfg   *config.Config
	model llm.Backend
	guard *guard.Guard
	exec  *executor.Executor
	ws    *workspace.Workspace
	cons  *console.Console
	log   *audit.Log
	intr  *interrupt.Controller
	disp  *display.Display

	state *State
	rc    *Context
}

// New creates a run loop
func New(opts Options) *Loop {
	return &Loop{
		cfg:   opts.Config,
		model: opts.Backend,
		guard: opts.Guard,
		exec:  opts.Executor,
		ws:    opts.Workspace,
		cons:  opts.Console,
		log:   opts.Audit,
		intr:  opts.Interrupts,
		disp:  opts.Display,
		state: NewState(opts.Config.Run.MaxSteps),
	}
}

// State exposes the live run state for inspection
func (l *Loop) State() *State {
	return l.state
}

// Transcript exposes the accumulated run context for inspection
func (l *Loop) Transcript() *Context {
	return l.rc
}

// Run executes the supervised loop until an operator-confirmed terminal
// state. Only audit-trail failures return a non-nil error.
func (l *Loop) Run(ctx context.Context, goal string) (Outcome, error) {
	if err := l.seed(ctx, goal); err != nil {
		return "", err
	}

	st := l.state
	for st.Step = 1; ; st.Step++ {
		// Exceeding the step budget forces a pause, never a silent stop.
		if st.Step > st.Budget {
			l.disp.Warning(fmt.Sprintf("step budget reached (%d)", st.Budget))
			if err := l.log.Note(fmt.Sprintf("status=step budget reached (%d)", st.Budget)); err != nil {
				return "", err
			}
			action, pauseErr := l.pause(ctx)
			if pauseErr != nil {
				return "", pauseErr
			}
			if action == console.ActionQuit {
				return l.abort()
			}
			st.Budget += l.cfg.Run.MaxSteps
		}

		// Safe point: honor a pause latched since the last step.
		if l.intr.Pending() {
			action, pauseErr := l.pause(ctx)
			if pauseErr != nil {
				return "", pauseErr
			}
			if action == console.ActionQuit {
				return l.abort()
			}
		}

		decision, err := l.model.Propose(ctx, l.rc.Messages())
		if err != nil {
			outcome, done, consumed, err := l.handleProposeError(ctx, err)
			if err != nil || done {
				return outcome, err
			}
			if !consumed {
				st.Step--
			}
			continue
		}
		raw := llm.MarshalDecision(decision)

		// Safe point: a pause latched while the model call was in flight
		// is honored before the decision is acted on.
		if l.intr.Pending() {
			action, pauseErr := l.pause(ctx)
			if pauseErr != nil {
				return "", pauseErr
			}
			if action == console.ActionQuit {
				return l.abort()
			}
		}

		if err := decision.Validate(st.Step); err != nil {
			var pv *types.ProtocolViolation
			if !errors.As(err, &pv) {
				return "", err
			}
			l.disp.Warning("invalid decision: " + pv.Error())
			// The rejected response still belongs in the trail.
			if err := l.log.Note("response=" + raw + "\nwarning=" + pv.Error()); err != nil {
				return "", err
			}
			l.rc.AddAssistant(decision)
			l.rc.AddUser(pv.ToPrompt())
			continue
		}

		if err := st.Machine.Declare(decision.Phase); err != nil {
			return "", err
		}

		// The memory file must be fully overwritten every step. Failure
		// is reported back to the model, not fatal.
		memErr := l.ws.UpdateMemory(decision.Memory())
		if memErr != nil {
			l.disp.Warning(memErr.Error())
			if err := l.log.Note("warning=memory update failed: " + memErr.Error()); err != nil {
				return "", err
			}
		}

		switch decision.Phase {
		case types.PhaseDone:
			outcome, done, err := l.gate(ctx, decision, raw, "done", memErr)
			if err != nil || done {
				return outcome, err
			}
			continue

		case types.PhaseChat:
			outcome, done, err := l.chat(decision, raw, memErr)
			if err != nil || done {
				return outcome, err
			}
			continue
		}

		if decision.Decision == types.DecisionAskUser {
			outcome, done, err := l.askUser(ctx, decision, raw)
			if err != nil || done {
				return outcome, err
			}
			continue
		}

		outcome, done, err := l.executeStep(ctx, decision, raw, memErr)
		if err != nil || done {
			return outcome, err
		}
	}
}

// seed writes the initial memory file and the opening context
func (l *Loop) seed(ctx context.Context, goal string) error {
	if err := l.ws.SeedMemory(goal); err != nil {
		l.disp.Warning(err.Error())
		if logErr := l.log.Note("warning=memory seed failed: " + err.Error()); logErr != nil {
			return logErr
		}
	}

	fileList, files := l.ws.Inventory(ctx)
	previews := l.ws.Previews(files)
	if err := l.log.Note("workspace_files:\n" + fileList); err != nil {
		return err
	}

	l.rc = NewContext(prompts.System)
	l.rc.AddUser(prompts.InitialContext(goal, l.ws.Dir(), fileList, previews, l.ws.AgentNotes(), l.ws.ReadMemory()))

	l.disp.Info("log", l.log.Path())
	return nil
}

// handleProposeError surfaces provider failures to the operator (pausing
// into control mode, without consuming a step) and rejects malformed
// output back to the model (consuming the step, so the budget still
// bounds a model stuck emitting garbage).
func (l *Loop) handleProposeError(ctx context.Context, err error) (outcome Outcome, done, consumed bool, fatal error) {
	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		l.disp.Error(pe.Error())
		if logErr := l.log.Note("error=provider: " + pe.Error()); logErr != nil {
			return "", false, false, logErr
		}
		l.rc.AddUser("Model provider error: " + pe.Error() + ". The operator has been notified and may adjust course.")
		action, pauseErr := l.pause(ctx)
		if pauseErr != nil {
			return "", false, false, pauseErr
		}
		if action == console.ActionQuit {
			outcome, abortErr := l.abort()
			return outcome, true, false, abortErr
		}
		return "", false, false, nil
	}

	var parseErr *llm.ParseError
	if errors.As(err, &parseErr) {
		l.disp.Warning(parseErr.Error())
		if logErr := l.log.Note("warning=unparseable response"); logErr != nil {
			return "", false, true, logErr
		}
		l.rc.AddUser("Invalid output: the response was not a valid JSON step decision. Please emit a valid next JSON step.")
		return "", false, true, nil
	}

	// Context cancellation or programming error: genuinely fatal.
	return "", false, false, err
}

// gate opens the post-verify completion gate. mode names what opened it.
func (l *Loop) gate(ctx context.Context, decision *types.StepDecision, raw, mode string, memErr error) (Outcome, bool, error) {
	if err := l.log.Step(audit.StepRecord{
		Step:     l.state.Step,
		Phase:    decision.Phase.String(),
		Decision: decision.Decision.String(),
		Raw:      raw,
	}); err != nil {
		return "", false, err
	}
	l.rc.AddAssistant(decision)
	if memErr != nil {
		l.rc.AddUser(prompts.MemoryFailure(memErr))
	}
	l.state.Machine.OpenGate()

	action := l.cons.PostVerify(ctx, l.rc, mode)
	if err := l.cons.Err(); err != nil {
		return "", false, err
	}
	switch action {
	case console.ActionDone:
		if err := l.state.Machine.ConfirmDone(); err != nil {
			return "", false, err
		}
		l.disp.Success("DONE (user confirmed)")
		return OutcomeDone, true, nil
	case console.ActionQuit:
		outcome, err := l.abort()
		return outcome, true, err
	default:
		l.state.Machine.CloseGate()
		return "", false, nil
	}
}

// chat runs the side-channel console for a chat step
func (l *Loop) chat(decision *types.StepDecision, raw string, memErr error) (Outcome, bool, error) {
	if err := l.log.Step(audit.StepRecord{
		Step:     l.state.Step,
		Phase:    decision.Phase.String(),
		Decision: decision.Decision.String(),
		Raw:      raw,
	}); err != nil {
		return "", false, err
	}
	l.rc.AddAssistant(decision)
	if memErr != nil {
		l.rc.AddUser(prompts.MemoryFailure(memErr))
	}

	say := decision.Say
	if say == "" {
		say = decision.Notes
	}
	action := l.cons.Chat(l.rc, say)
	if err := l.cons.Err(); err != nil {
		return "", false, err
	}
	if action == console.ActionQuit {
		outcome, err := l.abort()
		return outcome, true, err
	}
	return "", false, nil
}

// askUser blocks on the model's clarifying questions
func (l *Loop) askUser(ctx context.Context, decision *types.StepDecision, raw string) (Outcome, bool, error) {
	if err := l.log.Step(audit.StepRecord{
		Step:     l.state.Step,
		Phase:    decision.Phase.String(),
		Decision: decision.Decision.String(),
		Raw:      raw,
	}); err != nil {
		return "", false, err
	}

	questions := decision.Questions
	if len(questions) == 0 {
		q := decision.Notes
		if q == "" {
			q = "Need more information. Please clarify."
		}
		questions = []string{q}
	}

	answer, ok := l.cons.AskHuman(questions)
	if err := l.cons.Err(); err != nil {
		return "", false, err
	}
	if !ok {
		action, pauseErr := l.pause(ctx)
		if pauseErr != nil {
			return "", false, pauseErr
		}
		if action == console.ActionQuit {
			outcome, err := l.abort()
			return outcome, true, err
		}
		return "", false, nil
	}
	if isQuitAnswer(answer) {
		outcome, err := l.abort()
		return outcome, true, err
	}

	l.rc.AddAssistant(decision)
	l.rc.AddUser(prompts.HumanAnswer(answer, l.ws.ReadMemory()))
	return "", false, nil
}

// executeStep vets and runs the command for plan/act/verify steps and
// feeds the result back. plan never reaches the executor.
func (l *Loop) executeStep(ctx context.Context, decision *types.StepDecision, raw string, memErr error) (Outcome, bool, error) {
	var res *executor.Result
	denied := false
	cmd := strings.TrimSpace(decision.Command)

	if decision.Phase.RequiresCommand() {
		if err := l.guard.Vet(cmd); err != nil {
			var de *guard.DeniedError
			errors.As(err, &de)
			denied = true
			// The denial reads like a failed command so the model adapts.
			res = &executor.Result{
				Command:  cmd,
				ExitCode: executor.ExitDenied,
				Stderr:   "[blocked by denylist]",
			}
			l.disp.Warning(err.Error())
		} else {
			res = l.exec.Execute(ctx, cmd)
		}
	} else {
		res = &executor.Result{Stdout: "[planning]"}
	}

	out := prompts.CommandOutput(res.ExitCode, res.Output(), l.ws.GitSnapshot(ctx))
	if err := l.log.Step(audit.StepRecord{
		Step:     l.state.Step,
		Phase:    decision.Phase.String(),
		Decision: decision.Decision.String(),
		Command:  cmd,
		Denied:   denied,
		Result:   res,
		Raw:      raw,
	}); err != nil {
		return "", false, err
	}

	l.disp.StepHeader(l.state.Step, decision.Phase.String(), cmd)
	l.disp.CommandOutput(out, stepOutputTail)

	// A passing verify opens the completion gate before the result is
	// folded back into context.
	if decision.Phase == types.PhaseVerify && !denied && res.Success() {
		l.state.Machine.OpenGate()
		action := l.cons.PostVerify(ctx, l.rc, "verify")
		if err := l.cons.Err(); err != nil {
			return "", false, err
		}
		switch action {
		case console.ActionDone:
			if err := l.state.Machine.ConfirmDone(); err != nil {
				return "", false, err
			}
			l.disp.Success("DONE (user confirmed)")
			return OutcomeDone, true, nil
		case console.ActionQuit:
			outcome, err := l.abort()
			return outcome, true, err
		default:
			l.state.Machine.CloseGate()
		}
	}

	l.rc.AddAssistant(decision)
	fileList, _ := l.ws.Inventory(ctx)
	feedback := prompts.CommandFeedback(out, fileList, l.ws.ReadMemory())
	if memErr != nil {
		feedback += "\n\n" + prompts.MemoryFailure(memErr)
	}
	l.rc.AddUser(feedback)

	// A pause requested mid-command is honored here, after the executor
	// returned; the executor itself is never preempted.
	if l.intr.Pending() {
		action, pauseErr := l.pause(ctx)
		if pauseErr != nil {
			return "", false, pauseErr
		}
		if action == console.ActionQuit {
			outcome, err := l.abort()
			return outcome, true, err
		}
	}
	return "", false, nil
}

// pause opens the control console at a safe point. A non-nil error means
// the audit trail broke mid-session and the run must stop.
func (l *Loop) pause(ctx context.Context) (console.Action, error) {
	l.state.Paused = true
	l.disp.Paused("run paused")
	action := l.cons.Control(ctx, l.rc)
	l.state.Paused = false
	if err := l.cons.Err(); err != nil {
		return action, err
	}
	if action == console.ActionResume {
		l.disp.Resumed("run resumed")
	}
	return action, nil
}

// abort marks the terminal aborted state after a confirmed quit
func (l *Loop) abort() (Outcome, error) {
	l.state.Machine.Abort()
	l.disp.Error("QUIT")
	return OutcomeAborted, nil
}

func isQuitAnswer(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "quit" || s == "q" || s == "exit"
}
