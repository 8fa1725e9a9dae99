// Package display provides unified output formatting for the vibe CLI.
// It visually separates supervisor messages from agent-produced text and
// raw command output.
package display

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// Display handles all CLI output with visual hierarchy
type Display struct {
	theme     *Theme
	termWidth int
	noColor   bool
}

// New creates a new Display instance
func New() *Display {
	return NewWithOptions(false)
}

// NewWithOptions creates a Display with configuration
func NewWithOptions(noColor bool) *Display {
	d := &Display{
		termWidth: getTerminalWidth(),
		noColor:   noColor,
	}
	if noColor {
		d.theme = NoColorTheme()
	} else {
		d.theme = DefaultTheme()
	}
	return d
}

// getTerminalWidth returns the terminal width, defaulting to 80
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 40 {
		return 80
	}
	if width > 120 {
		return 120 // Cap at 120 for readability
	}
	return width
}

// Box prints a boxed message with a title, used for run banners and the
// console-mode headers.
func (d *Display) Box(title string, lines ...string) {
	if len(lines) == 0 {
		return
	}

	width := d.termWidth - 2
	titleLen := len(title) + 4 // "─ TITLE "
	remainingWidth := width - titleLen
	if remainingWidth < 0 {
		remainingWidth = 0
	}

	topLine := BoxTopLeft + BoxHorizontal + " " + title + " " + strings.Repeat(BoxHorizontal, remainingWidth) + BoxTopRight
	fmt.Println(d.theme.Border(topLine))

	for _, line := range lines {
		paddedLine := d.padRight(line, width-2)
		fmt.Println(d.theme.Border(BoxVertical) + " " + d.theme.Text(paddedLine) + " " + d.theme.Border(BoxVertical))
	}

	bottomLine := BoxBottomLeft + strings.Repeat(BoxHorizontal, width) + BoxBottomRight
	fmt.Println(d.theme.Border(bottomLine))
}

// Status prints a single timestamped status line
func (d *Display) Status(symbol, message string) {
	timestamp := time.Now().Format("[15:04:05]")
	fmt.Printf("%s %s %s\n",
		d.theme.Dim(timestamp),
		symbol,
		d.theme.Text(message))
}

// Success prints a success message with green checkmark
func (d *Display) Success(message string) {
	d.Status(d.theme.Success(SymbolSuccess), message)
}

// Error prints an error message with red X
func (d *Display) Error(message string) {
	d.Status(d.theme.Error(SymbolError), message)
}

// Warning prints a warning message with yellow triangle
func (d *Display) Warning(message string) {
	d.Status(d.theme.Warning(SymbolWarning), message)
}

// Info prints an info message with cyan label
func (d *Display) Info(label, message string) {
	d.Status(d.theme.Info(label+":"), message)
}

// Paused prints the pause indicator when a console session opens
func (d *Display) Paused(message string) {
	d.Status(d.theme.Warning(SymbolPaused), message)
}

// Resumed prints the resume indicator when a console session closes
func (d *Display) Resumed(message string) {
	d.Status(d.theme.Info(SymbolResume), message)
}

// StepHeader prints the banner that precedes each executed step
func (d *Display) StepHeader(step int, phase, command string) {
	d.SectionBreak()
	if command == "" {
		command = "(none)"
	}
	fmt.Printf("%s %s\n",
		d.theme.Label(fmt.Sprintf("== step %d %s ==", step, phase)),
		d.theme.Dim("cmd: "+Truncate(command, d.termWidth-20)))
}

// Agent prints agent-authored text (chat say, questions) with a gutter
func (d *Display) Agent(text string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		fmt.Printf("  %s %s\n", d.theme.AgentGutter("▐"), d.theme.AgentText(line))
	}
}

// CommandOutput prints the tail of captured command output, dimmed
func (d *Display) CommandOutput(output string, maxBytes int) {
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return
	}
	if len(output) > maxBytes {
		output = output[len(output)-maxBytes:]
	}
	for _, line := range strings.Split(output, "\n") {
		fmt.Printf("  %s\n", d.theme.Dim(line))
	}
}

// Prompt prints the console prompt label without a trailing newline
func (d *Display) Prompt(label string) {
	fmt.Print(d.theme.Label(label + "> "))
}

// Action echoes the console action taken, matching the audit wording
func (d *Display) Action(name string) {
	fmt.Println(d.theme.Dim("action=" + name))
}

// SectionBreak prints a horizontal separator for step boundaries
func (d *Display) SectionBreak() {
	fmt.Println(d.theme.Separator(strings.Repeat(SectionRule, d.termWidth)))
}

// Theme returns the current theme for external use
func (d *Display) Theme() *Theme {
	return d.theme
}

// padRight pads a string to the specified width
func (d *Display) padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Truncate truncates text to max length with ellipsis
func Truncate(s string, max int) string {
	s = CleanText(s)
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// CleanText removes newlines and collapses spaces
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}
