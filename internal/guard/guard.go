// Package guard implements the denylist command filter applied before any
// shell command is executed, whether proposed by the model or typed by the
// operator in a console.
//
// Matching is token/substring based against the literal command text. It is
// a blunt defense-in-depth filter, not a sandbox: it does not parse shell
// semantics and can be bypassed by obfuscation. That is a known limitation
// carried over deliberately.
package guard

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTokens returns the built-in set of high-risk command patterns.
// Multi-word tokens match with flexible whitespace; single words match on
// word boundaries.
func DefaultTokens() []string {
	return []string{
		"rm -rf",
		"mkfs",
		"dd if=",
		"shutdown",
		"reboot",
		"curl",
		"wget",
		"nc",
		"ssh",
	}
}

// DeniedError is returned when a command matches the denylist.
// It is terminal for the step: the command must not be run.
type DeniedError struct {
	Command string
	Token   string
}

// Error implements the error interface
func (e *DeniedError) Error() string {
	return fmt.Sprintf("command blocked by denylist (matched %q)", e.Token)
}

// Guard vets proposed shell commands against a denylist
type Guard struct {
	tokens   []string
	patterns []*regexp.Regexp
}

// New creates a guard for the given token set. An empty set falls back to
// DefaultTokens.
func New(tokens []string) *Guard {
	if len(tokens) == 0 {
		tokens = DefaultTokens()
	}
	g := &Guard{tokens: tokens}
	for _, tok := range tokens {
		g.patterns = append(g.patterns, compileToken(tok))
	}
	return g
}

// compileToken turns a denylist token into a boundary-anchored pattern.
// "rm -rf" matches "rm   -rf" too; "nc" matches the word nc but not "sync".
func compileToken(tok string) *regexp.Regexp {
	fields := strings.Fields(tok)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = regexp.QuoteMeta(f)
	}
	expr := `\b` + strings.Join(parts, `\s+`)
	// Tokens ending mid-word (like "dd if=") keep their literal tail;
	// plain words get a trailing boundary.
	if last := tok[len(tok)-1]; isWordByte(last) {
		expr += `\b`
	}
	return regexp.MustCompile(expr)
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// Vet checks a command against the denylist. It returns nil when the
// command may run, or a *DeniedError naming the matched token.
func (g *Guard) Vet(command string) error {
	for i, p := range g.patterns {
		if p.MatchString(command) {
			return &DeniedError{Command: command, Token: g.tokens[i]}
		}
	}
	return nil
}

// Tokens returns the active denylist token set
func (g *Guard) Tokens() []string {
	return g.tokens
}
