// Package platform holds the immutable, vendor-specific data a Driver
// navigates by: privilege levels, their prompts and edges, failure patterns,
// on-open/on-close commands, and the behavior handle that customizes
// escalation and open-time probing per vendor (spec §3, §4.E).
package platform

import "github.com/malbeclabs/netcli/internal/matcher"

// PrivilegeLevel is one named shell mode (spec §3). Built with fluent
// setters so platform tables read declaratively; see platform/builtin.
type PrivilegeLevel struct {
	name   string
	prompt string

	parent          string
	hasParent       bool
	escalateCmd     string
	deescalateCmd   string
	escalateAuth    bool
	authPasswordRef string // name of the credential field the Driver supplies at escalate time

	configOnly bool
}

// NewPrivilegeLevel creates a level named name whose prompt is matched by
// promptRegex against the buffer tail.
func NewPrivilegeLevel(name, promptRegex string) *PrivilegeLevel {
	return &PrivilegeLevel{name: name, prompt: promptRegex}
}

func (l *PrivilegeLevel) WithParent(parent string) *PrivilegeLevel {
	l.parent, l.hasParent = parent, true
	return l
}

func (l *PrivilegeLevel) WithEscalate(cmd string) *PrivilegeLevel {
	l.escalateCmd = cmd
	return l
}

func (l *PrivilegeLevel) WithDeescalate(cmd string) *PrivilegeLevel {
	l.deescalateCmd = cmd
	return l
}

// WithEscalateAuth marks that escalating into this level requires sending a
// password after the escalate command; authField names which credential the
// Driver should use (e.g. "enable").
func (l *PrivilegeLevel) WithEscalateAuth(authField string) *PrivilegeLevel {
	l.escalateAuth = true
	l.authPasswordRef = authField
	return l
}

// WithConfigOnly marks this level as usable only for configuration commands
// (Driver.SendCommand refuses to run ordinary commands from it).
func (l *PrivilegeLevel) WithConfigOnly() *PrivilegeLevel {
	l.configOnly = true
	return l
}

func (l *PrivilegeLevel) Name() string          { return l.name }
func (l *PrivilegeLevel) Parent() (string, bool) { return l.parent, l.hasParent }
func (l *PrivilegeLevel) EscalateCmd() string    { return l.escalateCmd }
func (l *PrivilegeLevel) DeescalateCmd() string  { return l.deescalateCmd }
func (l *PrivilegeLevel) RequiresAuth() (string, bool) {
	return l.authPasswordRef, l.escalateAuth
}
func (l *PrivilegeLevel) ConfigOnly() bool { return l.configOnly }

// CompilePrompt compiles this level's prompt pattern against the given tail
// window size. "$" is appended so the match must land at the true end of
// the buffer, not merely somewhere inside the tail window (spec §4.A
// anchoring); a trailing "$" already present in prompt is harmless.
func (l *PrivilegeLevel) CompilePrompt(window int) (*matcher.Pattern, error) {
	return matcher.Compile(l.prompt+"$", window)
}
