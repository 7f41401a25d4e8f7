package platform

import "time"

// ConfigProfile is the vendor-specific command set a ConfigSession drives
// (spec §4.I). A platform with no ConfigProfile does not support
// configuration sessions at all (e.g. the built-in Linux platform).
type ConfigProfile struct {
	// ConfigLevel is the privilege level name a session enters on
	// construction (e.g. "configure").
	ConfigLevel string

	Capabilities CapabilityBundle

	CommitCmd string
	AbortCmd  string

	// DiffCmd, if set, is a device command whose output already is the
	// uncommitted delta (e.g. Juniper's "show | compare"). Leave empty to
	// have the session compute a diff itself from before/after snapshots
	// (see SnapshotCmd) via gotextdiff — used by platforms whose CLI has no
	// built-in compare verb.
	DiffCmd string

	// SnapshotCmd dumps the full pending configuration as text; required
	// when DiffCmd is empty and Capabilities.Has(CapabilityDiff).
	SnapshotCmd string

	// ValidateCmd, if set, runs vendor validation; its raw output is
	// inspected by the Driver's failure patterns to decide Valid.
	ValidateCmd string

	// ConfirmedCommitCmd formats a confirmed-commit command for the given
	// timeout, translated into the vendor's own units.
	ConfirmedCommitCmd func(timeout time.Duration) string

	// NamedSessionEnterCmd formats the command used to enter (and create, if
	// needed) a named configuration session.
	NamedSessionEnterCmd func(name string) string
}

func (p *PlatformDefinition) WithConfigProfile(profile ConfigProfile) *PlatformDefinition {
	p.configProfile = &profile
	return p
}

func (p *PlatformDefinition) ConfigProfile() (*ConfigProfile, bool) {
	return p.configProfile, p.configProfile != nil
}
