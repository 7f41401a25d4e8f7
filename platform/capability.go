package platform

// Capability names one of the optional config-session operations a platform
// may support (spec §3 CapabilityBundle, §4.I).
type Capability string

const (
	CapabilityDiff              Capability = "diff"
	CapabilityValidate          Capability = "validate"
	CapabilityConfirmableCommit Capability = "confirmable_commit"
	CapabilityNamedSession      Capability = "named_session"
)

// CapabilityBundle records which optional config-session capabilities a
// platform's configuration workflow supports. netcli has a single
// ConfigSession type with no per-capability interfaces: its Diff, Validate,
// CommitConfirmed and SessionName methods check the bundle at run time and
// return ErrInvalidInput for a capability the platform does not declare.
type CapabilityBundle struct {
	set map[Capability]bool
}

// NewCapabilityBundle builds a bundle supporting exactly the given
// capabilities.
func NewCapabilityBundle(caps ...Capability) CapabilityBundle {
	set := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return CapabilityBundle{set: set}
}

// Has reports whether the bundle includes c.
func (b CapabilityBundle) Has(c Capability) bool { return b.set[c] }
