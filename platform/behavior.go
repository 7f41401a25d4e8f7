package platform

// DriverHandle is the subset of Driver a VendorBehavior is allowed to drive
// the channel through. It exists so platform (pure vendor data plus small
// per-vendor hooks) never imports the netcli package that implements it,
// avoiding an import cycle between the driver and the platform it consults.
type DriverHandle interface {
	// WriteLine sends text followed by LF.
	WriteLine(text string) error

	// ReadUntilPrompt reads until levelName's prompt matches at the buffer
	// tail and returns the raw bytes observed (including the prompt).
	ReadUntilPrompt(levelName string) (raw string, prompt string, err error)

	// ReadUntilAnyPattern reads until one of the given regexes matches the
	// buffer tail and returns which one, plus the raw bytes observed.
	ReadUntilAnyPattern(patterns []string) (index int, raw string, err error)

	// Credential returns a named credential (e.g. "enable" password) the
	// Driver was built with, if any.
	Credential(name string) (string, bool)

	// SetPrivilege updates the Driver's notion of its current level without
	// issuing any I/O.
	SetPrivilege(name string)

	// SwitchPlatform replaces the PlatformDefinition the driver consults for
	// prompts, its privilege graph and its behavior going forward, without
	// touching the already-established transport, and resets the current
	// level to the new platform's default. Used by on_open probes that pick
	// between variant platforms after inspecting device output (e.g. Nokia
	// MD-CLI vs Classic).
	SwitchPlatform(p *PlatformDefinition) error
}

// VendorBehavior customizes the otherwise-generic navigation and open-time
// behavior for a platform (spec §4.E, §9). Default implementations suffice
// for most vendors; behaviors that need an auth step during escalation or a
// version probe at open time override the relevant method.
type VendorBehavior interface {
	// OnOpen runs once, after the Driver has synchronized to a prompt and
	// before it returns from open(). Used for paging-disable and variant
	// detection (e.g. Nokia Classic vs MD-CLI).
	OnOpen(d DriverHandle) error

	// Escalate moves from the current level to a child level.
	Escalate(d DriverHandle, from, to *PrivilegeLevel) error

	// Deescalate moves from the current level to its parent.
	Deescalate(d DriverHandle, from, to *PrivilegeLevel) error

	// FailureMatch runs additional vendor-specific failure detection beyond
	// the platform's declared failure-pattern list. Returns ("", false) when
	// a vendor has nothing to add.
	FailureMatch(raw string) (string, bool)
}

// DefaultBehavior implements VendorBehavior with the generic rule described
// in spec §4.E: "send the edge command and expect the target prompt." When
// the target level requires auth, Escalate also sends the named credential
// if the Driver has one. It is the behavior of every built-in platform
// except Nokia(), whose behavior embeds it and adds an open-time probe.
type DefaultBehavior struct{}

func (DefaultBehavior) OnOpen(d DriverHandle) error { return nil }

func (DefaultBehavior) Escalate(d DriverHandle, from, to *PrivilegeLevel) error {
	if err := d.WriteLine(to.EscalateCmd()); err != nil {
		return err
	}
	if authField, needsAuth := to.RequiresAuth(); needsAuth {
		password, ok := d.Credential(authField)
		if ok {
			if err := d.WriteLine(password); err != nil {
				return err
			}
		}
	}
	_, _, err := d.ReadUntilPrompt(to.Name())
	return err
}

func (DefaultBehavior) Deescalate(d DriverHandle, from, to *PrivilegeLevel) error {
	if err := d.WriteLine(from.DeescalateCmd()); err != nil {
		return err
	}
	_, _, err := d.ReadUntilPrompt(to.Name())
	return err
}

func (DefaultBehavior) FailureMatch(raw string) (string, bool) { return "", false }
