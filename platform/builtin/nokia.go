package builtin

import (
	"strings"

	"github.com/malbeclabs/netcli/platform"
)

// NokiaClassic models the original SR OS block-mode CLI: configuration
// applies immediately on each line, there is no commit/rollback concept, and
// "environment no more" is the pager-disable command.
func NokiaClassic() *platform.PlatformDefinition {
	exec := platform.NewPrivilegeLevel("exec", `#\s*`)
	config := platform.NewPrivilegeLevel("config", `\(config\)#\s*`).
		WithParent("exec").
		WithEscalate("configure").
		WithDeescalate("exit all").
		WithConfigOnly()

	profile := platform.ConfigProfile{
		ConfigLevel:  "config",
		Capabilities: platform.NewCapabilityBundle(), // no optional capabilities: changes apply live, no compare/validate verb
		CommitCmd:    "exit all",
	}

	p, err := platform.New("nokia-classic").
		WithPrivilege(exec).
		WithPrivilege(config).
		WithDefaultPrivilege("exec").
		WithFailurePattern(`MINOR: CLI`).
		WithFailurePattern(`(?i)invalid command`).
		WithConfigProfile(profile).
		Build()
	if err != nil {
		panic("netcli/platform/builtin: nokia-classic: " + err.Error())
	}
	return p
}

// NokiaMDCLI models the model-driven SR OS CLI: an explicit candidate
// configuration with commit/discard/compare/validate verbs.
func NokiaMDCLI() *platform.PlatformDefinition {
	exec := platform.NewPrivilegeLevel("exec", `#\s*`)
	config := platform.NewPrivilegeLevel("config", `\(ex\)\[\S*\]#\s*`).
		WithParent("exec").
		WithEscalate("edit-config global").
		WithDeescalate("quit-config").
		WithConfigOnly()

	profile := platform.ConfigProfile{
		ConfigLevel: "config",
		Capabilities: platform.NewCapabilityBundle(
			platform.CapabilityDiff,
			platform.CapabilityValidate,
		),
		CommitCmd:   "commit",
		AbortCmd:    "discard",
		DiffCmd:     "compare",
		ValidateCmd: "validate",
	}

	p, err := platform.New("nokia-md-cli").
		WithPrivilege(exec).
		WithPrivilege(config).
		WithDefaultPrivilege("exec").
		WithFailurePattern(`(?im)^error:`).
		WithFailurePattern(`(?i)invalid command`).
		WithConfigProfile(profile).
		Build()
	if err != nil {
		panic("netcli/platform/builtin: nokia-md-cli: " + err.Error())
	}
	return p
}

// nokiaOnOpenBehavior wraps platform.DefaultBehavior to add the on-open
// variant probe: some SR OS images ship with MD-CLI as the default shell
// even though the device was reached through a classic-looking prompt, so
// Nokia()'s driver starts as NokiaClassic and switches to NokiaMDCLI if the
// classic pager-disable command is rejected.
type nokiaOnOpenBehavior struct {
	platform.DefaultBehavior
}

func (nokiaOnOpenBehavior) OnOpen(d platform.DriverHandle) error {
	if err := d.WriteLine("environment no more"); err != nil {
		return err
	}
	raw, _, err := d.ReadUntilPrompt("exec")
	if err != nil {
		return err
	}
	if !strings.Contains(raw, "MINOR: CLI") && !strings.Contains(strings.ToLower(raw), "invalid command") {
		return nil
	}

	md := NokiaMDCLI()
	if err := d.SwitchPlatform(md); err != nil {
		return err
	}
	if err := d.WriteLine("environment more false"); err != nil {
		return err
	}
	_, _, err = d.ReadUntilPrompt(md.DefaultPrivilege())
	return err
}

// Nokia returns the classic SR OS definition fitted with the on-open variant
// probe described above; most callers should use this rather than
// NokiaClassic/NokiaMDCLI directly unless the variant is already known.
func Nokia() *platform.PlatformDefinition {
	exec := platform.NewPrivilegeLevel("exec", `#\s*`)
	config := platform.NewPrivilegeLevel("config", `\(config\)#\s*`).
		WithParent("exec").
		WithEscalate("configure").
		WithDeescalate("exit all").
		WithConfigOnly()

	profile := platform.ConfigProfile{
		ConfigLevel:  "config",
		Capabilities: platform.NewCapabilityBundle(),
		CommitCmd:    "exit all",
	}

	p, err := platform.New("nokia").
		WithPrivilege(exec).
		WithPrivilege(config).
		WithDefaultPrivilege("exec").
		WithFailurePattern(`MINOR: CLI`).
		WithFailurePattern(`(?i)invalid command`).
		WithBehavior(nokiaOnOpenBehavior{}).
		WithConfigProfile(profile).
		Build()
	if err != nil {
		panic("netcli/platform/builtin: nokia: " + err.Error())
	}
	return p
}
