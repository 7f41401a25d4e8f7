package builtin

import (
	"fmt"
	"time"

	"github.com/malbeclabs/netcli/platform"
)

// JunOS models Juniper's three shell modes: operational ">", a csh-style
// "start shell" escape ("%"), and configuration ("#"), which is config-only
// and exposes the richest ConfigProfile in the built-in set (spec §6, §9).
func JunOS() *platform.PlatformDefinition {
	operational := platform.NewPrivilegeLevel("operational", `>\s*`)
	shell := platform.NewPrivilegeLevel("shell", `%\s*`).
		WithParent("operational").
		WithEscalate("start shell").
		WithDeescalate("exit")
	configure := platform.NewPrivilegeLevel("configure", `#\s*`).
		WithParent("operational").
		WithEscalate("configure").
		WithDeescalate("exit configuration-mode").
		WithConfigOnly()

	profile := platform.ConfigProfile{
		ConfigLevel: "configure",
		Capabilities: platform.NewCapabilityBundle(
			platform.CapabilityDiff,
			platform.CapabilityValidate,
			platform.CapabilityConfirmableCommit,
		),
		CommitCmd:   "commit",
		AbortCmd:    "rollback 0",
		DiffCmd:     "show | compare",
		ValidateCmd: "commit check",
		ConfirmedCommitCmd: func(timeout time.Duration) string {
			return fmt.Sprintf("commit confirmed %d", int(timeout.Round(time.Minute)/time.Minute))
		},
	}

	p, err := platform.New("junos").
		WithPrivilege(operational).
		WithPrivilege(shell).
		WithPrivilege(configure).
		WithDefaultPrivilege("operational").
		WithFailurePattern(`(?m)^error:`).
		WithFailurePattern(`(?im)^unknown command`).
		WithOnOpenCommand("set cli screen-length 0").
		WithConfigProfile(profile).
		Build()
	if err != nil {
		panic("netcli/platform/builtin: junos: " + err.Error())
	}
	return p
}
