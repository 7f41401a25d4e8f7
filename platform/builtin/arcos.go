package builtin

import (
	"fmt"
	"time"

	"github.com/malbeclabs/netcli/platform"
)

// ArcOS models Arrcus's ConfD-derived, C-style CLI: exec/privileged/config
// modes like the IOS family, but no native compare verb, so Diff is computed
// by the session itself from before/after snapshots (spec §9).
func ArcOS() *platform.PlatformDefinition {
	exec := platform.NewPrivilegeLevel("exec", `>\s*`)
	privileged := platform.NewPrivilegeLevel("privileged", `#\s*`).
		WithParent("exec").
		WithEscalate("enable").
		WithEscalateAuth("enable").
		WithDeescalate("disable")
	configure := platform.NewPrivilegeLevel("configure", `\(config\)#\s*`).
		WithParent("privileged").
		WithEscalate("configure terminal").
		WithDeescalate("end").
		WithConfigOnly()

	profile := platform.ConfigProfile{
		ConfigLevel: "configure",
		Capabilities: platform.NewCapabilityBundle(
			platform.CapabilityDiff,
			platform.CapabilityValidate,
			platform.CapabilityConfirmableCommit,
		),
		CommitCmd:   "commit",
		AbortCmd:    "abort",
		SnapshotCmd: "show running-config",
		ValidateCmd: "commit check",
		ConfirmedCommitCmd: func(timeout time.Duration) string {
			return fmt.Sprintf("commit confirmed timeout %d", int(timeout.Seconds()))
		},
	}

	p, err := platform.New("arcos").
		WithPrivilege(exec).
		WithPrivilege(privileged).
		WithPrivilege(configure).
		WithDefaultPrivilege("exec").
		WithFailurePattern(`(?im)^% ?unknown command`).
		WithFailurePattern(`(?im)^error:`).
		WithPagingHook(func(levelName string) (string, bool) {
			if levelName != "privileged" {
				return "", false
			}
			return "terminal length 0", true
		}).
		WithConfigProfile(profile).
		Build()
	if err != nil {
		panic("netcli/platform/builtin: arcos: " + err.Error())
	}
	return p
}
