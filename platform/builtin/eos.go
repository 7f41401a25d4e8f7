package builtin

import (
	"fmt"
	"time"

	"github.com/malbeclabs/netcli/platform"
)

// EOS models Arista's exec/privileged/config hierarchy. Its ConfigProfile
// favors the session-name workflow: Diff and ConfirmableCommit operate on
// whichever named session is active, and SessionName enters one (spec §9).
func EOS() *platform.PlatformDefinition {
	user := platform.NewPrivilegeLevel("user", `>\s*`)
	privileged := platform.NewPrivilegeLevel("privileged", `#\s*`).
		WithParent("user").
		WithEscalate("enable").
		WithDeescalate("disable")
	configure := platform.NewPrivilegeLevel("configure", `\(config(-s-\S+)?\)#\s*`).
		WithParent("privileged").
		WithEscalate("configure").
		WithDeescalate("end").
		WithConfigOnly()

	profile := platform.ConfigProfile{
		ConfigLevel: "configure",
		Capabilities: platform.NewCapabilityBundle(
			platform.CapabilityDiff,
			platform.CapabilityConfirmableCommit,
			platform.CapabilityNamedSession,
		),
		CommitCmd: "commit",
		AbortCmd:  "abort",
		DiffCmd:   "show session-config diffs",
		ConfirmedCommitCmd: func(timeout time.Duration) string {
			timeout = timeout.Round(time.Minute)
			return fmt.Sprintf("commit timer %02d:%02d:00", int(timeout/time.Hour), int(timeout/time.Minute)%60)
		},
		NamedSessionEnterCmd: func(name string) string {
			return fmt.Sprintf("configure session %s", name)
		},
	}

	p, err := platform.New("eos").
		WithPrivilege(user).
		WithPrivilege(privileged).
		WithPrivilege(configure).
		WithDefaultPrivilege("user").
		WithFailurePattern(`(?i)% ?invalid input`).
		WithFailurePattern(`(?i)% ?incomplete command`).
		WithPagingHook(func(levelName string) (string, bool) {
			if levelName != "privileged" {
				return "", false
			}
			return "terminal length 0", true
		}).
		WithConfigProfile(profile).
		Build()
	if err != nil {
		panic("netcli/platform/builtin: eos: " + err.Error())
	}
	return p
}
