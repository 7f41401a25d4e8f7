// Package builtin holds the platform.PlatformDefinition tables shipped with
// the library: Linux, Juniper JUNOS, Arista EOS, Nokia SR OS and Arrcus
// ArcOS (spec §6). Each constructor builds a fresh, ready-to-use
// *platform.PlatformDefinition on every call.
package builtin

import "github.com/malbeclabs/netcli/platform"

// Linux is a plain POSIX shell: one privilege level, no escalation, no
// configuration session. It exists mainly as the simplest possible platform
// for tests and examples (spec §8 "Linux whoami" scenario).
func Linux() *platform.PlatformDefinition {
	shell := platform.NewPrivilegeLevel("shell", `[$#]\s*`)

	p, err := platform.New("linux").
		WithPrivilege(shell).
		WithDefaultPrivilege("shell").
		WithFailurePattern(`(?i)command not found`).
		WithFailurePattern(`(?i)no such file or directory`).
		WithFailurePattern(`(?i)permission denied`).
		Build()
	if err != nil {
		panic("netcli/platform/builtin: linux: " + err.Error())
	}
	return p
}
