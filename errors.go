package netcli

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Use errors.Is against these; richer cases wrap them.
var (
	ErrTransport            = errors.New("netcli: transport error")
	ErrTimeout              = errors.New("netcli: timed out waiting for a match")
	ErrEOF                  = errors.New("netcli: channel closed before a match")
	ErrAuth                 = errors.New("netcli: authentication rejected")
	ErrUnknownPrivilege     = errors.New("netcli: unknown privilege level")
	ErrInvalidPrivilegePath = errors.New("netcli: no path between privilege levels")
	ErrNotConnected         = errors.New("netcli: driver is not connected")
	ErrInvalidInput         = errors.New("netcli: invalid input")
	ErrConfigCommitFailed   = errors.New("netcli: configuration commit failed")
)

// TimeoutError reports which pattern the caller was waiting for when the
// deadline elapsed. It unwraps to ErrTimeout so callers can use errors.Is.
type TimeoutError struct {
	Expected string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("netcli: timed out waiting for %q", e.Expected)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// InvalidPrivilegePathError names the two levels a navigation was attempted
// between when no path exists.
type InvalidPrivilegePathError struct {
	From, To string
}

func (e *InvalidPrivilegePathError) Error() string {
	return fmt.Sprintf("netcli: no privilege path from %q to %q", e.From, e.To)
}

func (e *InvalidPrivilegePathError) Unwrap() error { return ErrInvalidPrivilegePath }

// UnknownPrivilegeError names the privilege level that isn't in the platform.
type UnknownPrivilegeError struct {
	Name string
}

func (e *UnknownPrivilegeError) Error() string {
	return fmt.Sprintf("netcli: unknown privilege level %q", e.Name)
}

func (e *UnknownPrivilegeError) Unwrap() error { return ErrUnknownPrivilege }

// ConfigCommitError carries the vendor-reported rejection reason for a failed
// Commit or CommitConfirmed. Validate reports a rejection in its
// ValidationResult instead.
type ConfigCommitError struct {
	Reason string
}

func (e *ConfigCommitError) Error() string {
	return fmt.Sprintf("netcli: config commit failed: %s", e.Reason)
}

func (e *ConfigCommitError) Unwrap() error { return ErrConfigCommitFailed }
