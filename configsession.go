package netcli

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/malbeclabs/netcli/platform"
)

// ConfigSession is a transactional handle on a Driver's configuration
// privilege (spec §4.I). Constructing one takes exclusive ownership of the
// Driver: no other Driver method may be called until the session is
// resolved by Commit, Abort or Detach. A session left unresolved is
// best-effort aborted the next time the Driver is asked to do anything,
// since Go has no synchronous destructor to run an abort when a value goes
// out of scope.
type ConfigSession struct {
	d        *Driver
	profile  *platform.ConfigProfile
	prior    string
	resolved bool

	snapshotBefore string
	haveSnapshot   bool
}

// NewConfigSession enters profile.ConfigLevel and returns a session bound to
// d. Fails if d already has an open session, or its platform declares no
// ConfigProfile.
func NewConfigSession(ctx context.Context, d *Driver) (*ConfigSession, error) {
	d.drainPendingAbort(ctx)
	if err := d.ensureReady(); err != nil {
		return nil, err
	}
	if d.sessionOpen {
		return nil, fmt.Errorf("%w: a configuration session is already open on this driver", ErrInvalidInput)
	}
	profile, ok := d.platform.ConfigProfile()
	if !ok {
		return nil, fmt.Errorf("%w: platform %s has no configuration privilege", ErrInvalidInput, d.platform.ID())
	}

	prior := d.currentLevel
	if err := d.AcquirePrivilege(ctx, profile.ConfigLevel); err != nil {
		return nil, err
	}
	d.sessionOpen = true

	s := &ConfigSession{d: d, profile: profile, prior: prior}

	if profile.Capabilities.Has(platform.CapabilityDiff) && profile.DiffCmd == "" && profile.SnapshotCmd != "" {
		if resp, err := d.runRaw(ctx, profile.SnapshotCmd); err == nil {
			s.snapshotBefore = resp.Result
			s.haveSnapshot = true
		}
	}

	runtime.SetFinalizer(s, func(dropped *ConfigSession) {
		if !dropped.resolved {
			dropped.d.queuePendingAbort(dropped)
		}
	})

	return s, nil
}

// SendCommand runs cmd at the configuration privilege. Unlike Driver's own
// SendCommand, it runs at a config-only level.
func (s *ConfigSession) SendCommand(ctx context.Context, cmd string) (Response, error) {
	if err := s.ensureOpen(); err != nil {
		return Response{}, err
	}
	resp, err := s.d.runRaw(ctx, cmd)
	if err != nil {
		s.d.poison()
		return Response{}, err
	}
	return resp, nil
}

// SendCommands runs cmds in order, stopping at the first transport or
// timeout error.
func (s *ConfigSession) SendCommands(ctx context.Context, cmds []string) ([]Response, error) {
	responses := make([]Response, 0, len(cmds))
	for _, cmd := range cmds {
		resp, err := s.SendCommand(ctx, cmd)
		if err != nil {
			return responses, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// Commit consumes the session: it issues the vendor commit command, and
// restores the driver's prior privilege whether or not the commit succeeded.
// A vendor-reported rejection is returned as a *ConfigCommitError, not
// folded into Response.Failed, since a commit failure ends the transaction.
func (s *ConfigSession) Commit(ctx context.Context) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	resp, err := s.runCommit(ctx, s.profile.CommitCmd)
	s.resolve()
	if restoreErr := s.d.AcquirePrivilege(ctx, s.prior); restoreErr != nil && err == nil {
		err = restoreErr
	}
	if err != nil {
		return err
	}
	if resp.Failed {
		return &ConfigCommitError{Reason: resp.FailureMessage}
	}
	return nil
}

// runCommit issues cmd and reads the response at whichever prompt it will
// actually land on. Most platforms' commit command stays at the
// configuration prompt (spec §9), but some (Nokia classic's "exit all")
// double as the level's own deescalate command and return straight to the
// parent prompt; reading at the stale configuration prompt in that case
// would hang until timeout.
func (s *ConfigSession) runCommit(ctx context.Context, cmd string) (Response, error) {
	level, ok := s.d.platform.Level(s.profile.ConfigLevel)
	if ok && level.DeescalateCmd() != "" && level.DeescalateCmd() == cmd {
		resp, err := s.d.runRawAt(ctx, cmd, s.prior)
		if err == nil {
			s.d.currentLevel = s.prior
		}
		return resp, err
	}
	return s.d.runRaw(ctx, cmd)
}

// CommitConfirmed issues a confirmed commit that the device will
// automatically roll back unless a subsequent plain commit arrives within
// timeout. Like Commit, it consumes the session and restores the prior
// privilege, so the confirming Commit has to come from a new ConfigSession.
// Requires CapabilityConfirmableCommit.
func (s *ConfigSession) CommitConfirmed(ctx context.Context, timeout time.Duration) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if !s.profile.Capabilities.Has(platform.CapabilityConfirmableCommit) {
		return fmt.Errorf("%w: platform %s does not support confirmable commit", ErrInvalidInput, s.d.platform.ID())
	}
	if s.profile.ConfirmedCommitCmd == nil {
		return fmt.Errorf("%w: platform %s has no confirmed-commit command", ErrInvalidInput, s.d.platform.ID())
	}
	resp, err := s.d.runRaw(ctx, s.profile.ConfirmedCommitCmd(timeout))
	s.resolve()
	if restoreErr := s.d.AcquirePrivilege(ctx, s.prior); restoreErr != nil && err == nil {
		err = restoreErr
	}
	if err != nil {
		return err
	}
	if resp.Failed {
		return &ConfigCommitError{Reason: resp.FailureMessage}
	}
	return nil
}

// Abort consumes the session: it discards the pending configuration and
// restores the driver's prior privilege.
func (s *ConfigSession) Abort(ctx context.Context) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	return s.doAbort(ctx)
}

func (s *ConfigSession) doAbort(ctx context.Context) error {
	var err error
	if s.profile.AbortCmd != "" {
		_, err = s.d.runRaw(ctx, s.profile.AbortCmd)
	}
	s.resolve()
	if restoreErr := s.d.AcquirePrivilege(ctx, s.prior); restoreErr != nil && err == nil {
		err = restoreErr
	}
	return err
}

// Detach consumes the session without committing or aborting, leaving the
// driver at the configuration privilege with whatever pending changes exist.
// Driver.SendCommand refuses to run at that config-only level;
// AcquirePrivilege moves the driver off it.
func (s *ConfigSession) Detach() {
	s.resolve()
}

func (s *ConfigSession) resolve() {
	s.resolved = true
	s.d.sessionOpen = false
	runtime.SetFinalizer(s, nil)
}

func (s *ConfigSession) ensureOpen() error {
	if s.resolved {
		return fmt.Errorf("%w: configuration session already resolved", ErrInvalidInput)
	}
	return s.d.ensureReady()
}

// Diff reports the uncommitted configuration delta. Requires
// CapabilityDiff; uses the platform's native compare command when DiffCmd is
// set, otherwise computes a unified diff between the pre-session snapshot
// and the current one with gotextdiff.
func (s *ConfigSession) Diff(ctx context.Context) (string, error) {
	if err := s.ensureOpen(); err != nil {
		return "", err
	}
	if !s.profile.Capabilities.Has(platform.CapabilityDiff) {
		return "", fmt.Errorf("%w: platform %s does not support diff", ErrInvalidInput, s.d.platform.ID())
	}

	if s.profile.DiffCmd != "" {
		resp, err := s.d.runRaw(ctx, s.profile.DiffCmd)
		if err != nil {
			return "", err
		}
		return resp.Result, nil
	}

	if !s.haveSnapshot {
		return "", fmt.Errorf("%w: no pre-session snapshot was captured", ErrInvalidInput)
	}
	resp, err := s.d.runRaw(ctx, s.profile.SnapshotCmd)
	if err != nil {
		return "", err
	}
	after := resp.Result

	edits := myers.ComputeEdits(span.URIFromPath("running-config"), s.snapshotBefore, after)
	unified := gotextdiff.ToUnified("before", "after", s.snapshotBefore, edits)
	return fmt.Sprint(unified), nil
}

// ValidationResult is the outcome of ConfigSession.Validate.
type ValidationResult struct {
	Valid    bool
	Messages []string
}

// Validate runs the platform's vendor validation command and reports
// whether the pending configuration passed. Requires CapabilityValidate.
func (s *ConfigSession) Validate(ctx context.Context) (ValidationResult, error) {
	if err := s.ensureOpen(); err != nil {
		return ValidationResult{}, err
	}
	if !s.profile.Capabilities.Has(platform.CapabilityValidate) {
		return ValidationResult{}, fmt.Errorf("%w: platform %s does not support validate", ErrInvalidInput, s.d.platform.ID())
	}
	if s.profile.ValidateCmd == "" {
		return ValidationResult{}, fmt.Errorf("%w: platform %s has no validate command", ErrInvalidInput, s.d.platform.ID())
	}
	resp, err := s.d.runRaw(ctx, s.profile.ValidateCmd)
	if err != nil {
		return ValidationResult{}, err
	}
	if resp.Failed {
		return ValidationResult{Valid: false, Messages: []string{resp.FailureMessage}}, nil
	}
	return ValidationResult{Valid: true}, nil
}

// SessionName enters (creating if necessary) a named, isolated configuration
// session, Arista-style. Requires CapabilityNamedSession.
func (s *ConfigSession) SessionName(ctx context.Context, name string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if !s.profile.Capabilities.Has(platform.CapabilityNamedSession) {
		return fmt.Errorf("%w: platform %s does not support named sessions", ErrInvalidInput, s.d.platform.ID())
	}
	if s.profile.NamedSessionEnterCmd == nil {
		return fmt.Errorf("%w: platform %s has no named-session command", ErrInvalidInput, s.d.platform.ID())
	}
	_, err := s.d.runRaw(ctx, s.profile.NamedSessionEnterCmd(name))
	return err
}
