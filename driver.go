package netcli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/malbeclabs/netcli/internal/matcher"
	"github.com/malbeclabs/netcli/internal/normalize"
	"github.com/malbeclabs/netcli/platform"
)

type driverState int

const (
	stateUnopened driverState = iota
	stateOpening
	stateReady
	stateClosed
)

// Driver orchestrates a single SSH CLI session: open, privilege navigation,
// command execution, interactive exchanges and config sessions (spec §4.G).
// A Driver is never shared across goroutines; every public method takes
// exclusive ownership of it for the duration of the call (spec §5).
type Driver struct {
	cfg      *Config
	platform *platform.PlatformDefinition
	channel  *Channel
	log      *slog.Logger

	state        driverState
	currentLevel string
	poisoned     bool

	prompts     map[string]*matcher.Pattern
	promptOrder []string

	credentials map[string]string

	// sessionOpen is true while a ConfigSession holds exclusive ownership of
	// this driver.
	sessionOpen bool

	// pendingAbort is set by a ConfigSession's finalizer when it is dropped
	// without being resolved (spec §4.I). The next driver operation drains it
	// via drainPendingAbort before doing anything else, since Go has no
	// synchronous destructor to run the abort at drop time.
	pendingAbort *ConfigSession
}

func newDriver(cfg *Config) *Driver {
	creds := map[string]string{}
	if cfg.Password != "" {
		creds["password"] = cfg.Password
	}
	if cfg.EnablePassword != "" {
		creds["enable"] = cfg.EnablePassword
	}

	names, pats, _ := cfg.Platform.CompiledPrompts() // compilability already checked by platform.Build()
	prompts := make(map[string]*matcher.Pattern, len(names))
	for i, name := range names {
		prompts[name] = pats[i]
	}

	return &Driver{
		cfg:         cfg,
		platform:    cfg.Platform,
		state:       stateUnopened,
		log:         cfg.Logger.With("component", "netcli.driver", "host", cfg.Host, "platform", cfg.Platform.ID()),
		prompts:     prompts,
		promptOrder: names,
		credentials: creds,
	}
}

// Open establishes the transport, synchronizes to a shell prompt, and runs
// the platform's on-open routine (paging disable, vendor probes).
func (d *Driver) Open(ctx context.Context) error {
	if d.state != stateUnopened {
		return fmt.Errorf("%w: driver already opened", ErrInvalidInput)
	}
	d.state = stateOpening

	t, err := d.cfg.Dialer.Dial(ctx, d.cfg.Host, d.cfg.Port, d.cfg.authMethod(), d.cfg.Timeout)
	if err != nil {
		d.state = stateClosed
		return fmt.Errorf("%w: %s", ErrAuth, err)
	}

	d.channel = NewChannel(t, d.cfg.Clock, d.cfg.QuiescenceWindow, d.log)
	if pagerPat, ok := d.platform.PagerPrompt(); ok {
		d.channel.SetPagerPattern(pagerPat)
	}

	allPrompts := make([]*matcher.Pattern, len(d.promptOrder))
	for i, name := range d.promptOrder {
		allPrompts[i] = d.prompts[name]
	}
	idx, _, _, err := d.channel.ReadUntilAny(ctx, d.deadline(), allPrompts)
	if err != nil {
		d.state = stateClosed
		return err
	}
	d.currentLevel = d.promptOrder[idx]
	d.state = stateReady

	for _, cmd := range d.platform.OnOpenCommands() {
		if _, err := d.runRaw(ctx, cmd); err != nil {
			d.poison()
			return err
		}
	}
	if cmd, ok := d.platform.PagingCommand(d.currentLevel); ok {
		if _, err := d.runRaw(ctx, cmd); err != nil {
			d.poison()
			return err
		}
	}
	if err := d.platform.Behavior().OnOpen(d); err != nil {
		d.poison()
		return err
	}

	d.log.Info("opened", "privilege", d.currentLevel)
	return nil
}

// Close best-effort deescalates to the default privilege, runs on-close
// commands, and closes the transport.
func (d *Driver) Close(ctx context.Context) error {
	if d.state == stateClosed || d.state == stateUnopened {
		d.state = stateClosed
		return nil
	}
	if !d.poisoned {
		_ = d.AcquirePrivilege(ctx, d.platform.DefaultPrivilege())
		for _, cmd := range d.platform.OnCloseCommands() {
			_, _ = d.runRaw(ctx, cmd)
		}
	}
	d.state = stateClosed
	if d.channel != nil {
		return d.channel.t.Close()
	}
	return nil
}

// IsAlive reports whether the driver is open and not poisoned.
func (d *Driver) IsAlive() bool { return d.state == stateReady && !d.poisoned }

// CurrentPrivilege returns the name of the privilege level the driver
// believes it is currently at.
func (d *Driver) CurrentPrivilege() string { return d.currentLevel }

func (d *Driver) deadline() time.Time { return d.cfg.Clock.Now().Add(d.cfg.Timeout) }

func (d *Driver) poison() {
	d.poisoned = true
	d.log.Warn("driver poisoned")
}

func (d *Driver) ensureReady() error {
	if d.state != stateReady || d.poisoned {
		return ErrNotConnected
	}
	return nil
}

// queuePendingAbort records a dropped-without-resolving ConfigSession so the
// next driver operation aborts it before proceeding.
func (d *Driver) queuePendingAbort(s *ConfigSession) {
	d.pendingAbort = s
}

// drainPendingAbort resolves a queued abort left by a dropped ConfigSession,
// best-effort: a failure here only poisons the driver, it is never returned
// to the caller that happened to trigger the drain.
func (d *Driver) drainPendingAbort(ctx context.Context) {
	s := d.pendingAbort
	if s == nil {
		return
	}
	d.pendingAbort = nil
	if s.resolved {
		return
	}
	if err := s.doAbort(ctx); err != nil {
		d.poison()
	}
}

// runRaw writes cmd and reads until the current level's prompt, without
// privilege or input validation. Used for on-open/on-close plumbing.
func (d *Driver) runRaw(ctx context.Context, cmd string) (Response, error) {
	return d.runRawAt(ctx, cmd, d.currentLevel)
}

// runRawAt writes cmd and reads until levelName's prompt, without updating
// d.currentLevel. Used when cmd itself is known to move the device to a
// level other than the current one (e.g. a vendor commit command that also
// exits configuration mode) — the caller is responsible for updating
// currentLevel once the read succeeds.
func (d *Driver) runRawAt(ctx context.Context, cmd string, levelName string) (Response, error) {
	start := d.cfg.Clock.Now()
	if err := d.channel.WriteLine(cmd); err != nil {
		return Response{}, fmt.Errorf("%w: %s", ErrTransport, err)
	}
	pat, ok := d.prompts[levelName]
	if !ok {
		return Response{}, &UnknownPrivilegeError{Name: levelName}
	}
	raw, tail, err := d.channel.ReadUntilPrompt(ctx, d.deadline(), pat)
	if err != nil {
		return Response{}, err
	}
	elapsed := d.cfg.Clock.Now().Sub(start)
	result := normalize.Normalize(raw, cmd, tail)
	resp := Response{Command: cmd, Result: result, Raw: raw, Prompt: tail, Elapsed: elapsed}
	if msg, failed := d.checkFailure(raw); failed {
		resp.Failed = true
		resp.FailureMessage = msg
	}
	return resp, nil
}

func (d *Driver) checkFailure(raw string) (string, bool) {
	if msg, ok := d.platform.FailureMatch(raw); ok {
		return msg, true
	}
	return d.platform.Behavior().FailureMatch(raw)
}

// SendCommand writes cmd, reads until the current privilege's prompt, and
// returns the normalized, failure-checked Response (spec §4.G).
func (d *Driver) SendCommand(ctx context.Context, cmd string) (Response, error) {
	d.drainPendingAbort(ctx)
	if err := d.ensureReady(); err != nil {
		return Response{}, err
	}
	if d.sessionOpen {
		return Response{}, fmt.Errorf("%w: driver is owned by an open configuration session", ErrInvalidInput)
	}
	if strings.Contains(cmd, "\n") {
		return Response{}, fmt.Errorf("%w: command must not contain a line feed", ErrInvalidInput)
	}
	level, ok := d.platform.Level(d.currentLevel)
	if !ok {
		return Response{}, &UnknownPrivilegeError{Name: d.currentLevel}
	}
	if level.ConfigOnly() {
		return Response{}, fmt.Errorf("%w: %q accepts configuration commands only, use a ConfigSession", ErrInvalidInput, d.currentLevel)
	}

	resp, err := d.runRaw(ctx, cmd)
	if err != nil {
		d.poison()
		return Response{}, err
	}
	return resp, nil
}

// SendCommands runs cmds in order, short-circuiting on the first transport
// or timeout error but continuing past command-level failures (spec §4.G).
func (d *Driver) SendCommands(ctx context.Context, cmds []string) ([]Response, error) {
	responses := make([]Response, 0, len(cmds))
	for _, cmd := range cmds {
		resp, err := d.SendCommand(ctx, cmd)
		if err != nil {
			return responses, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// AcquirePrivilege navigates from the current level to target via the
// platform's privilege graph. If target equals the current level this is a
// no-op: zero navigation commands are issued.
func (d *Driver) AcquirePrivilege(ctx context.Context, target string) error {
	if err := d.ensureReady(); err != nil {
		return err
	}
	if !d.platform.Graph().Has(target) {
		return &UnknownPrivilegeError{Name: target}
	}
	if target == d.currentLevel {
		return nil
	}

	steps, err := d.platform.Graph().Path(d.currentLevel, target)
	if err != nil {
		return &InvalidPrivilegePathError{From: d.currentLevel, To: target}
	}

	for len(steps) > 0 {
		step := steps[0]
		from, ok := d.platform.Level(step.From)
		if !ok {
			return &UnknownPrivilegeError{Name: step.From}
		}
		to, ok := d.platform.Level(step.To)
		if !ok {
			return &UnknownPrivilegeError{Name: step.To}
		}

		var stepErr error
		if step.Up {
			stepErr = d.platform.Behavior().Escalate(d, from, to)
		} else {
			stepErr = d.platform.Behavior().Deescalate(d, from, to)
		}
		if stepErr != nil {
			// The write or read for this step didn't cleanly resolve. Scan
			// every known prompt to recover wherever the device actually
			// landed, then replan from there: resync alone doesn't guarantee
			// the step's target was reached (spec §4.G).
			if !d.resync(ctx) {
				d.poison()
				return stepErr
			}
			if d.currentLevel == target {
				return nil
			}
			steps, err = d.platform.Graph().Path(d.currentLevel, target)
			if err != nil {
				d.poison()
				return &InvalidPrivilegePathError{From: d.currentLevel, To: target}
			}
			continue
		}
		d.currentLevel = step.To
		steps = steps[1:]
	}
	return nil
}

// resync scans every privilege prompt against the buffer tail to recover the
// current level after a step that didn't cleanly resolve. Returns false if
// no known prompt matches, in which case the driver is poisoned.
func (d *Driver) resync(ctx context.Context) bool {
	allPrompts := make([]*matcher.Pattern, len(d.promptOrder))
	for i, name := range d.promptOrder {
		allPrompts[i] = d.prompts[name]
	}
	idx, _, _, err := d.channel.ReadUntilAny(ctx, d.deadline(), allPrompts)
	if err != nil {
		return false
	}
	d.currentLevel = d.promptOrder[idx]
	return true
}

// SendConfig enters the platform's configuration privilege, runs cmds, and
// restores the prior privilege best-effort, even if a command failed or the
// restoration itself errors (spec §4.G).
func (d *Driver) SendConfig(ctx context.Context, cmds []string) ([]Response, error) {
	d.drainPendingAbort(ctx)
	if err := d.ensureReady(); err != nil {
		return nil, err
	}
	if d.sessionOpen {
		return nil, fmt.Errorf("%w: driver is owned by an open configuration session", ErrInvalidInput)
	}
	profile, ok := d.platform.ConfigProfile()
	if !ok {
		return nil, fmt.Errorf("%w: platform %s has no configuration privilege", ErrInvalidInput, d.platform.ID())
	}

	prior := d.currentLevel
	if err := d.AcquirePrivilege(ctx, profile.ConfigLevel); err != nil {
		return nil, err
	}

	// Commands run through runRaw rather than SendCommand, since the
	// configuration level is config-only and SendCommand refuses it.
	responses := make([]Response, 0, len(cmds))
	var err error
	for _, cmd := range cmds {
		if strings.Contains(cmd, "\n") {
			err = fmt.Errorf("%w: command must not contain a line feed", ErrInvalidInput)
			break
		}
		resp, runErr := d.runRaw(ctx, cmd)
		if runErr != nil {
			d.poison()
			err = runErr
			break
		}
		responses = append(responses, resp)
	}

	if restoreErr := d.AcquirePrivilege(ctx, prior); restoreErr != nil && err == nil {
		err = restoreErr
	}
	return responses, err
}

// --- platform.DriverHandle ---

func (d *Driver) WriteLine(text string) error { return d.channel.WriteLine(text) }

func (d *Driver) ReadUntilPrompt(levelName string) (raw string, prompt string, err error) {
	pat, ok := d.prompts[levelName]
	if !ok {
		return "", "", &UnknownPrivilegeError{Name: levelName}
	}
	return d.channel.ReadUntilPrompt(context.Background(), d.deadline(), pat)
}

func (d *Driver) ReadUntilAnyPattern(exprs []string) (index int, raw string, err error) {
	pats := make([]*matcher.Pattern, len(exprs))
	for i, expr := range exprs {
		pat, cerr := matcher.Compile(expr, d.platform.TailWindow())
		if cerr != nil {
			return 0, "", cerr
		}
		pats[i] = pat
	}
	idx, raw, _, err := d.channel.ReadUntilAny(context.Background(), d.deadline(), pats)
	return idx, raw, err
}

func (d *Driver) Credential(name string) (string, bool) {
	v, ok := d.credentials[name]
	return v, ok
}

func (d *Driver) SetPrivilege(name string) { d.currentLevel = name }

func (d *Driver) SwitchPlatform(p *platform.PlatformDefinition) error {
	names, pats, err := p.CompiledPrompts()
	if err != nil {
		return err
	}
	prompts := make(map[string]*matcher.Pattern, len(names))
	for i, name := range names {
		prompts[name] = pats[i]
	}
	d.platform = p
	d.prompts = prompts
	d.promptOrder = names
	d.currentLevel = p.DefaultPrivilege()
	if pagerPat, ok := p.PagerPrompt(); ok {
		d.channel.SetPagerPattern(pagerPat)
	}
	return nil
}
