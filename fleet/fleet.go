// Package fleet runs the same operation against many hosts concurrently,
// bounded by a worker pool, mirroring the teacher's
// controlplane/telemetry/internal/data result-pool fan-out (spec §5: drivers
// are single-goroutine but nothing stops a caller from running many in
// parallel).
package fleet

import (
	"context"
	"fmt"

	"github.com/alitto/pond/v2"

	"github.com/malbeclabs/netcli"
	"github.com/malbeclabs/netcli/platform"
	"github.com/malbeclabs/netcli/transport"
	"github.com/malbeclabs/netcli/transport/sshtransport"
)

// HostResult is one target's outcome from a Fleet run.
type HostResult struct {
	Host      string
	Responses []netcli.Response
	Err       error
}

// Target names one device to connect to, alongside the credential and
// platform it should use.
type Target struct {
	Host     string
	Port     int
	Username string
	Password string
	Platform *platform.PlatformDefinition
}

// Fleet runs a fixed command set against a list of targets with at most
// concurrency connections open at once.
type Fleet struct {
	concurrency int
	dialer      transport.Dialer
}

// New returns a Fleet bounded to concurrency simultaneous connections.
// dialer is shared by every Driver the fleet opens; pass nil to use the
// default SSH dialer.
func New(concurrency int, dialer transport.Dialer) *Fleet {
	if concurrency <= 0 {
		concurrency = 1
	}
	if dialer == nil {
		dialer = &sshtransport.Dialer{}
	}
	return &Fleet{concurrency: concurrency, dialer: dialer}
}

// Run opens each target, sends cmds, and closes the connection, fanning out
// across the pool. A single target's failure never aborts the others; it is
// reported in its own HostResult.Err. Results are returned in target order,
// not completion order.
func (f *Fleet) Run(ctx context.Context, targets []Target, cmds []string) []HostResult {
	pool := pond.NewResultPool[HostResult](f.concurrency)
	group := pool.NewGroupContext(ctx)

	for _, t := range targets {
		t := t
		group.SubmitErr(func() (HostResult, error) {
			return f.runOne(ctx, t, cmds), nil
		})
	}

	results, _ := group.Wait() // runOne never returns an error itself; failures live in HostResult.Err
	return results
}

func (f *Fleet) runOne(ctx context.Context, t Target, cmds []string) HostResult {
	b := netcli.NewBuilder(t.Host).
		Username(t.Username).
		Password(t.Password).
		Platform(t.Platform)
	if t.Port != 0 {
		b = b.Port(t.Port)
	}
	b = b.Dialer(f.dialer)

	d, err := b.Build()
	if err != nil {
		return HostResult{Host: t.Host, Err: fmt.Errorf("build driver: %w", err)}
	}
	if err := d.Open(ctx); err != nil {
		return HostResult{Host: t.Host, Err: fmt.Errorf("open: %w", err)}
	}
	defer d.Close(ctx)

	responses, err := d.SendCommands(ctx, cmds)
	return HostResult{Host: t.Host, Responses: responses, Err: err}
}
