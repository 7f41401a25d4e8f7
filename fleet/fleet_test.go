package fleet

import (
	"bufio"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/malbeclabs/netcli/platform/builtin"
	"github.com/malbeclabs/netcli/transport"
)

// pipeTransport and the scripted dialer below give each Target its own
// in-memory device, mirroring the root package's fake_transport_test.go
// harness: no real SSH server is available in this exercise, so dialing is
// faked at the transport.Dialer boundary instead.
type pipeTransport struct {
	r io.Reader
	w io.Writer
	c io.Closer
}

func (p *pipeTransport) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeTransport) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p *pipeTransport) Close() error                { return p.c.Close() }

// runFakeDevice writes responses[0] immediately, then each later response
// only after reading one line the Driver sent it, matching the strict
// one-line-per-response protocol every scripted test in this module uses.
func runFakeDevice(responses []string, inR *io.PipeReader, outW *io.PipeWriter) {
	br := bufio.NewReader(inR)
	io.WriteString(outW, responses[0])
	for _, resp := range responses[1:] {
		if _, err := br.ReadString('\n'); err != nil {
			return
		}
		io.WriteString(outW, resp)
	}
}

// scriptedDialer returns a Dialer that looks up a per-host response script
// and wires it to a fresh in-memory device; a host with no script fails the
// dial, exercising Fleet's per-target error isolation.
func scriptedDialer(hostResponses map[string][]string) transport.Dialer {
	return transport.DialerFunc(func(ctx context.Context, host string, port int, auth transport.AuthMethod, timeout time.Duration) (transport.Transport, error) {
		responses, ok := hostResponses[host]
		if !ok {
			return nil, io.ErrClosedPipe
		}
		outR, outW := io.Pipe()
		inR, inW := io.Pipe()
		go runFakeDevice(responses, inR, outW)
		return &pipeTransport{r: outR, w: inW, c: inW}, nil
	})
}

func TestFleet_Run_SucceedsAcrossMultipleHosts(t *testing.T) {
	t.Parallel()

	dialer := scriptedDialer(map[string][]string{
		"host-a": {"user@a:~$ ", "whoami\r\nalice\r\nuser@a:~$ "},
		"host-b": {"user@b:~$ ", "whoami\r\nbob\r\nuser@b:~$ "},
	})

	f := New(2, dialer)
	results := f.Run(context.Background(), []Target{
		{Host: "host-a", Username: "alice", Password: "x", Platform: builtin.Linux()},
		{Host: "host-b", Username: "bob", Password: "x", Platform: builtin.Linux()},
	}, []string{"whoami"})

	require.Len(t, results, 2)
	byHost := map[string]HostResult{}
	for _, r := range results {
		byHost[r.Host] = r
	}

	require.NoError(t, byHost["host-a"].Err)
	require.Equal(t, "alice", byHost["host-a"].Responses[0].Result)
	require.NoError(t, byHost["host-b"].Err)
	require.Equal(t, "bob", byHost["host-b"].Responses[0].Result)
}

func TestFleet_Run_IsolatesPerTargetFailure(t *testing.T) {
	t.Parallel()

	dialer := scriptedDialer(map[string][]string{
		"host-good": {"user@good:~$ ", "whoami\r\ngood\r\nuser@good:~$ "},
	})

	f := New(2, dialer)
	results := f.Run(context.Background(), []Target{
		{Host: "host-good", Username: "u", Password: "x", Platform: builtin.Linux()},
		{Host: "host-missing", Username: "u", Password: "x", Platform: builtin.Linux()},
	}, []string{"whoami"})

	require.Len(t, results, 2)
	var goodErr, missingErr error
	for _, r := range results {
		if r.Host == "host-good" {
			goodErr = r.Err
		} else {
			missingErr = r.Err
		}
	}
	require.NoError(t, goodErr)
	require.Error(t, missingErr, "a dial failure on one target must not affect the other")
}

func TestFleet_New_DefaultsConcurrencyToOne(t *testing.T) {
	t.Parallel()

	f := New(0, scriptedDialer(nil))
	require.Equal(t, 1, f.concurrency)
}
