package netcli

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/malbeclabs/netcli/transport"
)

// pipeTransport is an in-memory transport.Transport backed by two io.Pipes:
// one carries bytes from the Driver to the fake device, the other carries
// the device's scripted responses back. It lets driver/channel/interactive
// tests exercise the full read loop without a real SSH server.
type pipeTransport struct {
	r *io.PipeReader // driver reads device output here
	w *io.PipeWriter // driver writes commands here

	deviceR *io.PipeReader
	deviceW *io.PipeWriter
}

func (t *pipeTransport) Read(p []byte) (int, error)  { return t.r.Read(p) }
func (t *pipeTransport) Write(p []byte) (int, error) { return t.w.Write(p) }

func (t *pipeTransport) Close() error {
	t.w.Close()
	t.r.Close()
	t.deviceR.Close()
	t.deviceW.Close()
	return nil
}

// fakeDevice replays a fixed script of raw responses over a pipeTransport:
// responses[0] is written immediately, as a real device writes its banner
// and first prompt unprompted; every later entry is written only after one
// line arrives from the driver, emulating a command/response exchange.
// Once the script is exhausted, further lines from the driver are read and
// discarded, so a later write (such as Close's deescalation) never blocks;
// the driver then times out waiting for a prompt.
type fakeDevice struct {
	toDriver   io.Writer
	fromDriver *bufio.Reader
	responses  []string
}

func (d *fakeDevice) run() {
	if len(d.responses) == 0 {
		return
	}
	io.WriteString(d.toDriver, d.responses[0])
	for _, resp := range d.responses[1:] {
		if _, err := d.fromDriver.ReadString('\n'); err != nil {
			return
		}
		io.WriteString(d.toDriver, resp)
	}
	io.Copy(io.Discard, d.fromDriver)
}

// newScriptedLink wires a pipeTransport to a fakeDevice running responses in
// a background goroutine, and returns a transport.Dialer that always hands
// back that same transport (the tests in this package open exactly one
// connection per Driver).
func newScriptedLink(responses []string) transport.Dialer {
	outR, outW := io.Pipe() // driver -> device
	inR, inW := io.Pipe()   // device -> driver

	device := &fakeDevice{toDriver: inW, fromDriver: bufio.NewReader(outR), responses: responses}
	go device.run()

	tr := &pipeTransport{r: inR, w: outW, deviceR: outR, deviceW: inW}
	return transport.DialerFunc(func(ctx context.Context, host string, port int, auth transport.AuthMethod, timeout time.Duration) (transport.Transport, error) {
		return tr, nil
	})
}
