// Package transport defines the abstract byte-duplex a Driver drives
// commands over (spec §6). SSH authentication, channel establishment and
// keepalives are the concern of a Transport implementation, not of this
// module's core; transport/sshtransport provides the default production
// adapter over golang.org/x/crypto/ssh.
package transport

import (
	"context"
	"io"
	"time"
)

// Transport is a full-duplex byte channel to a device's interactive shell.
// Implementations need not be safe for concurrent use: the Driver that owns
// one already serializes access to it (spec §5).
type Transport interface {
	io.Reader
	io.Writer
	io.Closer
}

// AuthMethod selects the username a Dialer authenticates as and how.
// Exactly one of Password, PrivateKeyPath or Agent should be set.
type AuthMethod struct {
	Username string

	Password string

	PrivateKeyPath       string
	PrivateKeyPassphrase string

	Agent bool
}

// Dialer opens a Transport to host:port. Driver.Open reports any error a
// Dialer returns wrapped in netcli's ErrAuth kind, whatever its cause.
type Dialer interface {
	Dial(ctx context.Context, host string, port int, auth AuthMethod, timeout time.Duration) (Transport, error)
}

// DialerFunc adapts a plain function to the Dialer interface.
type DialerFunc func(ctx context.Context, host string, port int, auth AuthMethod, timeout time.Duration) (Transport, error)

func (f DialerFunc) Dial(ctx context.Context, host string, port int, auth AuthMethod, timeout time.Duration) (Transport, error) {
	return f(ctx, host, port, auth, timeout)
}
