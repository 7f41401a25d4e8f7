// Package sshtransport is the default production transport.Dialer: it opens
// a real SSH session and exposes its PTY as a transport.Transport, with
// exponential-backoff retry around the dial itself (grounded on the same
// reconnect-loop shape doublezero's gnmitunnel client uses against its
// tunnel server).
package sshtransport

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/crypto/ssh"

	"github.com/malbeclabs/netcli/transport"
)

// Dialer opens SSH sessions. The zero value is usable; InitialBackoff and
// MaxBackoff default to 500ms and 10s.
type Dialer struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// HostKeyCallback defaults to ssh.InsecureIgnoreHostKey if nil. Callers
	// talking to production fleets should supply a real known_hosts check.
	HostKeyCallback ssh.HostKeyCallback

	// Term and window size for the allocated PTY.
	Term          string
	Cols, Rows    int
}

var _ transport.Dialer = (*Dialer)(nil)

func (d *Dialer) clientConfig(username string, auth transport.AuthMethod) (*ssh.ClientConfig, error) {
	var methods []ssh.AuthMethod

	switch {
	case auth.Password != "":
		methods = append(methods, ssh.Password(auth.Password))
	case auth.PrivateKeyPath != "":
		keyBytes, err := os.ReadFile(auth.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("netcli/sshtransport: read private key: %w", err)
		}
		var signer ssh.Signer
		if auth.PrivateKeyPassphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(auth.PrivateKeyPassphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(keyBytes)
		}
		if err != nil {
			return nil, fmt.Errorf("netcli/sshtransport: parse private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	case auth.Agent:
		sock, err := dialAgentSocket()
		if err != nil {
			return nil, fmt.Errorf("netcli/sshtransport: dial ssh-agent: %w", err)
		}
		methods = append(methods, sock)
	default:
		return nil, fmt.Errorf("netcli/sshtransport: no auth method supplied")
	}

	hostKeyCallback := d.HostKeyCallback
	if hostKeyCallback == nil {
		hostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // default is overridable by callers
	}

	return &ssh.ClientConfig{
		User:            username,
		Auth:            methods,
		HostKeyCallback: hostKeyCallback,
	}, nil
}

// Dial connects to host:port, retrying the TCP+SSH handshake with
// exponential backoff until timeout elapses or ctx is cancelled.
func (d *Dialer) Dial(ctx context.Context, host string, port int, auth transport.AuthMethod, timeout time.Duration) (transport.Transport, error) {
	addr := host

	cfg, err := d.clientConfig(auth.Username, auth)
	if err != nil {
		return nil, err
	}
	cfg.Timeout = timeout

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.initialBackoff()
	bo.MaxInterval = d.maxBackoff()
	bo.MaxElapsedTime = timeout

	var session *ssh.Client
	operation := func() error {
		dialer := net.Dialer{}
		conn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", addr, port))
		if err != nil {
			return err
		}
		clientConn, chans, reqs, err := ssh.NewClientConn(conn, fmt.Sprintf("%s:%d", addr, port), cfg)
		if err != nil {
			conn.Close()
			return err
		}
		session = ssh.NewClient(clientConn, chans, reqs)
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("%w: %s", errTransport, err)
	}

	sshSession, err := session.NewSession()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("%w: new session: %s", errTransport, err)
	}

	cols, rows := d.Cols, d.Rows
	if cols <= 0 {
		cols = 200
	}
	if rows <= 0 {
		rows = 50
	}
	term := d.Term
	if term == "" {
		term = "xterm"
	}
	if err := sshSession.RequestPty(term, rows, cols, ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}); err != nil {
		sshSession.Close()
		session.Close()
		return nil, fmt.Errorf("%w: request pty: %s", errTransport, err)
	}

	stdin, err := sshSession.StdinPipe()
	if err != nil {
		sshSession.Close()
		session.Close()
		return nil, fmt.Errorf("%w: stdin pipe: %s", errTransport, err)
	}
	stdout, err := sshSession.StdoutPipe()
	if err != nil {
		sshSession.Close()
		session.Close()
		return nil, fmt.Errorf("%w: stdout pipe: %s", errTransport, err)
	}
	if err := sshSession.Shell(); err != nil {
		sshSession.Close()
		session.Close()
		return nil, fmt.Errorf("%w: start shell: %s", errTransport, err)
	}

	return &sessionTransport{client: session, session: sshSession, stdin: stdin, stdout: stdout}, nil
}

func (d *Dialer) initialBackoff() time.Duration {
	if d.InitialBackoff > 0 {
		return d.InitialBackoff
	}
	return 500 * time.Millisecond
}

func (d *Dialer) maxBackoff() time.Duration {
	if d.MaxBackoff > 0 {
		return d.MaxBackoff
	}
	return 10 * time.Second
}

type sessionTransport struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	stdout  io.Reader
}

func (t *sessionTransport) Read(p []byte) (int, error)  { return t.stdout.Read(p) }
func (t *sessionTransport) Write(p []byte) (int, error) { return t.stdin.Write(p) }

func (t *sessionTransport) Close() error {
	sessErr := t.session.Close()
	clientErr := t.client.Close()
	if sessErr != nil {
		return sessErr
	}
	return clientErr
}
