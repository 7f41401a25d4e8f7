package sshtransport

import (
	"errors"
	"net"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

var errTransport = errors.New("netcli/sshtransport: transport error")

// dialAgentSocket connects to the running ssh-agent via SSH_AUTH_SOCK and
// returns an auth method backed by its keys.
func dialAgentSocket() (ssh.AuthMethod, error) {
	sockPath := os.Getenv("SSH_AUTH_SOCK")
	if sockPath == "" {
		return nil, errors.New("SSH_AUTH_SOCK is not set")
	}
	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		return nil, err
	}
	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers), nil
}
