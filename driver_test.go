package netcli

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/malbeclabs/netcli/platform/builtin"
)

func openLinuxDriver(t *testing.T, responses []string) *Driver {
	t.Helper()
	d, err := NewBuilder("host").
		Username("lab").
		Password("lab").
		Platform(builtin.Linux()).
		Dialer(newScriptedLink(responses)).
		Timeout(2 * time.Second).
		QuiescenceWindow(5 * time.Millisecond).
		Build()
	require.NoError(t, err)
	require.NoError(t, d.Open(context.Background()))
	return d
}

func openJunOSDriver(t *testing.T, responses []string) *Driver {
	t.Helper()
	d, err := NewBuilder("host").
		Username("lab").
		Password("lab").
		Platform(builtin.JunOS()).
		Dialer(newScriptedLink(responses)).
		Timeout(2 * time.Second).
		QuiescenceWindow(5 * time.Millisecond).
		Build()
	require.NoError(t, err)
	require.NoError(t, d.Open(context.Background()))
	return d
}

func TestDriver_SendCommand_LinuxWhoami(t *testing.T) {
	t.Parallel()

	d := openLinuxDriver(t, []string{
		"user@host:~$ ",
		"whoami\r\nalice\r\nuser@host:~$ ",
	})
	defer d.Close(context.Background())

	resp, err := d.SendCommand(context.Background(), "whoami")
	require.NoError(t, err)
	require.Equal(t, "alice", resp.Result)
	require.False(t, resp.Failed)
	require.Equal(t, "whoami", resp.Command)
}

func TestDriver_SendCommand_JunOSShowVersionSuccess(t *testing.T) {
	t.Parallel()

	d := openJunOSDriver(t, []string{
		"lab@router> ",
		"set cli screen-length 0\r\n\r\nlab@router> ",
		"show version\r\nJunos: 21.4R3\r\nlab@router> ",
	})
	defer d.Close(context.Background())

	resp, err := d.SendCommand(context.Background(), "show version")
	require.NoError(t, err)
	require.Equal(t, "Junos: 21.4R3", resp.Result)
	require.False(t, resp.Failed)
}

func TestDriver_SendCommand_JunOSShowFooFailure(t *testing.T) {
	t.Parallel()

	d := openJunOSDriver(t, []string{
		"lab@router> ",
		"set cli screen-length 0\r\n\r\nlab@router> ",
		"show foo\r\nerror: command is not valid\r\nlab@router> ",
	})
	defer d.Close(context.Background())

	resp, err := d.SendCommand(context.Background(), "show foo")
	require.NoError(t, err, "a command-level failure is data, not an error return")
	require.True(t, resp.Failed)
	require.Equal(t, `(?m)^error:`, resp.FailureMessage)
}

func TestDriver_AcquirePrivilege_NoOpWhenAlreadyAtTarget(t *testing.T) {
	t.Parallel()

	d := openLinuxDriver(t, []string{"user@host:~$ "})
	defer d.Close(context.Background())

	require.NoError(t, d.AcquirePrivilege(context.Background(), "shell"))
	require.Equal(t, "shell", d.CurrentPrivilege())
}

func TestDriver_SendConfig_PrivilegeRoundTrip(t *testing.T) {
	t.Parallel()

	d := openJunOSDriver(t, []string{
		"lab@router> ",
		"set cli screen-length 0\r\n\r\nlab@router> ",
		"configure\r\n\r\nlab@router# ",
		"set system host-name lab-edge1\r\n\r\nlab@router# ",
		"exit configuration-mode\r\n\r\nlab@router> ",
	})
	defer d.Close(context.Background())

	require.Equal(t, "operational", d.CurrentPrivilege())

	responses, err := d.SendConfig(context.Background(), []string{"set system host-name lab-edge1"})
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.False(t, responses[0].Failed)
	require.Equal(t, "operational", d.CurrentPrivilege(), "privilege must be restored after SendConfig")
}

func TestDriver_SendCommand_RejectsEmbeddedNewline(t *testing.T) {
	t.Parallel()

	d := openLinuxDriver(t, []string{"user@host:~$ "})
	defer d.Close(context.Background())

	_, err := d.SendCommand(context.Background(), "echo a\necho b")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDriver_SendCommands_MatchesExpectedSequence(t *testing.T) {
	t.Parallel()

	d := openLinuxDriver(t, []string{
		"user@host:~$ ",
		"whoami\r\nalice\r\nuser@host:~$ ",
		"pwd\r\n/home/alice\r\nuser@host:~$ ",
	})
	defer d.Close(context.Background())

	responses, err := d.SendCommands(context.Background(), []string{"whoami", "pwd"})
	require.NoError(t, err)

	want := []Response{
		{Command: "whoami", Result: "alice", Failed: false},
		{Command: "pwd", Result: "/home/alice", Failed: false},
	}
	if diff := cmp.Diff(want, responses, cmpopts.IgnoreFields(Response{}, "Raw", "Elapsed", "Prompt")); diff != "" {
		t.Errorf("SendCommands() mismatch (-want +got):\n%s", diff)
	}
}

func TestDriver_SendCommand_FailsWhenNotOpened(t *testing.T) {
	t.Parallel()

	d, err := NewBuilder("host").Platform(builtin.Linux()).Dialer(newScriptedLink(nil)).Build()
	require.NoError(t, err)

	_, err = d.SendCommand(context.Background(), "whoami")
	require.ErrorIs(t, err, ErrNotConnected)
}
