package netcli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malbeclabs/netcli/platform/builtin"
)

func TestDescribePrivileges_ListsEveryLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	DescribePrivileges(&buf, builtin.JunOS())

	out := buf.String()
	require.Contains(t, out, "operational")
	require.Contains(t, out, "shell")
	require.Contains(t, out, "configure")
	require.Contains(t, out, "yes") // configure is config-only
}
