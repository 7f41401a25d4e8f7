package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize_StripsEchoAndPrompt(t *testing.T) {
	t.Parallel()

	raw := "show version\r\nJunos: 21.4R3\r\nlab@router>"
	got := Normalize(raw, "show version", "lab@router>")
	require.Equal(t, "Junos: 21.4R3", got)
}

func TestNormalize_StripsANSIEscapes(t *testing.T) {
	t.Parallel()

	raw := "show version\r\n\x1b[32mok\x1b[0m\r\nrouter#"
	got := Normalize(raw, "show version", "router#")
	require.Equal(t, "ok", got)
}

func TestNormalize_ANSISequenceSplitAcrossReads(t *testing.T) {
	t.Parallel()

	// The caller is responsible for assembling the full raw string before
	// calling Normalize; once assembled, a SGR sequence that arrived in two
	// separate reads strips identically to one that arrived whole.
	raw := "cmd\r\n\x1b[1mbold\x1b[0m text\r\nrouter#"
	got := Normalize(raw, "cmd", "router#")
	require.Equal(t, "bold text", got)
}

func TestNormalize_OSCSequenceStripped(t *testing.T) {
	t.Parallel()

	raw := "cmd\r\n\x1b]0;window title\x07output\r\nrouter#"
	got := Normalize(raw, "cmd", "router#")
	require.Equal(t, "output", got)
}

func TestNormalize_IdempotentOnAlreadyNormalizedOutput(t *testing.T) {
	t.Parallel()

	once := Normalize("cmd\r\noutput line\r\nrouter#", "cmd", "router#")
	twice := Normalize(once, "", "")
	require.Equal(t, once, twice)
}

func TestNormalize_NoCommandEchoToStrip(t *testing.T) {
	t.Parallel()

	raw := "output only\r\nrouter#"
	got := Normalize(raw, "show version", "router#")
	require.Equal(t, "output only", got)
}

func TestNormalize_EmptyResultWhenOutputIsOnlyEchoAndPrompt(t *testing.T) {
	t.Parallel()

	raw := "cmd\r\nrouter#"
	got := Normalize(raw, "cmd", "router#")
	require.Equal(t, "", got)
}
