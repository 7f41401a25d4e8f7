package matcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatcher_Compile_AppliesWindow(t *testing.T) {
	t.Parallel()

	p, err := Compile(`#\s*$`, 10)
	require.NoError(t, err)

	buf := []byte("a long preamble that is well outside the window#")
	matched, start := p.Match(buf)
	require.True(t, matched)
	require.Equal(t, len(buf)-1, start)
}

func TestMatcher_Compile_DefaultWindowWhenNonPositive(t *testing.T) {
	t.Parallel()

	p, err := Compile(`x$`, 0)
	require.NoError(t, err)
	require.Equal(t, DefaultWindow, p.window)
}

func TestMatcher_Match_FailsOutsideWindow(t *testing.T) {
	t.Parallel()

	p, err := Compile(`START`, 4)
	require.NoError(t, err)

	buf := []byte("START" + "0123456789")
	matched, _ := p.Match(buf)
	require.False(t, matched, "match text pushed outside the tail window must not match")
}

func TestMatcher_MatchAny_EarliestStartWins(t *testing.T) {
	t.Parallel()

	a := MustCompile(`bbb`, 200)
	b := MustCompile(`aaa`, 200)

	buf := []byte("xxxaaaxxxbbbxxx")
	idx, start, end, ok := MatchAny(buf, []*Pattern{a, b})
	require.True(t, ok)
	require.Equal(t, 1, idx, "pattern b (aaa) starts earlier in buf than pattern a (bbb)")
	require.Equal(t, 3, start)
	require.Equal(t, 6, end)
}

func TestMatcher_MatchAny_NoMatch(t *testing.T) {
	t.Parallel()

	a := MustCompile(`zzz`, 200)
	_, _, _, ok := MatchAny([]byte("abc"), []*Pattern{a})
	require.False(t, ok)
}

func TestMatcher_MustCompile_PanicsOnBadRegex(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		MustCompile(`(`, 10)
	})
}
