package matcher

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

type runResult struct {
	end int
	err error
}

func matchSuffix(suffix string) MatchFunc {
	return func(buf []byte) (int, bool) {
		if len(buf) < len(suffix) {
			return 0, false
		}
		if string(buf[len(buf)-len(suffix):]) != suffix {
			return 0, false
		}
		return len(buf), true
	}
}

func TestReadLoop_Run_QuiescenceWindowFinalizesMatch(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	r, w := io.Pipe()
	t.Cleanup(func() { w.Close() })

	var buf []byte
	resultCh := make(chan runResult, 1)
	go func() {
		end, err := Run(context.Background(), r, &buf, matchSuffix("END"), clock.Now().Add(time.Second), 20*time.Millisecond, clock, &PendingRead{})
		resultCh <- runResult{end, err}
	}()

	clock.BlockUntil(1) // deadline timer armed
	go w.Write([]byte("hello END"))
	clock.BlockUntil(2) // quiescence timer armed once the match lands
	clock.Advance(20 * time.Millisecond)

	res := <-resultCh
	require.NoError(t, res.err)
	require.Equal(t, len("hello END"), res.end)
}

func TestReadLoop_Run_PromptLikeTextMidOutputDoesNotTerminateEarly(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	r, w := io.Pipe()
	t.Cleanup(func() { w.Close() })

	var buf []byte
	resultCh := make(chan runResult, 1)
	go func() {
		end, err := Run(context.Background(), r, &buf, matchSuffix("END"), clock.Now().Add(time.Second), 20*time.Millisecond, clock, &PendingRead{})
		resultCh <- runResult{end, err}
	}()

	clock.BlockUntil(1)
	go w.Write([]byte("partial END"))
	clock.BlockUntil(2) // quiescence timer armed on the first (false) match

	// More output arrives before quiescence elapses: pushes "END" out of the
	// tail and must reset the pending match rather than let it finalize.
	go w.Write([]byte(" but more output follows"))
	clock.BlockUntil(1) // quiescence timer torn down, only the deadline timer remains

	go w.Write([]byte(" and now END"))
	clock.BlockUntil(2)
	clock.Advance(20 * time.Millisecond)

	res := <-resultCh
	require.NoError(t, res.err)
	require.Equal(t, len("partial END but more output follows and now END"), res.end)
}

func TestReadLoop_Run_TimesOutWithNoMatch(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	r, w := io.Pipe()
	t.Cleanup(func() { w.Close() })

	var buf []byte
	resultCh := make(chan runResult, 1)
	go func() {
		end, err := Run(context.Background(), r, &buf, matchSuffix("END"), clock.Now().Add(5*time.Millisecond), 20*time.Millisecond, clock, &PendingRead{})
		resultCh <- runResult{end, err}
	}()

	clock.BlockUntil(1)
	clock.Advance(5 * time.Millisecond)

	res := <-resultCh
	require.ErrorIs(t, res.err, ErrTimeout)
}

func TestReadLoop_Run_EOFWithNoPendingMatch(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	r, w := io.Pipe()

	var buf []byte
	resultCh := make(chan runResult, 1)
	go func() {
		end, err := Run(context.Background(), r, &buf, matchSuffix("END"), clock.Now().Add(time.Second), 20*time.Millisecond, clock, &PendingRead{})
		resultCh <- runResult{end, err}
	}()

	clock.BlockUntil(1)
	w.Write([]byte("no match here"))
	w.Close()

	res := <-resultCh
	require.ErrorIs(t, res.err, ErrEOF)
}
