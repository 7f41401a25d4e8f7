package matcher

import (
	"context"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
)

// MatchFunc tests buf (the full buffer accumulated so far) and reports the
// absolute end offset of a match at the buffer tail, or ok=false.
type MatchFunc func(buf []byte) (end int, ok bool)

type readResult struct {
	data []byte
	err  error
}

// PendingRead carries a read goroutine across calls to Run against the same
// transport. io.Reader has no cancellable Read: when Run returns early
// because ctx was canceled or the deadline elapsed, the goroutine it spawned
// is still blocked inside r.Read. The zero value is ready to use; the owner
// of the transport (Channel) keeps one alongside it and passes the same
// pointer to every Run call, so the next call resumes the outstanding
// goroutine instead of racing a second concurrent Read on the same reader.
type PendingRead struct {
	ch chan readResult
}

func (p *PendingRead) start(r io.Reader) {
	if p.ch != nil {
		return
	}
	ch := make(chan readResult, 1)
	p.ch = ch
	go func() {
		buf := make([]byte, 4096)
		n, err := r.Read(buf)
		ch <- readResult{data: buf[:n], err: err}
	}()
}

// Run drains r into buf until match reports a hit at the buffer tail that
// survives the quiescence window, the deadline elapses, or r fails. buf is
// grown in place; on a successful return its first matchEnd bytes are the
// matched region. Run never busy-waits: it suspends on the next chunk of
// bytes, the quiescence timer, or the deadline, whichever fires first.
//
// A prompt-like substring inside command output does not terminate the read
// by itself: it must sit at the buffer tail AND no further bytes may arrive
// for quiescence before the read is considered complete, since later bytes
// could push it out of the tail window or reveal it was mid-output.
//
// pending must be the same *PendingRead across every call made against r;
// see its doc comment for why.
func Run(ctx context.Context, r io.Reader, buf *[]byte, match MatchFunc, deadline time.Time, quiescence time.Duration, clock clockwork.Clock, pending *PendingRead) (matchEnd int, err error) {
	pending.start(r)

	deadlineTimer := clock.NewTimer(clockDurationUntil(clock, deadline))
	defer deadlineTimer.Stop()

	var quiescenceTimer clockwork.Timer
	var quiesceCh <-chan time.Time
	pendingEnd := -1

	for {
		var quiesceFired <-chan time.Time
		if quiescenceTimer != nil {
			quiesceFired = quiesceCh
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()

		case <-deadlineTimer.Chan():
			return 0, ErrTimeout

		case <-quiesceFired:
			return pendingEnd, nil

		case res := <-pending.ch:
			pending.ch = nil
			if len(res.data) > 0 {
				*buf = append(*buf, res.data...)
			}
			if end, ok := match(*buf); ok {
				if pendingEnd != end {
					pendingEnd = end
					if quiescenceTimer == nil {
						quiescenceTimer = clock.NewTimer(quiescence)
						quiesceCh = quiescenceTimer.Chan()
						defer quiescenceTimer.Stop()
					} else {
						quiescenceTimer.Reset(quiescence)
					}
				}
			} else {
				pendingEnd = -1
				if quiescenceTimer != nil {
					quiescenceTimer.Stop()
					quiescenceTimer = nil
					quiesceCh = nil
				}
			}

			if res.err != nil {
				if res.err == io.EOF {
					if pendingEnd >= 0 {
						return pendingEnd, nil
					}
					return 0, ErrEOF
				}
				return 0, &TransportError{Err: res.err}
			}

			pending.start(r)
		}
	}
}

func clockDurationUntil(clock clockwork.Clock, deadline time.Time) time.Duration {
	d := deadline.Sub(clock.Now())
	if d <= 0 {
		d = time.Nanosecond
	}
	return d
}
