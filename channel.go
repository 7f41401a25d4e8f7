package netcli

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/malbeclabs/netcli/internal/matcher"
	"github.com/malbeclabs/netcli/transport"
)

// Channel owns the transport and the buffer it reads into (spec §4.F).
// Every operation takes exclusive access to the channel for its duration;
// the library has no internal lock because a Driver never shares its
// Channel across goroutines (spec §5).
type Channel struct {
	t transport.Transport

	clock      clockwork.Clock
	log        *slog.Logger
	quiescence time.Duration

	buf []byte

	// pending tracks a read goroutine that may still be running against t
	// across calls to readUntilAny; see matcher.PendingRead.
	pending matcher.PendingRead

	// pagerPattern matches a vendor "--More--" prompt mid-stream. When set,
	// ReadUntilPrompt and ReadUntilAny auto-respond with a space and keep
	// reading instead of treating the pager text as the awaited match.
	pagerPattern *matcher.Pattern
}

// NewChannel wraps t. quiescence is the boundary-behavior window from spec
// §8: a prompt at the buffer tail must be followed by this much silence
// before a read is considered complete.
func NewChannel(t transport.Transport, clock clockwork.Clock, quiescence time.Duration, log *slog.Logger) *Channel {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Channel{t: t, clock: clock, quiescence: quiescence, log: log}
}

// SetPagerPattern installs the vendor's pager-prompt regex, if any.
func (c *Channel) SetPagerPattern(p *matcher.Pattern) { c.pagerPattern = p }

// Write sends p verbatim.
func (c *Channel) Write(p []byte) error {
	_, err := c.t.Write(p)
	if err != nil {
		return &wrappedTransportErr{err: err}
	}
	return nil
}

// WriteLine sends text followed by LF.
func (c *Channel) WriteLine(text string) error {
	return c.Write([]byte(text + "\n"))
}

// ReadUntilPrompt reads until pattern matches the buffer tail (honoring the
// pager auto-response), and returns the bytes consumed up to and including
// the match. The channel's buffer is reset afterward; any bytes observed
// past the match are preserved at its head for the next call.
func (c *Channel) ReadUntilPrompt(ctx context.Context, deadline time.Time, pattern *matcher.Pattern) (raw string, matchedTail string, err error) {
	_, raw, matchedTail, err = c.readUntilAny(ctx, deadline, []*matcher.Pattern{pattern})
	return raw, matchedTail, err
}

// ReadUntilAnyOrPrompt reads until any of patterns matches, or prompt
// matches, whichever comes first; prompt is checked last among equal
// starting positions so an explicit expected pattern takes precedence over
// the ambient shell prompt (spec §4.F, used by the interactive engine to mix
// user prompts with the shell prompt).
func (c *Channel) ReadUntilAnyOrPrompt(ctx context.Context, deadline time.Time, patterns []*matcher.Pattern, prompt *matcher.Pattern) (index int, raw string, matchedTail string, err error) {
	all := append(append([]*matcher.Pattern{}, patterns...), prompt)
	return c.readUntilAny(ctx, deadline, all)
}

// ReadUntilAny reads until any of patterns matches the buffer tail. The
// match that starts earliest wins, with ties broken by pattern-list order
// (see matcher.MatchAny). Returns the index of the pattern that matched.
func (c *Channel) ReadUntilAny(ctx context.Context, deadline time.Time, patterns []*matcher.Pattern) (index int, raw string, matchedTail string, err error) {
	return c.readUntilAny(ctx, deadline, patterns)
}

func (c *Channel) readUntilAny(ctx context.Context, deadline time.Time, patterns []*matcher.Pattern) (index int, raw string, matchedTail string, err error) {
	matchedIndex := -1
	matchedStart := -1

	match := func(buf []byte) (int, bool) {
		// Strip every pager token already in buf before testing for a real
		// match: a read chunk can carry a "--More--" marker and the output
		// that follows it together, so the terminating prompt must be
		// checked against the stripped buffer in the same pass rather than
		// waiting on a read event that may never come (spec §8 boundary
		// behavior).
		for c.pagerPattern != nil {
			ok, start := c.pagerPattern.Match(buf)
			if !ok {
				break
			}
			end := c.pagerPattern.End(buf)
			if werr := c.Write([]byte(" ")); werr != nil {
				break
			}
			stripped := make([]byte, 0, len(buf)-(end-start))
			stripped = append(stripped, buf[:start]...)
			stripped = append(stripped, buf[end:]...)
			buf = stripped
			c.buf = stripped
		}

		i, start, end, ok := matcher.MatchAny(buf, patterns)
		if !ok {
			return 0, false
		}
		matchedIndex, matchedStart = i, start
		return end, true
	}

	end, rerr := matcher.Run(ctx, c.t, &c.buf, match, deadline, c.quiescence, c.clock, &c.pending)
	if rerr != nil {
		return 0, "", "", mapMatcherErr(rerr)
	}

	consumed := c.buf[:end]
	remainder := append([]byte(nil), c.buf[end:]...)
	result := string(consumed)
	tail := ""
	if matchedStart >= 0 && matchedStart <= len(consumed) {
		// The compiled prompt regex matches only the trailing sigil (e.g.
		// "$ " or "# "), not the full prompt line. Walk matchedStart back to
		// the start of its line so tail is the whole prompt line, matching
		// what Normalize compares against.
		lineStart := matchedStart
		for lineStart > 0 && consumed[lineStart-1] != '\n' {
			lineStart--
		}
		tail = string(consumed[lineStart:])
	}
	c.buf = remainder

	return matchedIndex, result, tail, nil
}

func mapMatcherErr(err error) error {
	switch err {
	case matcher.ErrTimeout:
		return &TimeoutError{Expected: "prompt"}
	case matcher.ErrEOF:
		return ErrEOF
	}
	if _, ok := err.(*matcher.TransportError); ok {
		return &wrappedTransportErr{err: err}
	}
	return err
}

type wrappedTransportErr struct{ err error }

func (e *wrappedTransportErr) Error() string { return "netcli: transport: " + e.err.Error() }
func (e *wrappedTransportErr) Unwrap() error { return ErrTransport }
