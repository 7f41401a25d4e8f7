package netcli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/malbeclabs/netcli/internal/matcher"
)

// SendInteractive drives an ordered Send/Expect sequence against the channel
// (spec §4.H). Each Expect is matched against its own pattern or the current
// shell prompt, whichever comes first, so a reload-then-confirm style
// exchange can fall through to the shell prompt if the device skips the
// confirmation. The returned Response concatenates every segment's output;
// hidden Send text never appears in Command or in any log line.
func (d *Driver) SendInteractive(ctx context.Context, events []Event) (Response, error) {
	d.drainPendingAbort(ctx)
	if err := d.ensureReady(); err != nil {
		return Response{}, err
	}
	if d.sessionOpen {
		return Response{}, fmt.Errorf("%w: driver is owned by an open configuration session", ErrInvalidInput)
	}
	if len(events) == 0 {
		return Response{}, fmt.Errorf("%w: interactive sequence must not be empty", ErrInvalidInput)
	}

	command := ""
	if !events[0].hidden && events[0].kind == eventSend {
		command = events[0].text
	}

	currentPromptPat, ok := d.prompts[d.currentLevel]
	if !ok {
		return Response{}, &UnknownPrivilegeError{Name: d.currentLevel}
	}

	start := d.cfg.Clock.Now()
	var segments []string
	var lastTail string

	for _, ev := range events {
		switch ev.kind {
		case eventSend:
			text := ev.text
			if err := d.channel.WriteLine(text); err != nil {
				d.poison()
				return Response{}, fmt.Errorf("%w: %s", ErrTransport, err)
			}

		case eventExpect:
			pat, err := matcher.Compile(ev.pattern, d.platform.TailWindow())
			if err != nil {
				return Response{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
			}
			deadline := d.deadline()
			if ev.timeoutOverride > 0 {
				deadline = d.cfg.Clock.Now().Add(time.Duration(ev.timeoutOverride))
			}

			idx, raw, tail, err := d.channel.ReadUntilAnyOrPrompt(ctx, deadline, []*matcher.Pattern{pat}, currentPromptPat)
			if err != nil {
				if _, isTimeout := err.(*TimeoutError); isTimeout {
					d.poison()
					return Response{}, &TimeoutError{Expected: ev.pattern}
				}
				d.poison()
				return Response{}, err
			}
			segments = append(segments, raw)
			lastTail = tail
			_ = idx
		}
	}

	elapsed := d.cfg.Clock.Now().Sub(start)
	rawAll := strings.Join(segments, "")
	result := rawAll
	if lastTail != "" {
		result = strings.TrimSuffix(rawAll, lastTail)
	}

	resp := Response{
		Command: command,
		Result:  result,
		Raw:     rawAll,
		Prompt:  lastTail,
		Elapsed: elapsed,
	}
	if msg, failed := d.checkFailure(rawAll); failed {
		resp.Failed = true
		resp.FailureMessage = msg
	}
	return resp, nil
}
