package netcli

import "fmt"

// Event is one step of an interactive exchange (spec §3): either sending
// text or expecting a pattern. A well-formed sequence alternates Send/Expect
// and ends with Expect; EventBuilder enforces that shape.
type Event struct {
	kind EventKind

	// Send fields.
	text   string
	hidden bool

	// Expect fields.
	pattern         string
	timeoutOverride int64 // nanoseconds; 0 means "use the driver default"
}

type EventKind int

const (
	eventSend EventKind = iota
	eventExpect
)

func sendEvent(text string, hidden bool) Event {
	return Event{kind: eventSend, text: text, hidden: hidden}
}

func expectEvent(pattern string, timeoutOverride int64) Event {
	return Event{kind: eventExpect, pattern: pattern, timeoutOverride: timeoutOverride}
}

// EventBuilder assembles a validated interactive event sequence (spec §6).
type EventBuilder struct {
	events []Event
	err    error
}

// NewEventBuilder starts a new interactive sequence.
func NewEventBuilder() *EventBuilder { return &EventBuilder{} }

func (b *EventBuilder) lastKind() (EventKind, bool) {
	if len(b.events) == 0 {
		return 0, false
	}
	return b.events[len(b.events)-1].kind, true
}

func (b *EventBuilder) appendSend(text string, hidden bool) *EventBuilder {
	if b.err != nil {
		return b
	}
	if kind, ok := b.lastKind(); ok && kind == eventSend {
		b.err = fmt.Errorf("%w: interactive sequence must alternate send/expect", ErrInvalidInput)
		return b
	}
	b.events = append(b.events, sendEvent(text, hidden))
	return b
}

// Send queues a visible text send.
func (b *EventBuilder) Send(text string) *EventBuilder { return b.appendSend(text, false) }

// SendHidden queues a send whose text is elided from logs (e.g. a password).
func (b *EventBuilder) SendHidden(text string) *EventBuilder { return b.appendSend(text, true) }

// Expect queues a pattern to wait for, using the driver's default timeout.
func (b *EventBuilder) Expect(pattern string) *EventBuilder {
	return b.ExpectTimeout(pattern, 0)
}

// ExpectTimeout queues a pattern to wait for with a per-event timeout
// override.
func (b *EventBuilder) ExpectTimeout(pattern string, timeout int64) *EventBuilder {
	if b.err != nil {
		return b
	}
	if kind, ok := b.lastKind(); ok && kind == eventExpect {
		b.err = fmt.Errorf("%w: interactive sequence must alternate send/expect", ErrInvalidInput)
		return b
	}
	b.events = append(b.events, expectEvent(pattern, timeout))
	return b
}

// Build validates the sequence (non-empty, starts with Send, ends with
// Expect, strictly alternating) and returns it.
func (b *EventBuilder) Build() ([]Event, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.events) == 0 {
		return nil, fmt.Errorf("%w: interactive sequence must not be empty", ErrInvalidInput)
	}
	if b.events[0].kind != eventSend {
		return nil, fmt.Errorf("%w: interactive sequence must start with Send", ErrInvalidInput)
	}
	if b.events[len(b.events)-1].kind != eventExpect {
		return nil, fmt.Errorf("%w: interactive sequence must end with Expect", ErrInvalidInput)
	}
	return append([]Event(nil), b.events...), nil
}
