// Package matcher implements tail-window pattern matching over a growing
// byte buffer: device prompts only ever appear at the trailing edge of the
// stream, so a full-buffer regex scan would be quadratic in output size.
package matcher

import "regexp"

// DefaultWindow is the default tail-window size in bytes.
const DefaultWindow = 200

// Pattern is one compiled prompt or failure regex plus the window it's
// searched against.
type Pattern struct {
	re     *regexp.Regexp
	window int
}

// Compile compiles expr and returns a Pattern searched against the last
// window bytes of a buffer (DefaultWindow when window is not positive).
// Compile does not anchor or rewrite expr: callers that want a true
// end-of-buffer match should end expr with "$" themselves.
func Compile(expr string, window int) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Pattern{re: re, window: window}, nil
}

// MustCompile is like Compile but panics on error. Intended for building
// built-in platform tables at package init time, where a bad regex is a
// programmer error, not a runtime condition.
func MustCompile(expr string, window int) *Pattern {
	p, err := Compile(expr, window)
	if err != nil {
		panic("netcli/matcher: " + err.Error())
	}
	return p
}

func tail(buf []byte, window int) ([]byte, int) {
	if window <= 0 || window > len(buf) {
		return buf, 0
	}
	start := len(buf) - window
	return buf[start:], start
}

// Match reports whether buf's tail window matches p, and if so the absolute
// start offset of the match within buf.
func (p *Pattern) Match(buf []byte) (matched bool, start int) {
	window, offset := tail(buf, p.window)
	loc := p.re.FindIndex(window)
	if loc == nil {
		return false, 0
	}
	return true, offset + loc[0]
}

// End returns the absolute end offset of p's match in buf's tail window (the
// same match Match reports), or -1 if p does not match.
func (p *Pattern) End(buf []byte) int {
	window, offset := tail(buf, p.window)
	loc := p.re.FindIndex(window)
	if loc == nil {
		return -1
	}
	return offset + loc[1]
}

// MatchAny searches buf's tail window against every pattern and returns the
// index of the one whose match starts earliest in buf; ties are broken by
// list order (lower index wins, since the scan below only replaces the best
// candidate on a strictly earlier start).
func MatchAny(buf []byte, patterns []*Pattern) (index int, start int, end int, ok bool) {
	bestIndex := -1
	bestStart := -1
	bestEnd := -1
	for i, p := range patterns {
		matched, s := p.Match(buf)
		if !matched {
			continue
		}
		e := p.End(buf)
		if bestIndex == -1 || s < bestStart {
			bestIndex, bestStart, bestEnd = i, s, e
		}
	}
	if bestIndex == -1 {
		return 0, 0, 0, false
	}
	return bestIndex, bestStart, bestEnd, true
}
