// Package availability classifies the temporal status of time-limited
// badges from free-text availability descriptors.
//
// Descriptors arrive from a third-party knowledge source in several
// independent textual grammars. ParseWindow attempts each grammar in a
// fixed priority order and returns the first successful parse; it never
// reconciles conflicting matches from multiple grammars. Every parser is
// total: malformed input yields no window, never an error.
package availability

import "time"

// Status is the temporal classification of a badge.
type Status string

// Temporal statuses.
const (
	StatusAvailable  Status = "available"
	StatusComingSoon Status = "coming_soon"
	StatusExpired    Status = "expired"
	StatusUnknown    Status = "unknown"
)

// Window is the time range during which a badge can be earned.
type Window struct {
	Start time.Time
	End   time.Time
}

// Classify resolves a window against the current instant. It is pure and
// total: a nil window always yields StatusUnknown, and both boundary
// instants classify as available.
func Classify(w *Window, now time.Time) Status {
	if w == nil {
		return StatusUnknown
	}
	switch {
	case now.Before(w.Start):
		return StatusComingSoon
	case now.After(w.End):
		return StatusExpired
	default:
		return StatusAvailable
	}
}

// ParseWindow extracts an availability window from descriptor text.
// now supplies the reference year for grammars that omit one. The result
// is nil when no grammar matches; a non-nil window always has Start <= End.
func ParseWindow(now time.Time, descriptor string) *Window {
	for _, parse := range windowGrammars {
		if w := parse(now, descriptor); w != nil {
			if w.End.Before(w.Start) {
				w.Start, w.End = w.End, w.Start
			}
			return w
		}
	}
	return nil
}

// ParseAddedDate extracts an addition date from free text using the
// day-first family ("04 December 2025", "December 2025") and, failing
// that, the generic layouts. Returns nil when nothing matches.
func ParseAddedDate(now time.Time, text string) *time.Time {
	if t := parseDayFirst(text); t != nil {
		return t
	}
	if t := parseMonthYear(text); t != nil {
		return t
	}
	if w := parseGeneric(now, text); w != nil {
		return &w.Start
	}
	return nil
}

// windowGrammars is the ordered list of independent, total parser
// attempts. First match wins; order is load-bearing.
var windowGrammars = []func(time.Time, string) *Window{
	parseEventStartEnd,
	parseISORange,
	parseEventDuration,
	parseNaturalRange,
	parseNaturalStart,
	parseAbbrevRange,
	parseSingleDay,
	parseGeneric,
}
