package availability

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Month name fragments reused across the grammar regexps.
const (
	fullMonths   = `January|February|March|April|May|June|July|August|September|October|November|December`
	abbrevMonth  = `Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec`
	isoTimestamp = `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|[+-]\d{2}:\d{2})?`
	dashClass    = `[\x{2013}\x{2014}-]` // hyphen, en dash, em dash
)

var (
	eventStartRe = regexp.MustCompile(`(?i)event\s+start\s*:?\s*(` + isoTimestamp + `)`)
	eventEndRe   = regexp.MustCompile(`(?i)event\s+end\s*:?\s*(` + isoTimestamp + `)`)

	isoRangeRe = regexp.MustCompile(`(` + isoTimestamp + `)\s*` + dashClass + `\s*(` + isoTimestamp + `)`)

	durationPrefixRe = regexp.MustCompile(`(?i)event\s+duration\s*:?\s*(.+)`)

	// "Mon DD – Mon DD" with the end month optional ("Mon DD-DD").
	abbrevRangeRe = regexp.MustCompile(`(?i)\b(` + abbrevMonth + `)\s+(\d{1,2})\s*` + dashClass + `\s*(?:(` + abbrevMonth + `)\s+)?(\d{1,2})\b`)

	singleDayRe = regexp.MustCompile(`(?i)^\s*(` + abbrevMonth + `)\s+(\d{1,2})\s*$`)

	// "Month Day, Year at HH:MM AM/PM"
	naturalRe      = `(` + fullMonths + `)\s+(\d{1,2}),\s*(\d{4})\s+at\s+(\d{1,2}):(\d{2})\s*(AM|PM)`
	naturalRangeRe = regexp.MustCompile(`(?i)` + naturalRe + `\s*` + dashClass + `\s*` + naturalRe)
	naturalStartRe = regexp.MustCompile(`(?i)` + naturalRe)

	trailingDurationRe = regexp.MustCompile(`(?i)\b(\d+)\s+(minute|hour)s?\b`)

	dayFirstRe  = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` + fullMonths + `)\s+(\d{4})\b`)
	monthYearRe = regexp.MustCompile(`(?i)\b(` + fullMonths + `)\s+(\d{4})\b`)
)

var monthsByName = func() map[string]time.Month {
	m := make(map[string]time.Month)
	for mo := time.January; mo <= time.December; mo++ {
		name := mo.String()
		m[strings.ToLower(name)] = mo
		m[strings.ToLower(name[:3])] = mo
	}
	return m
}()

func monthByName(name string) (time.Month, bool) {
	mo, ok := monthsByName[strings.ToLower(name)]
	return mo, ok
}

// isoLayouts are tried in order for bare ISO-8601 timestamps; the source
// sometimes drops seconds or the zone suffix.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
}

func parseISOTimestamp(s string) *time.Time {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// Grammar 1: explicit "event start" / "event end" ISO pair. A missing end
// defaults to 23:59:59 of the start's day.
func parseEventStartEnd(_ time.Time, text string) *Window {
	sm := eventStartRe.FindStringSubmatch(text)
	if sm == nil {
		return nil
	}
	start := parseISOTimestamp(sm[1])
	if start == nil {
		return nil
	}
	end := endOfDay(*start)
	if em := eventEndRe.FindStringSubmatch(text); em != nil {
		if t := parseISOTimestamp(em[1]); t != nil {
			end = *t
		}
	}
	return &Window{Start: *start, End: end}
}

// Grammar 2: bare ISO timestamp range separated by a dash-like character.
func parseISORange(_ time.Time, text string) *Window {
	m := isoRangeRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	start := parseISOTimestamp(m[1])
	end := parseISOTimestamp(m[2])
	if start == nil || end == nil {
		return nil
	}
	return &Window{Start: *start, End: *end}
}

// Grammar 3: explicit duration phrase, "Event duration: Mon DD – Mon DD"
// or its same-month "Mon DD-DD" variant.
func parseEventDuration(now time.Time, text string) *Window {
	m := durationPrefixRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return parseAbbrevRange(now, m[1])
}

// Grammar 6 (and the body of grammar 3): "Mon DD – Mon DD" / "Mon DD-DD",
// current year assumed. When the end month precedes the start month the
// end falls in the following year.
func parseAbbrevRange(now time.Time, text string) *Window {
	m := abbrevRangeRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	startMonth, ok := monthByName(m[1])
	if !ok {
		return nil
	}
	endMonth := startMonth
	if m[3] != "" {
		if endMonth, ok = monthByName(m[3]); !ok {
			return nil
		}
	}
	startDay, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	endDay, err := strconv.Atoi(m[4])
	if err != nil {
		return nil
	}
	if !validDay(startDay) || !validDay(endDay) {
		return nil
	}
	startYear := now.Year()
	endYear := startYear
	if endMonth < startMonth {
		// Range crosses a year boundary. Anchor to the occurrence the
		// current instant can actually see: early in the year we are in
		// (or past) the tail of the previous occurrence.
		if now.Month() < startMonth && now.Month() <= endMonth {
			startYear--
		} else {
			endYear++
		}
	}
	start := time.Date(startYear, startMonth, startDay, 0, 0, 0, 0, time.UTC)
	end := endOfDay(time.Date(endYear, endMonth, endDay, 0, 0, 0, 0, time.UTC))
	return &Window{Start: start, End: end}
}

// Grammar 4: full natural-language start and end on both sides of a dash.
func parseNaturalRange(_ time.Time, text string) *Window {
	m := naturalRangeRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	start := naturalTime(m[1:7])
	end := naturalTime(m[7:13])
	if start == nil || end == nil {
		return nil
	}
	return &Window{Start: *start, End: *end}
}

// Grammar 5: natural-language single start with an optional trailing
// duration phrase; absent duration defaults the end to 23:59:59 of the
// start date.
func parseNaturalStart(_ time.Time, text string) *Window {
	m := naturalStartRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	start := naturalTime(m[1:7])
	if start == nil {
		return nil
	}
	end := endOfDay(*start)
	rest := text[strings.Index(text, m[0])+len(m[0]):]
	if dm := trailingDurationRe.FindStringSubmatch(rest); dm != nil {
		n, err := strconv.Atoi(dm[1])
		if err == nil && n > 0 {
			unit := time.Minute
			if strings.EqualFold(dm[2], "hour") {
				unit = time.Hour
			}
			end = start.Add(time.Duration(n) * unit)
		}
	}
	return &Window{Start: *start, End: end}
}

// naturalTime builds a UTC instant from the six capture groups of
// naturalRe: month, day, year, hour, minute, meridiem.
func naturalTime(groups []string) *time.Time {
	month, ok := monthByName(groups[0])
	if !ok {
		return nil
	}
	day, err1 := strconv.Atoi(groups[1])
	year, err2 := strconv.Atoi(groups[2])
	hour, err3 := strconv.Atoi(groups[3])
	minute, err4 := strconv.Atoi(groups[4])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil
	}
	if !validDay(day) || hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return nil
	}
	if hour == 12 {
		hour = 0
	}
	if strings.EqualFold(groups[5], "PM") {
		hour += 12
	}
	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	return &t
}

// Grammar 7: bare "Mon DD" single day, current year assumed.
func parseSingleDay(now time.Time, text string) *Window {
	m := singleDayRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	month, ok := monthByName(m[1])
	if !ok {
		return nil
	}
	day, err := strconv.Atoi(m[2])
	if err != nil || !validDay(day) {
		return nil
	}
	start := time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC)
	return &Window{Start: start, End: endOfDay(start)}
}

// Grammar 8: "DD Month YYYY" (day first).
func parseDayFirst(text string) *time.Time {
	m := dayFirstRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	day, err1 := strconv.Atoi(m[1])
	year, err2 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil || !validDay(day) {
		return nil
	}
	month, ok := monthByName(m[2])
	if !ok {
		return nil
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// Grammar 8, month/year-only variant: "Month YYYY", day defaults to 1.
func parseMonthYear(text string) *time.Time {
	m := monthYearRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	month, ok := monthByName(m[1])
	if !ok {
		return nil
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

// genericLayouts back the last-resort whole-text parse.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006/01/02",
	"01/02/2006",
	time.RFC1123,
	time.RFC822,
}

// Grammar 9: generic date-string parse of the whole (trimmed) text.
func parseGeneric(_ time.Time, text string) *Window {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			t = t.UTC()
			return &Window{Start: t, End: endOfDay(t)}
		}
	}
	return nil
}

func validDay(d int) bool {
	return d >= 1 && d <= 31
}
