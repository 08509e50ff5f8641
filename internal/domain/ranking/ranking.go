// Package ranking orders the enriched badge catalog under a sort policy.
//
// Every policy produces a total order: any two distinct badges compare
// definitively, with a final deterministic tie-break on the composite key
// string, so repeated sorts of the same input are reproducible regardless
// of input order.
package ranking

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emberview/crest/internal/domain/availability"
	"github.com/emberview/crest/internal/domain/model"
)

// Policy selects the ordering applied to the catalog view.
type Policy string

// Supported sort policies.
const (
	PolicyNewestAdded     Policy = "newest_added"
	PolicyOldestAdded     Policy = "oldest_added"
	PolicyMostUsed        Policy = "most_used"
	PolicyLeastUsed       Policy = "least_used"
	PolicyAvailableFirst  Policy = "available_first"
	PolicyComingSoonFirst Policy = "coming_soon_first"
)

// PositionCoverageThreshold is the minimum fraction of badges that must
// carry a position hint before position-based ordering is trusted over
// parsed-date ordering.
const PositionCoverageThreshold = 0.9

// ParsePolicy validates a policy string from an external caller.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PolicyNewestAdded, PolicyOldestAdded, PolicyMostUsed, PolicyLeastUsed,
		PolicyAvailableFirst, PolicyComingSoonFirst:
		return p, nil
	case "":
		return PolicyNewestAdded, nil
	}
	return "", ErrUnknownPolicy
}

// sortable carries per-badge keys computed once before comparison.
type sortable struct {
	badge    model.EnrichedBadge
	key      string
	position *int
	added    time.Time // zero when date_added is absent or unparseable
	usage    int64
	status   availability.Status
}

// Sort returns a new slice holding badges ordered under policy. now feeds
// year inference for partial dates and the availability classification;
// the input slice is never mutated.
func Sort(now time.Time, badges []model.EnrichedBadge, policy Policy) []model.EnrichedBadge {
	decorated := decorate(now, badges)

	switch policy {
	case PolicyNewestAdded:
		if positionCoverage(decorated) >= PositionCoverageThreshold {
			sortBy(decorated, byPosition)
		} else {
			sortBy(decorated, byAddedDesc)
		}
	case PolicyOldestAdded:
		sortBy(decorated, byAddedAsc)
	case PolicyMostUsed:
		sortBy(decorated, byUsageDesc)
	case PolicyLeastUsed:
		sortBy(decorated, byUsageAsc)
	case PolicyAvailableFirst:
		sortBy(decorated, byStatusFirst(availability.StatusAvailable))
	case PolicyComingSoonFirst:
		sortBy(decorated, byStatusFirst(availability.StatusComingSoon))
	default:
		sortBy(decorated, byAddedDesc)
	}

	out := make([]model.EnrichedBadge, len(decorated))
	for i, d := range decorated {
		out[i] = d.badge
	}
	return out
}

func decorate(now time.Time, badges []model.EnrichedBadge) []sortable {
	decorated := make([]sortable, len(badges))
	for i, b := range badges {
		d := sortable{badge: b, key: b.Key(), status: availability.StatusUnknown}
		if m := b.Metadata; m != nil {
			d.position = m.Position
			if t := availability.ParseAddedDate(now, m.DateAdded); t != nil {
				d.added = *t
			}
			d.usage = UsageCount(m.UsageStats)
			d.status = availability.Classify(availability.ParseWindow(now, m.Availability), now)
		}
		decorated[i] = d
	}
	return decorated
}

func positionCoverage(decorated []sortable) float64 {
	if len(decorated) == 0 {
		return 0
	}
	hinted := 0
	for _, d := range decorated {
		if d.position != nil {
			hinted++
		}
	}
	return float64(hinted) / float64(len(decorated))
}

// cmp reports the ordering of a pair: negative for a-first, positive for
// b-first, zero for "no preference at this level".
type cmp func(a, b *sortable) int

// sortBy applies a comparator and the mandatory composite-key tie-break.
func sortBy(decorated []sortable, c cmp) {
	sort.Slice(decorated, func(i, j int) bool {
		if r := c(&decorated[i], &decorated[j]); r != 0 {
			return r < 0
		}
		return decorated[i].key < decorated[j].key
	})
}

// byPosition is the fast path: position ascending (lower = newer), with
// hinted badges ahead of hintless ones and parsed-date comparison only
// among the hintless remainder.
func byPosition(a, b *sortable) int {
	switch {
	case a.position != nil && b.position != nil:
		return *a.position - *b.position
	case a.position != nil:
		return -1
	case b.position != nil:
		return 1
	default:
		return byAddedDesc(a, b)
	}
}

func byAddedDesc(a, b *sortable) int {
	switch {
	case a.added.After(b.added):
		return -1
	case b.added.After(a.added):
		return 1
	default:
		return 0
	}
}

func byAddedAsc(a, b *sortable) int {
	return -byAddedDesc(a, b)
}

func byUsageDesc(a, b *sortable) int {
	switch {
	case a.usage > b.usage:
		return -1
	case b.usage > a.usage:
		return 1
	default:
		return 0
	}
}

func byUsageAsc(a, b *sortable) int {
	return -byUsageDesc(a, b)
}

// byStatusFirst partitions badges with the wanted status ahead of the
// rest, then falls back to date_added descending.
func byStatusFirst(want availability.Status) cmp {
	return func(a, b *sortable) int {
		am, bm := a.status == want, b.status == want
		switch {
		case am && !bm:
			return -1
		case bm && !am:
			return 1
		default:
			return byAddedDesc(a, b)
		}
	}
}

var leadingCountRe = regexp.MustCompile(`^\s*(\d{1,3}(?:,\d{3})*|\d+)`)

// UsageCount extracts the leading comma-grouped integer from usage_stats
// free text. Absent or unparseable text contributes 0.
func UsageCount(text string) int64 {
	m := leadingCountRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
