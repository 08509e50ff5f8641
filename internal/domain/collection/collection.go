// Package collection computes a viewer's completeness and rank over the
// globally collectible portion of the badge catalog.
package collection

import "github.com/emberview/crest/internal/domain/model"

// Tier is one rank in the collection ladder. MinPercent is the inclusive
// floor a viewer's completeness percentage must reach.
type Tier struct {
	Name       string
	Color      string
	MinPercent float64
}

// tiers is the fixed rank ladder, highest floor first. The floor values
// are a verbatim table; they follow no documented formula.
var tiers = []Tier{
	{Name: "Grandmaster", Color: "#f2a900", MinPercent: 95},
	{Name: "Master", Color: "#b148ff", MinPercent: 85},
	{Name: "Diamond", Color: "#6fd6ff", MinPercent: 73},
	{Name: "Platinum", Color: "#3fe0c5", MinPercent: 59},
	{Name: "Gold", Color: "#ffd700", MinPercent: 47},
	{Name: "Silver", Color: "#c0c0c0", MinPercent: 35},
	{Name: "Bronze", Color: "#cd7f32", MinPercent: 23},
	{Name: "Iron", Color: "#8b8b8b", MinPercent: 13},
	{Name: "Copper", Color: "#b87333", MinPercent: 6},
	{Name: "Initiate", Color: "#9e9e9e", MinPercent: 0.1},
}

// IsGlobalCollectible reports whether badges under setID count toward
// collection completeness.
func IsGlobalCollectible(setID string) bool {
	return !IsDenylisted(setID)
}

// Collectible filters the enriched catalog down to globally collectible
// badges.
func Collectible(badges []model.EnrichedBadge) []model.EnrichedBadge {
	out := make([]model.EnrichedBadge, 0, len(badges))
	for _, b := range badges {
		if IsGlobalCollectible(b.SetID) {
			out = append(out, b)
		}
	}
	return out
}

// CollectedCount counts collectible badges whose composite key appears in
// the viewer's owned-key set. Denylisted sets never count, even when owned.
func CollectedCount(badges []model.EnrichedBadge, owned map[string]struct{}) (collected, total int) {
	for _, b := range badges {
		if !IsGlobalCollectible(b.SetID) {
			continue
		}
		total++
		if _, ok := owned[b.Key()]; ok {
			collected++
		}
	}
	return collected, total
}

// Percentage converts a collected/total pair into a completeness
// percentage. A zero total yields zero.
func Percentage(collected, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(collected) / float64(total) * 100
}

// Rank selects the highest-floor tier whose floor does not exceed the
// viewer's completeness percentage. The second return is false when the
// viewer is unranked: an empty catalog, or completeness below the lowest
// floor.
func Rank(collected, total int) (Tier, bool) {
	if total == 0 {
		return Tier{}, false
	}
	pct := Percentage(collected, total)
	for _, t := range tiers {
		if pct >= t.MinPercent {
			return t, true
		}
	}
	return Tier{}, false
}

// Tiers returns a copy of the rank ladder, highest floor first.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}
