package collection

// denylistedSets enumerates badge-set categories that are not globally
// earnable and therefore excluded from completeness accounting. Grouped by
// why they are excluded; audited as one table rather than scattered
// literals.
var denylistedSets = map[string]struct{}{
	// Channel-bound subscription, gift and role badges.
	"subscriber":      {},
	"founder":         {},
	"sub-gifter":      {},
	"sub-gift-leader": {},
	"vip":             {},
	"moderator":       {},
	"broadcaster":     {},

	// Cheer / bits tiers and leaders.
	"bits":         {},
	"bits-leader":  {},
	"bits-charity": {},
	"cheer":        {},

	// Channel mechanics.
	"hype-train":  {},
	"predictions": {},

	// Staff, platform and automated roles.
	"staff":            {},
	"admin":            {},
	"global-mod":       {},
	"verified-mod":     {},
	"automod":          {},
	"user-anniversary": {},

	// Paid account tiers.
	"turbo":   {},
	"premium": {},
	"prime":   {},

	// Program memberships.
	"ambassador": {},
	"partner":    {},

	// Developer and extension badges.
	"game-developer": {},
	"extension":      {},

	// Accessibility flags.
	"no-audio": {},
	"no-video": {},

	// Enumerated limited events that were never globally earnable.
	"creator-camp-2023": {},
	"rplace-2023":       {},
	"la-velada-iv":      {},
}

// IsDenylisted reports whether a badge-set category is excluded from
// globally-collectible accounting.
func IsDenylisted(setID string) bool {
	_, ok := denylistedSets[setID]
	return ok
}
