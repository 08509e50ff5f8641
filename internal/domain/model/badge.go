// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// BadgeVersion is one specific variant within a badge set.
// Fields mirror the catalog payload returned by the backend.
type BadgeVersion struct {
	ID          string // version identifier, unique within its set
	Title       string
	Description string
	ImageURL1x  string
	ImageURL2x  string
	ImageURL4x  string
	ClickAction string // optional
	ClickURL    string // optional
}

// BadgeSet is a named category of badges, e.g. a seasonal event.
type BadgeSet struct {
	ID       string
	Versions []BadgeVersion
}

// BadgeMetadata carries the knowledge-source enrichment for one badge.
// All descriptor fields are free text; absent fields stay empty.
type BadgeMetadata struct {
	DateAdded    string // free-text addition date, e.g. "04 December 2025"
	UsageStats   string // free text, leading count, e.g. "1,234 people have this"
	Availability string // free-text availability descriptor
	InfoURL      string
	Position     *int // origin-supplied ordinal, lower = newer
}

// EnrichedBadge is the unit all downstream components operate on:
// a flattened BadgeVersion tagged with its owning set, plus metadata
// once the enricher has attached it. Metadata == nil means "pending",
// which is distinct from an error state.
type EnrichedBadge struct {
	SetID    string
	Version  BadgeVersion
	Metadata *BadgeMetadata
}

// Key returns the canonical composite key "{set_id}/{version_id}".
func (b EnrichedBadge) Key() string {
	return CompositeKey(b.SetID, b.Version.ID)
}

// CompositeKey renders the canonical identifier of a badge across
// catalog, cache and ownership data.
func CompositeKey(setID, versionID string) string {
	return setID + "/" + versionID
}

// MetadataCacheKey renders the cache-storage variant of the composite key.
func MetadataCacheKey(setID, versionID string) string {
	return fmt.Sprintf("metadata:%s-v%s", setID, versionID)
}

// BadgeRef addresses one badge by its composite key pair.
type BadgeRef struct {
	SetID     string
	VersionID string
}

// Key returns the canonical composite key for the pair.
func (r BadgeRef) Key() string {
	return CompositeKey(r.SetID, r.VersionID)
}

// CatalogSnapshot is an immutable view of the full badge-set catalog.
type CatalogSnapshot struct {
	Sets      []BadgeSet
	FetchedAt time.Time
}

// Flatten expands every set into per-version EnrichedBadge stubs with
// metadata absent, tagged with their owning set id.
func (s CatalogSnapshot) Flatten() []EnrichedBadge {
	var out []EnrichedBadge
	for _, set := range s.Sets {
		for _, v := range set.Versions {
			out = append(out, EnrichedBadge{SetID: set.ID, Version: v})
		}
	}
	return out
}

// VersionCount returns the number of flattened badges in the snapshot.
func (s CatalogSnapshot) VersionCount() int {
	n := 0
	for _, set := range s.Sets {
		n += len(set.Versions)
	}
	return n
}
