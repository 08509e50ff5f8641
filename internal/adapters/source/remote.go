// Package source provides the simulated remote badge backend: the
// catalog origin, the metadata knowledge source and the viewer
// ownership service, all served from deterministic in-memory fixtures
// with simulated network latency.
package source

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emberview/crest/internal/domain/model"
)

// Default simulation configuration constants.
const (
	defaultMinLatency = 40 * time.Millisecond
	defaultMaxLatency = 120 * time.Millisecond
	defaultRandomSeed = 42
	defaultSetCount   = 48
	maxVersionsPerSet = 5
	ownedShareDivisor = 3 // a viewer owns roughly a third of the collectible pool
)

// curatedSets anchor the generated catalog with recognizable set ids.
var curatedSets = []string{
	"moments",
	"subscriber",
	"sub-gifter",
	"bits",
	"glitchcon2020",
	"minecraft-15th-anniversary-celebration",
	"league-of-legends-mid-season-invitational",
	"superultracombo-2023",
	"gone-bananas",
	"raging-wolf-helm",
}

// availabilityFixtures cycle through every descriptor shape the
// knowledge source is known to emit.
var availabilityFixtures = []string{
	"Event start: 2026-02-10T17:00:00Z Event end: 2026-02-24T23:59:00Z",
	"2026-03-01T00:00:00Z – 2026-03-14T23:59:59Z",
	"Event duration: Jun 12 – Jun 26",
	"May 4, 2026 at 10:00 AM – May 18, 2026 at 11:59 PM",
	"July 20, 2026 at 3:00 PM for 48 hours",
	"Oct 31 – Nov 14",
	"Aug 15",
	"2026-09-01",
	"Available during the community celebration",
	"",
}

// dateAddedFixtures exercise the addition-date grammars.
var dateAddedFixtures = []string{
	"04 December 2025",
	"January 2026",
	"March 3, 2026",
	"2025-11-20",
}

// MetadataIndex reports which badges already hold cached metadata. The
// missing-badge listing is computed against it.
type MetadataIndex interface {
	HasMetadata(ref model.BadgeRef) bool
}

// CatalogSink receives freshly fetched catalogs for write-through.
type CatalogSink interface {
	SetCatalog(ctx context.Context, snap model.CatalogSnapshot)
}

// Option applies a configuration option to the Remote.
type Option func(*Remote)

// WithLatencyRange sets the simulated latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(r *Remote) {
		if minLatency > 0 && maxLatency > minLatency {
			r.minLatency = minLatency
			r.maxLatency = maxLatency
		}
	}
}

// WithSetCount sets the number of generated badge sets.
func WithSetCount(count int) Option {
	return func(r *Remote) {
		if count > 0 {
			r.setCount = count
		}
	}
}

// WithFailingBadges marks composite keys whose metadata fetch fails.
func WithFailingBadges(keys ...string) Option {
	return func(r *Remote) {
		for _, k := range keys {
			r.failing[k] = struct{}{}
		}
	}
}

// WithCatalogSink wires a cache write-through target for fetched catalogs.
func WithCatalogSink(sink CatalogSink) Option {
	return func(r *Remote) {
		r.sink = sink
	}
}

// WithMetadataIndex wires the cache index consulted by the
// missing-badge listing.
func WithMetadataIndex(index MetadataIndex) Option {
	return func(r *Remote) {
		r.index = index
	}
}

// Remote simulates the badge backend over in-memory fixtures.
type Remote struct {
	minLatency time.Duration
	maxLatency time.Duration
	setCount   int
	failing    map[string]struct{}
	sink       CatalogSink
	index      MetadataIndex

	rngMu sync.Mutex
	rng   *rand.Rand

	mu         sync.RWMutex
	generation int
	snapshot   *model.CatalogSnapshot
}

// NewRemote creates a simulated backend with configuration options.
func NewRemote(opts ...Option) *Remote {
	r := &Remote{
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		setCount:   defaultSetCount,
		failing:    make(map[string]struct{}),
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible fixtures
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// simulateLatency blocks for a random interval within the configured
// range, honoring ctx for cancellation.
func (r *Remote) simulateLatency(ctx context.Context) error {
	r.rngMu.Lock()
	latency := r.minLatency + time.Duration(r.rng.Int63n(int64(r.maxLatency-r.minLatency)))
	r.rngMu.Unlock()
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-time.After(latency):
		return nil
	}
}

// stableID derives a deterministic identifier from a fixture name, so
// repeated catalog builds agree across processes.
func stableID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("crest/"+name)).String()
}

func imageURL(setID, versionID string, scale int) string {
	return fmt.Sprintf("https://static.badges.example/v1/%s/%dx", stableID(setID+"/"+versionID), scale)
}

// buildCatalog generates the fixture catalog for the current
// generation. Curated set ids come first, then numbered filler sets up
// to the configured count.
func (r *Remote) buildCatalog(generation int) model.CatalogSnapshot {
	ids := make([]string, 0, r.setCount)
	ids = append(ids, curatedSets[:min(len(curatedSets), r.setCount)]...)
	for i := len(ids); i < r.setCount; i++ {
		ids = append(ids, fmt.Sprintf("community-event-%02d", i))
	}
	if generation > 0 {
		ids = append(ids, fmt.Sprintf("flash-drop-%02d", generation))
	}

	sets := make([]model.BadgeSet, 0, len(ids))
	for i, setID := range ids {
		versionCount := 1 + i%maxVersionsPerSet
		versions := make([]model.BadgeVersion, 0, versionCount)
		for v := 1; v <= versionCount; v++ {
			versionID := fmt.Sprintf("%d", v)
			versions = append(versions, model.BadgeVersion{
				ID:          versionID,
				Title:       fmt.Sprintf("%s (tier %d)", setID, v),
				Description: fmt.Sprintf("Awarded from the %s campaign.", setID),
				ImageURL1x:  imageURL(setID, versionID, 1),
				ImageURL2x:  imageURL(setID, versionID, 2),
				ImageURL4x:  imageURL(setID, versionID, 4),
				ClickAction: "visit_url",
				ClickURL:    fmt.Sprintf("https://badges.example/sets/%s", setID),
			})
		}
		sets = append(sets, model.BadgeSet{ID: setID, Versions: versions})
	}
	return model.CatalogSnapshot{Sets: sets, FetchedAt: time.Now()}
}

// FetchCatalog serves the current catalog generation, building it on
// first use, and writes it through to the configured sink.
func (r *Remote) FetchCatalog(ctx context.Context) (model.CatalogSnapshot, error) {
	if err := r.simulateLatency(ctx); err != nil {
		return model.CatalogSnapshot{}, err
	}
	r.mu.Lock()
	if r.snapshot == nil {
		snap := r.buildCatalog(r.generation)
		r.snapshot = &snap
	}
	snap := *r.snapshot
	r.mu.Unlock()
	if r.sink != nil {
		r.sink.SetCatalog(ctx, snap)
	}
	return snap, nil
}

// ForceRefreshCatalog advances the catalog generation and rebuilds,
// bypassing whatever was served before.
func (r *Remote) ForceRefreshCatalog(ctx context.Context) (model.CatalogSnapshot, error) {
	if err := r.simulateLatency(ctx); err != nil {
		return model.CatalogSnapshot{}, err
	}
	r.mu.Lock()
	r.generation++
	snap := r.buildCatalog(r.generation)
	r.snapshot = &snap
	r.mu.Unlock()
	if r.sink != nil {
		r.sink.SetCatalog(ctx, snap)
	}
	return snap, nil
}

// FetchMetadata serves the knowledge-source record for one badge.
// Fixture descriptors are assigned deterministically from the composite
// key, so the same badge always tells the same story.
func (r *Remote) FetchMetadata(ctx context.Context, ref model.BadgeRef, _ bool) (model.BadgeMetadata, error) {
	if err := r.simulateLatency(ctx); err != nil {
		return model.BadgeMetadata{}, err
	}
	key := ref.Key()
	if _, ok := r.failing[key]; ok {
		return model.BadgeMetadata{}, fmt.Errorf("%w: %s", ErrMetadataUnavailable, key)
	}
	h := fixtureHash(key)
	pos := int(h % 64)
	meta := model.BadgeMetadata{
		DateAdded:    dateAddedFixtures[h%uint32(len(dateAddedFixtures))],
		UsageStats:   fmt.Sprintf("%s people have earned this", groupedCount(1_000+h%900_000)),
		Availability: availabilityFixtures[h%uint32(len(availabilityFixtures))],
		InfoURL:      fmt.Sprintf("https://badges.example/info/%s", stableID(key)),
		Position:     &pos,
	}
	return meta, nil
}

// BadgesMissingMetadata lists catalog badges with no cached metadata.
func (r *Remote) BadgesMissingMetadata(ctx context.Context) ([]model.BadgeRef, error) {
	if err := r.simulateLatency(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	snap := r.snapshot
	r.mu.RUnlock()
	if snap == nil {
		return nil, ErrCatalogNotLoaded
	}
	var missing []model.BadgeRef
	for _, b := range snap.Flatten() {
		ref := model.BadgeRef{SetID: b.SetID, VersionID: b.Version.ID}
		if r.index != nil && r.index.HasMetadata(ref) {
			continue
		}
		missing = append(missing, ref)
	}
	return missing, nil
}

// OwnedBadgeKeys returns the composite keys a viewer has earned. The
// selection is a deterministic function of the user id, stable across
// calls and processes.
func (r *Remote) OwnedBadgeKeys(ctx context.Context, userID string) (map[string]struct{}, error) {
	if err := r.simulateLatency(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	snap := r.snapshot
	r.mu.RUnlock()
	if snap == nil {
		return nil, ErrCatalogNotLoaded
	}
	owned := make(map[string]struct{})
	for _, b := range snap.Flatten() {
		key := b.Key()
		if fixtureHash(userID+"|"+key)%ownedShareDivisor == 0 {
			owned[key] = struct{}{}
		}
	}
	return owned, nil
}

// fixtureHash is FNV-1a over the input, the basis of every
// deterministic fixture assignment.
func fixtureHash(s string) uint32 {
	const (
		offset = 2166136261
		prime  = 16777619
	)
	h := uint32(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}

// groupedCount renders n with comma thousands separators, matching the
// knowledge source's usage-stat phrasing.
func groupedCount(n uint32) string {
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
