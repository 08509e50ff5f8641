// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emberview/crest/internal/adapters/cache"
	"github.com/emberview/crest/internal/adapters/refresh"
	"github.com/emberview/crest/internal/adapters/source"
	"github.com/emberview/crest/internal/domain/availability"
	"github.com/emberview/crest/internal/domain/catalog"
	"github.com/emberview/crest/internal/domain/collection"
	"github.com/emberview/crest/internal/domain/enrich"
	"github.com/emberview/crest/internal/domain/model"
	"github.com/emberview/crest/internal/domain/ranking"
	"github.com/emberview/crest/internal/domain/types"
	"github.com/emberview/crest/pkg/logger"
	"github.com/emberview/crest/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultMetadataTTL       = 24 * time.Hour
	defaultStaleAfterDays    = 3
	defaultCheckInterval     = 30 * time.Minute
	defaultDiscoveryInterval = 15 * time.Minute
	defaultShardCount        = 8
	defaultSetCount          = 48
	defaultSourceMinLatency  = 40 * time.Millisecond
	defaultSourceMaxLatency  = 120 * time.Millisecond
)

// Service implements the API dependencies for the badge catalog system.
type Service struct {
	mu sync.Mutex // serializes Start and Stop

	// Core components
	store      *cache.Store
	remote     *source.Remote
	loader     *catalog.Loader
	coll       *enrich.Collection
	enricher   *enrich.Enricher
	refresher  *refresh.Refresher
	refreshCtx context.CancelFunc

	// Configuration
	metadataTTL       time.Duration
	staleAfterDays    int
	checkInterval     time.Duration
	discoveryInterval time.Duration
	shardCount        int
	setCount          int
	sourceMinLatency  time.Duration
	sourceMaxLatency  time.Duration
	failingBadges     []string

	// State
	started atomic.Bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithMetadataTTL sets the metadata cache write-back expiry.
func WithMetadataTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.metadataTTL = ttl
		}
	}
}

// WithStaleAfterDays sets the catalog cache age that triggers a
// background refresh.
func WithStaleAfterDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.staleAfterDays = days
		}
	}
}

// WithRefreshIntervals sets the background staleness-check and
// discovery-sweep intervals.
func WithRefreshIntervals(check, discovery time.Duration) Option {
	return func(s *Service) {
		if check > 0 {
			s.checkInterval = check
		}
		if discovery > 0 {
			s.discoveryInterval = discovery
		}
	}
}

// WithCacheShardCount sets the metadata cache shard count.
func WithCacheShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithSourceSetCount sets the simulated backend's badge-set count.
func WithSourceSetCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.setCount = count
		}
	}
}

// WithSourceLatencyRange sets the simulated backend latency range.
func WithSourceLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Service) {
		if minLatency > 0 && maxLatency > minLatency {
			s.sourceMinLatency = minLatency
			s.sourceMaxLatency = maxLatency
		}
	}
}

// WithFailingBadges marks composite keys whose metadata fetch fails,
// used to exercise pending-state behavior end to end.
func WithFailingBadges(keys ...string) Option {
	return func(s *Service) {
		s.failingBadges = append(s.failingBadges, keys...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		metadataTTL:       defaultMetadataTTL,
		staleAfterDays:    defaultStaleAfterDays,
		checkInterval:     defaultCheckInterval,
		discoveryInterval: defaultDiscoveryInterval,
		shardCount:        defaultShardCount,
		setCount:          defaultSetCount,
		sourceMinLatency:  defaultSourceMinLatency,
		sourceMaxLatency:  defaultSourceMaxLatency,
		logger:            nil, // Will be replaced when service starts
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start wires the components, performs the initial cache-first catalog
// load plus enrichment pass, and launches the background refresher.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started.Load() {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting badge catalog service...")

	s.store = cache.NewStore(cache.WithShardCount(s.shardCount))
	s.remote = source.NewRemote(
		source.WithSetCount(s.setCount),
		source.WithLatencyRange(s.sourceMinLatency, s.sourceMaxLatency),
		source.WithCatalogSink(s.store),
		source.WithMetadataIndex(s.store),
		source.WithFailingBadges(s.failingBadges...),
	)
	s.loader = catalog.NewLoader(s.store, s.remote)
	s.coll = enrich.NewCollection()
	s.enricher = enrich.NewEnricher(s.store, s.remote, s.remote, s.coll,
		enrich.WithTTL(s.metadataTTL),
	)

	snap, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("initial catalog load: %w", err)
	}
	s.coll.Reset(snap.Flatten())
	s.enricher.Enrich(ctx, snap.Flatten(), false)
	metrics.UpdatePendingBadges(s.coll.PendingCount())

	s.refresher = refresh.NewRefresher(s, s.enricher,
		refresh.WithCheckInterval(s.checkInterval),
		refresh.WithDiscoveryInterval(s.discoveryInterval),
		refresh.WithStaleAfterDays(s.staleAfterDays),
	)
	refreshCtx, cancel := context.WithCancel(context.Background())
	s.refreshCtx = cancel
	go s.refresher.Run(refreshCtx)

	s.started.Store(true)
	s.logger.Info(ctx, "badge catalog service started",
		logger.Int("sets", len(snap.Sets)),
		logger.Int("badges", snap.VersionCount()),
		logger.Int("pending", s.coll.PendingCount()),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started.Load() {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping badge catalog service...")

	if s.refreshCtx != nil {
		s.refreshCtx()
	}
	if s.refresher != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = s.refresher.Shutdown(shutdownCtx)
		cancel()
	}

	s.started.Store(false)
	s.logger.Info(ctx, "badge catalog service stopped")
}

// CacheAge reports the catalog cache age for staleness decisions.
func (s *Service) CacheAge(ctx context.Context) (int, bool) {
	if !s.ready() {
		return 0, false
	}
	return s.loader.CacheAge(ctx)
}

// ForceRefresh satisfies the background refresher's maintainer contract.
func (s *Service) ForceRefresh(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh force-reloads the catalog from the remote and re-enriches the
// collection under force, bypassing cached metadata. On failure the
// last-good catalog and metadata stay in service.
func (s *Service) Refresh(ctx context.Context) error {
	if !s.ready() {
		return ErrNotStarted
	}
	snap, err := s.loader.ForceRefresh(ctx)
	if err != nil {
		return err
	}
	s.coll.Reset(snap.Flatten())
	s.enricher.Enrich(ctx, snap.Flatten(), true)
	metrics.UpdatePendingBadges(s.coll.PendingCount())
	return nil
}

// Catalog returns the enriched catalog ordered by policy. Badges with
// pending metadata carry the unknown availability status. A positive
// limit truncates the ordered view.
func (s *Service) Catalog(_ context.Context, policy ranking.Policy, limit int) ([]types.CatalogEntry, error) {
	if !s.ready() {
		return nil, ErrNotStarted
	}
	now := time.Now().UTC()
	ordered := ranking.Sort(now, s.coll.List(), policy)
	if limit > 0 && limit < len(ordered) {
		ordered = ordered[:limit]
	}

	entries := make([]types.CatalogEntry, 0, len(ordered))
	for _, b := range ordered {
		entries = append(entries, toEntry(b, now))
	}
	return entries, nil
}

// CollectionSummary reports a viewer's completeness and rank over the
// collectible portion of the catalog.
func (s *Service) CollectionSummary(ctx context.Context, userID string) (types.CollectionSummary, error) {
	if !s.ready() {
		return types.CollectionSummary{}, ErrNotStarted
	}
	owned, err := s.remote.OwnedBadgeKeys(ctx, userID)
	if err != nil {
		return types.CollectionSummary{}, fmt.Errorf("ownership lookup: %w", err)
	}

	collected, total := collection.CollectedCount(s.coll.List(), owned)
	summary := types.CollectionSummary{
		UserID:     userID,
		Collected:  collected,
		Total:      total,
		Percentage: collection.Percentage(collected, total),
	}
	if tier, ok := collection.Rank(collected, total); ok {
		summary.RankName = tier.Name
		summary.RankColor = tier.Color
		summary.Ranked = true
	}
	return summary, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	started := s.started.Load()

	stats := map[string]interface{}{
		"started": started,
	}
	if !started {
		return stats
	}

	snap := s.loader.Snapshot()
	if snap != nil {
		stats["catalog_sets"] = len(snap.Sets)
		stats["catalog_badges"] = snap.VersionCount()
	}
	pending := s.coll.PendingCount()
	stats["pending_badges"] = pending
	stats["cached_metadata"] = s.store.MetadataCount()
	if age, ok := s.loader.CacheAge(context.Background()); ok {
		stats["catalog_age_days"] = age
	}

	metrics.UpdatePendingBadges(pending)
	return stats
}

// ready reports whether Start completed. Lock-free so the background
// refresher can probe state while Start or Stop holds the service lock.
func (s *Service) ready() bool {
	return s.started.Load()
}

// toEntry projects one enriched badge into the wire read model.
func toEntry(b model.EnrichedBadge, now time.Time) types.CatalogEntry {
	entry := types.CatalogEntry{
		Key:       b.Key(),
		SetID:     b.SetID,
		VersionID: b.Version.ID,
		Title:     b.Version.Title,
		ImageURL:  b.Version.ImageURL2x,
		Status:    string(availability.StatusUnknown),
		Pending:   b.Metadata == nil,
	}
	if b.Metadata == nil {
		return entry
	}
	entry.DateAdded = b.Metadata.DateAdded
	entry.UsageStats = b.Metadata.UsageStats
	entry.Availability = b.Metadata.Availability
	w := availability.ParseWindow(now, b.Metadata.Availability)
	entry.Status = string(availability.Classify(w, now))
	return entry
}
