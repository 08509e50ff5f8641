// Package catalog obtains the badge-set catalog cache-first and flattens
// it into per-version enriched badge stubs.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/emberview/crest/internal/domain/model"
	"github.com/emberview/crest/pkg/logger"
	"github.com/emberview/crest/pkg/metrics"
)

// Cache is the read side of the catalog cache collaborator.
type Cache interface {
	// CachedCatalog returns the cached snapshot, or nil on a miss.
	CachedCatalog(ctx context.Context) (*model.CatalogSnapshot, error)

	// CacheAge reports the age of the cached catalog in whole days.
	// ok is false when nothing is cached.
	CacheAge(ctx context.Context) (days int, ok bool)
}

// Fetcher is the remote catalog collaborator. Both calls are expected to
// repopulate the cache as a side effect.
type Fetcher interface {
	FetchCatalog(ctx context.Context) (model.CatalogSnapshot, error)
	ForceRefreshCatalog(ctx context.Context) (model.CatalogSnapshot, error)
}

// Loader serves the catalog cache-first and holds the last-good snapshot.
// Readers always observe a complete snapshot: replacement is an atomic
// pointer swap, never a partial-set view.
type Loader struct {
	cache   Cache
	fetcher Fetcher

	current atomic.Pointer[model.CatalogSnapshot]
	forceMu sync.Mutex // serializes force refreshes against each other

	logger logger.Logger
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithLogger sets a custom logger for the loader.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// NewLoader constructs a Loader over the cache and remote collaborators.
func NewLoader(cache Cache, fetcher Fetcher, opts ...Option) *Loader {
	ld := &Loader{
		cache:   cache,
		fetcher: fetcher,
		logger:  logger.Get().Named("catalog"),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load returns the catalog, trying the cache collaborator first and
// falling back to a remote fetch on a miss. A cache read error is treated
// as a miss. The returned snapshot is flattened lazily via Badges.
func (ld *Loader) Load(ctx context.Context) (model.CatalogSnapshot, error) {
	cached, err := ld.cache.CachedCatalog(ctx)
	if err != nil {
		ld.logger.Warn(ctx, "catalog cache read failed; falling back to remote", logger.Error(err))
	}
	if cached != nil && len(cached.Sets) > 0 {
		metrics.RecordCatalogCacheHit()
		ld.current.Store(cached)
		return *cached, nil
	}
	metrics.RecordCatalogCacheMiss()

	snap, err := ld.fetcher.FetchCatalog(ctx)
	if err != nil {
		metrics.RecordCatalogLoadError()
		return model.CatalogSnapshot{}, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	ld.current.Store(&snap)
	metrics.UpdateCatalogSize(snap.VersionCount())
	return snap, nil
}

// ForceRefresh unconditionally fetches the catalog from the remote,
// bypassing the cache read. Mutually exclusive with itself; on failure
// the previously held catalog remains intact and the error is retryable.
func (ld *Loader) ForceRefresh(ctx context.Context) (model.CatalogSnapshot, error) {
	ld.forceMu.Lock()
	defer ld.forceMu.Unlock()

	snap, err := ld.fetcher.ForceRefreshCatalog(ctx)
	if err != nil {
		metrics.RecordCatalogRefreshError()
		return model.CatalogSnapshot{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	ld.current.Store(&snap)
	metrics.RecordCatalogRefresh()
	metrics.UpdateCatalogSize(snap.VersionCount())
	ld.logger.Info(ctx, "catalog force-refreshed",
		logger.Int("sets", len(snap.Sets)),
		logger.Int("badges", snap.VersionCount()),
	)
	return snap, nil
}

// Snapshot returns the last-good catalog, or nil before the first load.
func (ld *Loader) Snapshot() *model.CatalogSnapshot {
	return ld.current.Load()
}

// Badges flattens the last-good catalog into enriched badge stubs with
// metadata absent. Returns nil before the first successful load.
func (ld *Loader) Badges() []model.EnrichedBadge {
	snap := ld.current.Load()
	if snap == nil {
		return nil
	}
	return snap.Flatten()
}

// CacheAge exposes the cache collaborator's age reading for staleness
// decisions.
func (ld *Loader) CacheAge(ctx context.Context) (int, bool) {
	return ld.cache.CacheAge(ctx)
}
