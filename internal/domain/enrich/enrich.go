// Package enrich attaches per-badge metadata to the flattened catalog via
// a two-tier pipeline: one batch cache read for every key, then remote
// fetches for the misses in fixed-size concurrent batches.
package enrich

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/emberview/crest/internal/domain/model"
	"github.com/emberview/crest/pkg/logger"
	"github.com/emberview/crest/pkg/metrics"
)

// fetchBatchSize is the fixed width of a remote fetch batch. Every member
// of a batch fires concurrently; the next batch starts only once every
// member has resolved.
const fetchBatchSize = 10

// defaultMetadataTTL bounds how long a write-back stays fresh in the cache.
const defaultMetadataTTL = 24 * time.Hour

// CachedMetadata is one entry of the batch cache read: the metadata blob
// plus the origin position ordinal when the cache recorded one.
type CachedMetadata struct {
	Data     model.BadgeMetadata
	Position *int
}

// Cache is the metadata cache collaborator.
type Cache interface {
	// AllMetadata returns every cached metadata entry in a single batch
	// call, keyed by the metadata cache-key variant of the composite key.
	AllMetadata(ctx context.Context) (map[string]CachedMetadata, error)

	// PutMetadata writes one badge's metadata back with an expiry.
	PutMetadata(ctx context.Context, ref model.BadgeRef, meta model.BadgeMetadata, ttl time.Duration) error
}

// Fetcher is the remote metadata collaborator. force invalidates any
// prior cached value on the remote side.
type Fetcher interface {
	FetchMetadata(ctx context.Context, ref model.BadgeRef, force bool) (model.BadgeMetadata, error)
}

// MissingLister reports badges in the full catalog that currently carry
// zero cache entries.
type MissingLister interface {
	BadgesMissingMetadata(ctx context.Context) ([]model.BadgeRef, error)
}

// Enricher runs the two-tier enrichment pipeline over a shared Collection.
type Enricher struct {
	cache   Cache
	fetcher Fetcher
	missing MissingLister
	coll    *Collection

	ttl      time.Duration
	flights  singleflight.Group // collapses duplicate concurrent fetches per key
	onUpdate func(key string)

	logger logger.Logger
}

// Option applies a configuration option to the Enricher.
type Option func(*Enricher)

// WithTTL sets the cache write-back expiry.
func WithTTL(ttl time.Duration) Option {
	return func(e *Enricher) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger for the enricher.
func WithLogger(l logger.Logger) Option {
	return func(e *Enricher) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithOnUpdate registers a callback fired after each badge's metadata
// becomes visible. Used by callers that re-render on every state change.
func WithOnUpdate(fn func(key string)) Option {
	return func(e *Enricher) {
		e.onUpdate = fn
	}
}

// NewEnricher constructs an Enricher writing into coll.
func NewEnricher(cache Cache, fetcher Fetcher, missing MissingLister, coll *Collection, opts ...Option) *Enricher {
	e := &Enricher{
		cache:   cache,
		fetcher: fetcher,
		missing: missing,
		coll:    coll,
		ttl:     defaultMetadataTTL,
		logger:  logger.Get().Named("enrich"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich attaches metadata to the given badges. Without force it first
// performs one batch cache read for all keys at once and makes every hit
// visible immediately, before any remote call completes; remaining misses
// are fetched remotely. Under force every badge is treated as a miss. A
// failing batch cache read fails open: all badges proceed via remote
// fetch. Per-item fetch failures are isolated and leave that badge
// pending.
func (e *Enricher) Enrich(ctx context.Context, badges []model.EnrichedBadge, force bool) {
	refs := make([]model.BadgeRef, 0, len(badges))
	for _, b := range badges {
		refs = append(refs, model.BadgeRef{SetID: b.SetID, VersionID: b.Version.ID})
	}

	if !force {
		refs = e.applyCached(ctx, refs)
	}
	e.fetchBatches(ctx, refs, force)
}

// applyCached runs the single batch cache read, merges every hit into the
// collection, and returns the refs that still need a remote fetch.
func (e *Enricher) applyCached(ctx context.Context, refs []model.BadgeRef) []model.BadgeRef {
	cached, err := e.cache.AllMetadata(ctx)
	if err != nil {
		// Fail open: trade latency for correctness and fetch everything.
		e.logger.Warn(ctx, "batch metadata cache read failed; treating all badges as misses", logger.Error(err))
		metrics.RecordMetadataCacheFailOpen()
		return refs
	}

	misses := refs[:0]
	for _, ref := range refs {
		entry, ok := cached[model.MetadataCacheKey(ref.SetID, ref.VersionID)]
		if !ok {
			misses = append(misses, ref)
			continue
		}
		meta := entry.Data
		if meta.Position == nil {
			meta.Position = entry.Position
		}
		e.apply(ref.Key(), meta)
		metrics.RecordMetadataCacheHit()
	}
	return misses
}

// fetchBatches fetches refs in fixed-size batches. Members of a batch run
// concurrently; the batch boundary is a join point, so a single slow or
// failing item never blocks siblings or unboundedly widens concurrency.
func (e *Enricher) fetchBatches(ctx context.Context, refs []model.BadgeRef, force bool) {
	for start := 0; start < len(refs); start += fetchBatchSize {
		endIdx := min(start+fetchBatchSize, len(refs))

		var g errgroup.Group
		for _, ref := range refs[start:endIdx] {
			ref := ref
			g.Go(func() error {
				e.fetchOne(ctx, ref, force)
				return nil // failures are isolated, never batch-fatal
			})
		}
		_ = g.Wait()
		metrics.RecordEnrichmentBatch()

		if ctx.Err() != nil {
			return
		}
	}
}

// fetchOne fetches one badge's metadata, coalescing duplicate concurrent
// requests for the same key into a single shared flight, and writes the
// result through to the cache and the collection.
func (e *Enricher) fetchOne(ctx context.Context, ref model.BadgeRef, force bool) {
	key := ref.Key()
	started := time.Now()
	v, err, shared := e.flights.Do(key, func() (any, error) {
		meta, err := e.fetcher.FetchMetadata(ctx, ref, force)
		if err != nil {
			return nil, err
		}
		if cerr := e.cache.PutMetadata(ctx, ref, meta, e.ttl); cerr != nil {
			e.logger.Warn(ctx, "metadata cache write-back failed", logger.String("key", key), logger.Error(cerr))
		}
		return meta, nil
	})
	if shared {
		metrics.RecordMetadataFetchCoalesced()
	}
	if err != nil {
		// The badge stays pending; siblings are unaffected.
		metrics.RecordMetadataFetchError()
		e.logger.Debug(ctx, "metadata fetch failed", logger.String("key", key), logger.Error(err))
		return
	}
	metrics.RecordMetadataFetchLatency(float64(time.Since(started).Milliseconds()))
	e.apply(key, v.(model.BadgeMetadata))
}

// apply merges metadata for exactly one key and notifies the observer.
func (e *Enricher) apply(key string, meta model.BadgeMetadata) {
	e.coll.SetMetadata(key, meta)
	if e.onUpdate != nil {
		e.onUpdate(key)
	}
}

// DiscoverMissing asks the collaborator for badges with zero cache
// entries, fetches metadata for exactly that subset, and returns their
// composite keys. Safe to run concurrently with an Enrich pass over a
// different selection: both write per-key into the shared collection.
func (e *Enricher) DiscoverMissing(ctx context.Context) ([]string, error) {
	refs, err := e.missing.BadgesMissingMetadata(ctx)
	if err != nil {
		return nil, err
	}
	e.fetchBatches(ctx, refs, false)

	keys := make([]string, len(refs))
	for i, ref := range refs {
		keys[i] = ref.Key()
	}
	return keys, nil
}
