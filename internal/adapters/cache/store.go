// Package cache provides the in-memory store backing the engine's catalog
// and metadata cache collaborators.
//
// Metadata entries are sharded by key hash so the single batch read and
// the concurrent write-backs from enrichment batches contend per shard,
// not globally. Expired entries read as misses.
package cache

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/emberview/crest/internal/domain/enrich"
	"github.com/emberview/crest/internal/domain/model"
)

// Default store configuration constants.
const (
	defaultShardCount = 8
	hoursPerDay       = 24
)

// entry is one cached metadata record with its expiry.
type entry struct {
	meta      model.BadgeMetadata
	position  *int
	expiresAt time.Time
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// Store implements the catalog.Cache and enrich.Cache collaborators.
type Store struct {
	shards     []*shard
	shardCount int
	clock      func() time.Time

	catalogMu sync.RWMutex
	catalog   *model.CatalogSnapshot
	catalogAt time.Time
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithShardCount sets the number of metadata shards.
func WithShardCount(count int) Option {
	return func(s *Store) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithClock injects a time source, used by expiry tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewStore creates an empty store with configuration options.
func NewStore(opts ...Option) *Store {
	s := &Store{
		shardCount: defaultShardCount,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]entry)}
	}
	return s
}

func (s *Store) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(s.shardCount)]
}

// CachedCatalog returns the cached snapshot, or nil on a miss.
func (s *Store) CachedCatalog(_ context.Context) (*model.CatalogSnapshot, error) {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	return s.catalog, nil
}

// SetCatalog replaces the cached catalog in one step.
func (s *Store) SetCatalog(_ context.Context, snap model.CatalogSnapshot) {
	s.catalogMu.Lock()
	s.catalog = &snap
	s.catalogAt = s.clock()
	s.catalogMu.Unlock()
}

// CacheAge reports the age of the cached catalog in whole days.
func (s *Store) CacheAge(_ context.Context) (int, bool) {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	if s.catalog == nil {
		return 0, false
	}
	return int(s.clock().Sub(s.catalogAt).Hours() / hoursPerDay), true
}

// AllMetadata returns every unexpired metadata entry in a single batch
// call, keyed by the metadata cache-key variant of the composite key.
func (s *Store) AllMetadata(_ context.Context) (map[string]enrich.CachedMetadata, error) {
	now := s.clock()
	out := make(map[string]enrich.CachedMetadata)
	for _, sh := range s.shards {
		sh.mu.RLock()
		for k, e := range sh.entries {
			if now.After(e.expiresAt) {
				continue
			}
			out[k] = enrich.CachedMetadata{Data: e.meta, Position: e.position}
		}
		sh.mu.RUnlock()
	}
	return out, nil
}

// PutMetadata writes one badge's metadata with an expiry. Writes are
// per-key last-write-wins and never touch sibling entries.
func (s *Store) PutMetadata(_ context.Context, ref model.BadgeRef, meta model.BadgeMetadata, ttl time.Duration) error {
	key := model.MetadataCacheKey(ref.SetID, ref.VersionID)
	sh := s.shardFor(key)
	sh.mu.Lock()
	sh.entries[key] = entry{meta: meta, position: meta.Position, expiresAt: s.clock().Add(ttl)}
	sh.mu.Unlock()
	return nil
}

// HasMetadata reports whether an unexpired entry exists for the badge.
func (s *Store) HasMetadata(ref model.BadgeRef) bool {
	key := model.MetadataCacheKey(ref.SetID, ref.VersionID)
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := sh.entries[key]
	return ok && !s.clock().After(e.expiresAt)
}

// Invalidate drops one badge's entry, forcing the next read to miss.
func (s *Store) Invalidate(ref model.BadgeRef) {
	key := model.MetadataCacheKey(ref.SetID, ref.VersionID)
	sh := s.shardFor(key)
	sh.mu.Lock()
	delete(sh.entries, key)
	sh.mu.Unlock()
}

// MetadataCount returns the number of unexpired entries across shards.
func (s *Store) MetadataCount() int {
	now := s.clock()
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, e := range sh.entries {
			if !now.After(e.expiresAt) {
				n++
			}
		}
		sh.mu.RUnlock()
	}
	return n
}
