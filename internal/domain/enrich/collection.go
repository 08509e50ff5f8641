package enrich

import (
	"sync"

	"github.com/emberview/crest/internal/domain/model"
)

// Collection is the shared enriched-badge set that enrichment passes and
// the discovery sweep both write into. Metadata updates are narrow,
// per-key and last-write-wins: attaching metadata to one badge never
// touches sibling badges, and never clobbers the badge's non-metadata
// fields.
type Collection struct {
	mu    sync.RWMutex
	byKey map[string]*model.EnrichedBadge
	order []string // insertion order of the last Reset
}

// NewCollection builds an empty collection.
func NewCollection() *Collection {
	return &Collection{byKey: make(map[string]*model.EnrichedBadge)}
}

// Reset replaces the collection contents with fresh stubs in one step, so
// readers never observe a partially replaced catalog.
func (c *Collection) Reset(badges []model.EnrichedBadge) {
	byKey := make(map[string]*model.EnrichedBadge, len(badges))
	order := make([]string, 0, len(badges))
	for i := range badges {
		b := badges[i]
		k := b.Key()
		if _, dup := byKey[k]; dup {
			continue
		}
		byKey[k] = &b
		order = append(order, k)
	}

	c.mu.Lock()
	c.byKey = byKey
	c.order = order
	c.mu.Unlock()
}

// SetMetadata attaches metadata to exactly one badge. Unknown keys are
// ignored (the badge left the catalog since the fetch was scheduled).
func (c *Collection) SetMetadata(key string, meta model.BadgeMetadata) {
	c.mu.Lock()
	if b, ok := c.byKey[key]; ok {
		b.Metadata = &meta
	}
	c.mu.Unlock()
}

// Get returns a copy of the badge for key.
func (c *Collection) Get(key string) (model.EnrichedBadge, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.byKey[key]
	if !ok {
		return model.EnrichedBadge{}, false
	}
	return *b, true
}

// List returns copies of all badges in catalog order. Callers may observe
// progressively filling metadata across successive calls.
func (c *Collection) List() []model.EnrichedBadge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.EnrichedBadge, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, *c.byKey[k])
	}
	return out
}

// Len returns the number of badges held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}

// PendingCount returns how many badges still have metadata absent.
func (c *Collection) PendingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pending := 0
	for _, b := range c.byKey {
		if b.Metadata == nil {
			pending++
		}
	}
	return pending
}
