// Package refresh runs the background maintenance loops: stale-catalog
// refresh and periodic discovery of badges with missing metadata.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/emberview/crest/pkg/logger"
	"github.com/emberview/crest/pkg/metrics"
)

// Default refresher configuration constants.
const (
	defaultCheckInterval     = 30 * time.Minute
	defaultDiscoveryInterval = 15 * time.Minute
	defaultStaleAfterDays    = 3
)

// CatalogMaintainer exposes the catalog operations the refresher drives.
type CatalogMaintainer interface {
	// CacheAge reports the catalog cache age in whole days, false when
	// no catalog is cached.
	CacheAge(ctx context.Context) (int, bool)

	// ForceRefresh replaces the catalog from the remote.
	ForceRefresh(ctx context.Context) error
}

// Discoverer sweeps for badges with missing metadata and fetches them.
type Discoverer interface {
	DiscoverMissing(ctx context.Context) ([]string, error)
}

// Option applies a configuration option to the Refresher.
type Option func(*Refresher)

// WithCheckInterval sets how often catalog staleness is evaluated.
func WithCheckInterval(d time.Duration) Option {
	return func(r *Refresher) {
		if d > 0 {
			r.checkInterval = d
		}
	}
}

// WithDiscoveryInterval sets how often the missing-metadata sweep runs.
func WithDiscoveryInterval(d time.Duration) Option {
	return func(r *Refresher) {
		if d > 0 {
			r.discoveryInterval = d
		}
	}
}

// WithStaleAfterDays sets the cache age, in whole days, at which the
// catalog is considered stale.
func WithStaleAfterDays(days int) Option {
	return func(r *Refresher) {
		if days > 0 {
			r.staleAfterDays = days
		}
	}
}

// WithLogger sets the logger instance.
func WithLogger(log logger.Logger) Option {
	return func(r *Refresher) {
		r.logger = log
	}
}

// Refresher owns the two background tickers. Run blocks until the
// context is cancelled or Shutdown is called.
type Refresher struct {
	catalog    CatalogMaintainer
	discoverer Discoverer

	checkInterval     time.Duration
	discoveryInterval time.Duration
	staleAfterDays    int

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewRefresher creates a refresher with configuration options.
func NewRefresher(catalog CatalogMaintainer, discoverer Discoverer, opts ...Option) *Refresher {
	r := &Refresher{
		catalog:           catalog,
		discoverer:        discoverer,
		checkInterval:     defaultCheckInterval,
		discoveryInterval: defaultDiscoveryInterval,
		staleAfterDays:    defaultStaleAfterDays,
		shutdown:          make(chan struct{}),
		done:              make(chan struct{}),
		logger:            logger.Get().Named("refresh"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts both maintenance loops.
func (r *Refresher) Run(ctx context.Context) {
	defer close(r.done)

	staleTicker := time.NewTicker(r.checkInterval)
	defer staleTicker.Stop()
	discoveryTicker := time.NewTicker(r.discoveryInterval)
	defer discoveryTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.shutdown:
			return
		case <-staleTicker.C:
			r.checkStaleness(ctx)
		case <-discoveryTicker.C:
			r.sweep(ctx)
		}
	}
}

// Shutdown stops the loops and waits for Run to return.
func (r *Refresher) Shutdown(ctx context.Context) error {
	close(r.shutdown)
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "refresher shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// checkStaleness force-refreshes the catalog once its cache age crosses
// the staleness threshold. Refresh failures are logged and retried on
// the next tick; the loop never dies.
func (r *Refresher) checkStaleness(ctx context.Context) {
	age, ok := r.catalog.CacheAge(ctx)
	if !ok || age < r.staleAfterDays {
		return
	}
	r.logger.Info(ctx, "catalog stale, refreshing",
		logger.Int("age_days", age),
		logger.Int("stale_after_days", r.staleAfterDays),
	)
	if err := r.catalog.ForceRefresh(ctx); err != nil {
		metrics.RecordCatalogRefreshError()
		r.logger.Error(ctx, "stale catalog refresh failed", logger.Error(err))
	}
}

// sweep runs one missing-metadata discovery pass.
func (r *Refresher) sweep(ctx context.Context) {
	metrics.RecordDiscoverySweep()
	fetched, err := r.discoverer.DiscoverMissing(ctx)
	if err != nil {
		r.logger.Warn(ctx, "discovery sweep failed", logger.Error(err))
		return
	}
	if len(fetched) > 0 {
		r.logger.Info(ctx, "discovery sweep fetched metadata", logger.Int("count", len(fetched)))
	}
}
