package source

import "errors"

// Sentinel errors returned by the simulated backend.
var (
	// ErrMetadataUnavailable indicates the knowledge source has no
	// record for the requested badge.
	ErrMetadataUnavailable = errors.New("metadata unavailable")

	// ErrCatalogNotLoaded indicates a catalog-dependent call arrived
	// before any catalog fetch.
	ErrCatalogNotLoaded = errors.New("catalog not loaded")
)
