package catalog

import "errors"

// Sentinel kinds for catalog errors. Both are retryable conditions.
var (
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrRefreshFailed      = errors.New("catalog refresh failed")
)
