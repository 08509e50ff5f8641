package service

import (
	"fmt"

	"github.com/emberview/crest/internal/domain/catalog"
)

// ErrNotStarted indicates a read or refresh arrived before Start.
var ErrNotStarted = fmt.Errorf("%w: service not started", catalog.ErrCatalogUnavailable)
