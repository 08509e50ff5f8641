// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/emberview/crest/internal/domain/catalog"
	"github.com/emberview/crest/internal/domain/ranking"
	"github.com/emberview/crest/internal/domain/types"
)

// CatalogDependencies defines the interface for catalog reads.
type CatalogDependencies interface {
	Catalog(ctx context.Context, policy ranking.Policy, limit int) ([]types.CatalogEntry, error)
}

// CatalogHandler handles catalog view requests.
type CatalogHandler struct {
	deps     CatalogDependencies
	maxLimit int
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies, maxLimit int) *CatalogHandler {
	return &CatalogHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetCatalog handles GET /catalog?sort=POLICY&limit=N requests.
// An absent sort parameter falls back to the default ordering policy;
// an unknown one is a client error.
func (h *CatalogHandler) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	policy, err := ranking.ParsePolicy(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_sort", err)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "bad_limit", ErrBadRequest)
			return
		}
		if limit > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
	}

	entries, err := h.deps.Catalog(r.Context(), policy, limit)
	if err != nil {
		if errors.Is(err, catalog.ErrCatalogUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "catalog_unavailable", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
