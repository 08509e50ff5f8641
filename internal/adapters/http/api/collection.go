// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/emberview/crest/internal/domain/catalog"
	"github.com/emberview/crest/internal/domain/types"
)

// CollectionDependencies defines the interface for collection reads.
type CollectionDependencies interface {
	CollectionSummary(ctx context.Context, userID string) (types.CollectionSummary, error)
}

// CollectionHandler handles viewer collection requests.
type CollectionHandler struct {
	deps CollectionDependencies
}

// NewCollectionHandler creates a new collection handler.
func NewCollectionHandler(deps CollectionDependencies) *CollectionHandler {
	return &CollectionHandler{deps: deps}
}

// HandleGetCollection handles GET /collection/{user_id} requests.
func (h *CollectionHandler) HandleGetCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/collection/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_user_id", ErrBadRequest)
		return
	}
	summary, err := h.deps.CollectionSummary(r.Context(), userID)
	if err != nil {
		if errors.Is(err, catalog.ErrCatalogUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "catalog_unavailable", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
