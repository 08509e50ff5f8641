// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// RefreshDependencies defines the interface for catalog refresh.
type RefreshDependencies interface {
	Refresh(ctx context.Context) error
}

// RefreshHandler handles forced catalog refresh requests.
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

type refreshResponse struct {
	Status string `json:"status"`
}

// HandlePostRefresh handles POST /refresh requests. A failed refresh is
// retryable: the previously loaded catalog stays in service, so the
// client gets a 503 rather than a terminal error.
func (h *RefreshHandler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.Refresh(r.Context()); err != nil {
		w.Header().Set("Retry-After", "30")
		writeError(w, http.StatusServiceUnavailable, "refresh_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{Status: "refreshed"})
}
