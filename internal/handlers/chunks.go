package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"docuchunk/internal/contextutil"
	"docuchunk/internal/service"
)

// ChunksHandler handles GET /api/v1/data/chunks/{project_id}.
type ChunksHandler struct {
	dataService service.DataService
}

// NewChunksHandler creates a new ChunksHandler.
func NewChunksHandler(dataService service.DataService) *ChunksHandler {
	return &ChunksHandler{dataService: dataService}
}

// ServeHTTP lists the project's chunks in order.
func (h *ChunksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	resp, err := h.dataService.ListChunks(ctx, chi.URLParam(r, "project_id"))
	if err != nil {
		if service.SignalOf(err) != "" {
			handleServiceError(w, ctx, err, "")
			return
		}
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to list chunks", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list chunks")
		return
	}

	writeJSON(w, ctx, http.StatusOK, resp)
}
