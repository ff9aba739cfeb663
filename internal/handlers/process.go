package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docuchunk/internal/contextutil"
	"docuchunk/internal/service"
)

// ProcessRequest represents the HTTP request payload for processing.
type ProcessRequest struct {
	FileID      string   `json:"file_id"`
	ChunkSize   int      `json:"chunk_size"`
	OverlapSize int      `json:"overlap_size"`
	DoReset     FlagBool `json:"do_reset"`
}

// FlagBool decodes from either a JSON boolean or the integers 0 and 1.
type FlagBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlagBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true", "1":
		*b = true
	case "false", "0", "null":
		*b = false
	default:
		return fmt.Errorf("invalid flag value %s", data)
	}
	return nil
}

// ProcessHandler handles POST /api/v1/data/process/{project_id}.
type ProcessHandler struct {
	dataService service.DataService
}

// NewProcessHandler creates a new ProcessHandler.
func NewProcessHandler(dataService service.DataService) *ProcessHandler {
	return &ProcessHandler{dataService: dataService}
}

// ServeHTTP decodes the processing request and runs it.
func (h *ProcessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.dataService.Process(ctx, service.ProcessRequest{
		ProjectID:   chi.URLParam(r, "project_id"),
		FileID:      req.FileID,
		ChunkSize:   req.ChunkSize,
		OverlapSize: req.OverlapSize,
		DoReset:     bool(req.DoReset),
	})
	if err != nil {
		handleServiceError(w, ctx, err, service.SignalFileProcessFailed)
		return
	}

	writeJSON(w, ctx, http.StatusOK, resp)
}
