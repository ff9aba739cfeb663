package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"docuchunk/internal/contextutil"
	"docuchunk/internal/indexer"
	"docuchunk/internal/service"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	dataService        service.DataService
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(dataService service.DataService) *HealthHandler {
	return &HealthHandler{
		dataService:        dataService,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP checks the chunk store and lock backend.
// Returns 200 OK if healthy, 503 Service Unavailable otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	checks["store"] = "ok"
	checks["lock"] = "ok"

	if err := h.dataService.Health(checkCtx); err != nil {
		logger.WarnContext(ctx, "health check failed", "error", err)

		storeDown := errors.Is(err, indexer.ErrStoreUnavailable)
		lockDown := errors.Is(err, indexer.ErrLockUnavailable)
		if !storeDown && !lockDown {
			// Unclassified failures are charged to the store.
			storeDown = true
		}
		if storeDown {
			checks["store"] = "error"
			issues = append(issues, "store_unavailable")
		}
		if lockDown {
			checks["lock"] = "error"
			issues = append(issues, "lock_unavailable")
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, ctx, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}
