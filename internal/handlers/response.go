package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"docuchunk/internal/contextutil"
	"docuchunk/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SignalResponse is the body of every failed data operation.
type SignalResponse struct {
	Signal service.Signal `json:"signal"`
}

// statusForSignal maps a failure signal to its HTTP status.
func statusForSignal(signal service.Signal) int {
	switch signal {
	case service.SignalFileUploadSuccess, service.SignalFileProcessSuccess:
		return http.StatusOK
	case service.SignalProjectBusy:
		return http.StatusConflict
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// handleServiceError writes the signal carried by err. Errors without one are
// unexpected and answered with 500 and the operation's fallback signal.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, fallback service.Signal) {
	logger := contextutil.LoggerFromContext(ctx)

	signal := service.SignalOf(err)
	if signal == "" {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			writeJSON(w, ctx, http.StatusBadRequest, SignalResponse{Signal: fallback})
			return
		}
		logger.ErrorContext(ctx, "service error", "error", err)
		writeJSON(w, ctx, http.StatusInternalServerError, SignalResponse{Signal: fallback})
		return
	}

	writeJSON(w, ctx, statusForSignal(signal), SignalResponse{Signal: signal})
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, ctx context.Context, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
