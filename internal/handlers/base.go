package handlers

import (
	"net/http"
)

// WelcomeResponse identifies the running service.
type WelcomeResponse struct {
	AppName    string `json:"app_name"`
	AppVersion string `json:"app_version"`
}

// WelcomeHandler answers the API root.
type WelcomeHandler struct {
	appName    string
	appVersion string
}

// NewWelcomeHandler creates a new WelcomeHandler.
func NewWelcomeHandler(appName, appVersion string) *WelcomeHandler {
	return &WelcomeHandler{appName: appName, appVersion: appVersion}
}

// ServeHTTP handles GET /api/v1/.
func (h *WelcomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, WelcomeResponse{
		AppName:    h.appName,
		AppVersion: h.appVersion,
	})
}
