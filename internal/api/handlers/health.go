package handlers

import (
	"epsg-map-service/internal/api/dto"
	"epsg-map-service/internal/session"
	"net/http"
)

type HealthHandler struct {
	Store *session.Store
}

// Health is a liveness check that also reports how many page sessions are running.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := dto.HealthResponse{Status: "ok", Sessions: h.Store.Len()}
	writeJSON(w, r, http.StatusOK, res)
}
