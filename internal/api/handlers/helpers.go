package handlers

import (
	"encoding/json"
	"epsg-map-service/internal/platform/obs"
	"log"
	"net/http"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		reqID, _ := r.Context().Value(obs.RequestIDKey).(string)
		log.Printf("encode failed: req_id=%s method=%s path=%s err=%v", reqID, r.Method, r.URL.Path, err)
	}
}

// writeError sends {"error": msg}. Internal details stay in the server log.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}
