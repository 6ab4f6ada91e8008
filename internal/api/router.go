package api

import (
	"epsg-map-service/internal/api/handlers"
	"epsg-map-service/internal/session"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(store *session.Store) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Store: store}
	sessionHandler := &handlers.SessionHandler{Store: store}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/sessions", sessionHandler.Create)
	mux.HandleFunc("/sessions/{id}", sessionHandler.Item)
	mux.HandleFunc("/sessions/{id}/{action}", sessionHandler.Action)

	return requestIDMiddleware(loggingMiddleware(mux))
}
