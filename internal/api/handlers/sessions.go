package handlers

import (
	"context"
	"encoding/json"
	"epsg-map-service/internal/api/dto"
	"epsg-map-service/internal/domain"
	"epsg-map-service/internal/platform/eventloop"
	"epsg-map-service/internal/session"
	"errors"
	"io"
	"log"
	"net/http"
)

type SessionHandler struct {
	Store *session.Store
}

// Create starts a page session from its construction parameters.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.CreateSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	params := session.PageParams{SRS: req.SRS, BBox: req.BBox, Hash: req.Hash}
	if req.Lon != nil {
		params.Lon = *req.Lon
	}
	if req.Lat != nil {
		params.Lat = *req.Lat
	}

	p, err := h.Store.Create(params)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	snap, err := p.Snapshot(r.Context())
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toSessionResponse(snap))
}

// Item serves GET and DELETE on one session.
func (h *SessionHandler) Item(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		p, err := h.Store.Get(id)
		if err != nil {
			writeSessionError(w, r, err)
			return
		}
		snap, err := p.Snapshot(r.Context())
		if err != nil {
			writeSessionError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toSessionResponse(snap))
	case http.MethodDelete:
		if err := h.Store.Delete(id); err != nil {
			writeSessionError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodDelete)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// Action applies one user interaction to a session and returns the new state.
func (h *SessionHandler) Action(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	p, err := h.Store.Get(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	var run func(ctx context.Context) (session.Snapshot, error)

	switch r.PathValue("action") {
	case "pan", "degrees":
		var req dto.PositionRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Lon == nil || req.Lat == nil {
			writeError(w, r, http.StatusBadRequest, "lon and lat are required")
			return
		}
		if r.PathValue("action") == "pan" {
			run = func(ctx context.Context) (session.Snapshot, error) { return p.Pan(ctx, *req.Lon, *req.Lat) }
		} else {
			run = func(ctx context.Context) (session.Snapshot, error) { return p.SetDegrees(ctx, *req.Lon, *req.Lat) }
		}
	case "eastnorth":
		var req dto.EastNorthRequest
		if !decodeBody(w, r, &req) {
			return
		}
		run = func(ctx context.Context) (session.Snapshot, error) {
			return p.SetEastNorth(ctx, req.Easting, req.Northing)
		}
	case "srs":
		var req dto.SRSRequest
		if !decodeBody(w, r, &req) {
			return
		}
		run = func(ctx context.Context) (session.Snapshot, error) { return p.SelectSRS(ctx, req.Code) }
	case "layer":
		var req dto.LayerRequest
		if !decodeBody(w, r, &req) {
			return
		}
		run = func(ctx context.Context) (session.Snapshot, error) { return p.SetLayer(ctx, req.Layer) }
	case "zoom":
		var req dto.ZoomRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Zoom == nil {
			writeError(w, r, http.StatusBadRequest, "zoom is required")
			return
		}
		run = func(ctx context.Context) (session.Snapshot, error) { return p.SetZoom(ctx, *req.Zoom) }
	case "geocode":
		var req dto.GeocodeRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.BBox == nil {
			writeError(w, r, http.StatusBadRequest, "bbox is required")
			return
		}
		run = func(ctx context.Context) (session.Snapshot, error) { return p.Geocode(ctx, *req.BBox) }
	default:
		writeError(w, r, http.StatusNotFound, "unknown action")
		return
	}

	snap, err := run(r.Context())
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toSessionResponse(snap))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrTooManySessions):
		writeError(w, r, http.StatusServiceUnavailable, "too many sessions")
	case errors.Is(err, session.ErrStaticPage):
		writeError(w, r, http.StatusConflict, "session has a fixed srs")
	case errors.Is(err, eventloop.ErrStopped):
		writeError(w, r, http.StatusGone, "session closed")
	default:
		log.Printf("session request failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func toSessionResponse(s session.Snapshot) dto.SessionResponse {
	res := dto.SessionResponse{
		ID:      s.ID,
		Dynamic: s.Dynamic,
		SRS: dto.SRSResponse{
			Code:          s.SRS.Code,
			Name:          s.SRS.Name,
			Title:         s.SRSTitle,
			Link:          s.SRSLink,
			DetailVisible: s.SRSVisible,
		},
		Position:  s.Position.CoordsToList(),
		EastNorth: dto.EastNorthResponse{Status: s.EastNorth.Status.String()},
		Zoom:      s.Zoom,
		Layer:     s.Layer,
		Hash:      s.Hash,
		CopyText:  s.CopyText,
		Accepted:  s.Accepted,
	}
	if s.DegreeFields != nil {
		res.DegreeFields = s.DegreeFields.CoordsToList()
	}
	if s.EastNorth.Status == domain.EastNorthReady {
		x, y := s.EastNorth.X, s.EastNorth.Y
		res.EastNorth.Easting = &x
		res.EastNorth.Northing = &y
	}
	return res
}
