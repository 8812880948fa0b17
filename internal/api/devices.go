package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/hearth-core/internal/device"
)

// controlRequest is the body of POST /devices/{id}/control.
type controlRequest struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// handleListDevices returns all devices, optionally filtered by
// ?room_id= or ?type=.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var devices []device.Device
	switch {
	case q.Get("room_id") != "":
		devices = s.svc.ListDevicesByRoom(ctx, q.Get("room_id"))
	case q.Get("type") != "":
		devices = s.svc.ListDevicesByType(ctx, device.DeviceType(q.Get("type")))
	default:
		devices = s.svc.ListDevices(ctx)
	}
	if devices == nil {
		devices = []device.Device{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var d device.Device
	if !decodeJSON(w, r, &d) {
		return
	}

	id, err := s.svc.AddDevice(r.Context(), &d)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	created, err := s.svc.GetDevice(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.GetDevice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	var patch device.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}

	d, err := s.svc.UpdateDevice(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemoveDevice(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleControlDevice applies an action and returns the updated device.
func (s *Server) handleControlDevice(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Action == "" {
		writeBadRequest(w, "action is required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.svc.Control(r.Context(), id, req.Action, req.Parameters); err != nil {
		writeServiceError(w, err)
		return
	}
	d, err := s.svc.GetDevice(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
