package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/hearth-core/internal/location"
)

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.svc.ListRooms(r.Context())
	if rooms == nil {
		rooms = []location.Room{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": rooms,
		"count": len(rooms),
	})
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var room location.Room
	if !decodeJSON(w, r, &room) {
		return
	}

	id, err := s.svc.AddRoom(r.Context(), &room)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	created, err := s.svc.GetRoom(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.svc.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	var patch location.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}

	room, err := s.svc.UpdateRoom(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}
