package api

import (
	"net/http"
	"strings"

	"github.com/nerrad567/hearth-core/internal/voice"
)

type executeVoiceRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleListVoiceCommands(w http.ResponseWriter, r *http.Request) {
	cmds := s.svc.ListVoiceCommands(r.Context())
	if cmds == nil {
		cmds = []voice.Command{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"commands": cmds,
		"count":    len(cmds),
	})
}

func (s *Server) handleCreateVoiceCommand(w http.ResponseWriter, r *http.Request) {
	var cmd voice.Command
	if !decodeJSON(w, r, &cmd) {
		return
	}

	id, err := s.svc.AddVoiceCommand(r.Context(), &cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	for _, c := range s.svc.ListVoiceCommands(r.Context()) {
		if c.ID == id {
			writeJSON(w, http.StatusCreated, c)
			return
		}
	}
	writeServiceError(w, voice.ErrCommandNotFound)
}

// handleExecuteVoice matches an utterance. An unmatched utterance is still
// a 200; the outcome carries the fallback response.
func (s *Server) handleExecuteVoice(w http.ResponseWriter, r *http.Request) {
	var req executeVoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeBadRequest(w, "text is required")
		return
	}

	writeJSON(w, http.StatusOK, s.svc.ExecuteVoice(r.Context(), req.Text))
}
