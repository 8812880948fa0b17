package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/hearth-core/internal/automation"
)

// handleListAutomations returns all rules, or only enabled ones with
// ?active=true.
func (s *Server) handleListAutomations(w http.ResponseWriter, r *http.Request) {
	var rules []automation.Rule
	if r.URL.Query().Get("active") == "true" {
		rules = s.svc.ListActiveAutomations(r.Context())
	} else {
		rules = s.svc.ListAutomations(r.Context())
	}
	if rules == nil {
		rules = []automation.Rule{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"automations": rules,
		"count":       len(rules),
	})
}

func (s *Server) handleCreateAutomation(w http.ResponseWriter, r *http.Request) {
	var rule automation.Rule
	if !decodeJSON(w, r, &rule) {
		return
	}

	id, err := s.svc.AddAutomation(r.Context(), &rule)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	created, err := s.svc.GetAutomation(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetAutomation(w http.ResponseWriter, r *http.Request) {
	rule, err := s.svc.GetAutomation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleUpdateAutomation(w http.ResponseWriter, r *http.Request) {
	var patch automation.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}

	rule, err := s.svc.UpdateAutomation(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleToggleAutomation(w http.ResponseWriter, r *http.Request) {
	rule, err := s.svc.ToggleAutomation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// handleRunAutomation fires a rule immediately, ignoring its trigger.
// Disabled rules answer 409.
func (s *Server) handleRunAutomation(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.RunAutomation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
