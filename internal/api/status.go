package api

import "net/http"

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.GetStatus(r.Context()))
}

func (s *Server) handleRefreshStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.RefreshStatus(r.Context()))
}
