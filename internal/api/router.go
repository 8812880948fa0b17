package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/", s.handleCreateDevice)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Patch("/", s.handleUpdateDevice)
				r.Delete("/", s.handleDeleteDevice)
				r.Post("/control", s.handleControlDevice)
			})
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", s.handleListRooms)
			r.Post("/", s.handleCreateRoom)
			r.Get("/{id}", s.handleGetRoom)
			r.Patch("/{id}", s.handleUpdateRoom)
		})

		r.Route("/automations", func(r chi.Router) {
			r.Get("/", s.handleListAutomations)
			r.Post("/", s.handleCreateAutomation)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetAutomation)
				r.Patch("/", s.handleUpdateAutomation)
				r.Post("/toggle", s.handleToggleAutomation)
				r.Post("/run", s.handleRunAutomation)
			})
		})

		r.Route("/voice", func(r chi.Router) {
			r.Get("/commands", s.handleListVoiceCommands)
			r.Post("/commands", s.handleCreateVoiceCommand)
			r.Post("/execute", s.handleExecuteVoice)
		})

		r.Get("/status", s.handleGetStatus)
		r.Post("/status/refresh", s.handleRefreshStatus)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status and scheduler counters.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"version":    s.version,
		"scheduler":  s.svc.SchedulerStats(),
		"ws_clients": s.hub.ClientCount(),
	})
}
