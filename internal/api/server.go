package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/hearth-core/internal/automation"
	"github.com/nerrad567/hearth-core/internal/device"
	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/infrastructure/logging"
	"github.com/nerrad567/hearth-core/internal/smarthome"
	"github.com/nerrad567/hearth-core/internal/status"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	Service *smarthome.Service
	Version string
}

// Server is the HTTP API server for Hearth.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg     config.APIConfig
	logger  *logging.Logger
	svc     *smarthome.Service
	version string
	server  *http.Server
	hub     *Hub
	cancel  context.CancelFunc // cancels the hub on Close()
}

// New creates a new API server with the given dependencies.
//
// The hub is created and wired to the service immediately so events are
// streamed from the moment the service starts mutating state. The listener
// is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, service)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Service == nil {
		return nil, fmt.Errorf("smarthome service is required")
	}

	s := &Server{
		cfg:     deps.Config,
		logger:  deps.Logger,
		svc:     deps.Service,
		version: deps.Version,
		hub:     NewHub(deps.Config.WebSocket, deps.Logger),
	}
	s.wireEvents()
	return s, nil
}

// wireEvents forwards service events to WebSocket subscribers.
func (s *Server) wireEvents() {
	s.svc.OnDeviceEvent(func(_ context.Context, evt device.Event) {
		s.hub.Broadcast(ChannelDevice, deviceEventPayload(evt))
	})
	s.svc.OnAutomationFired(func(_ context.Context, _ automation.Rule, res automation.FireResult) {
		s.hub.Broadcast(ChannelAutomation, res)
	})
	s.svc.AddStatusSink(hubSink{hub: s.hub})
}

// hubSink is a status.Sink that broadcasts snapshots.
type hubSink struct {
	hub *Hub
}

func (h hubSink) Publish(_ context.Context, snap status.Snapshot) {
	h.hub.Broadcast(ChannelStatus, snap)
}

// Handler returns the router. Start serves it; tests call it directly.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
//
// Parameters:
//   - ctx: Parent context for the hub (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
