// Package server exposes the execution engine over HTTP: tool and
// agent invocation plus specification management.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/effective-security/xlog"
	"github.com/nirb28/dsp-adk2/pkg/agent"
	"github.com/nirb28/dsp-adk2/pkg/configstore"
	"github.com/nirb28/dsp-adk2/pkg/dispatch"
	"github.com/nirb28/dsp-adk2/pkg/runstore"
	"github.com/nirb28/dsp-adk2/pkg/spec"
)

var logger = xlog.NewPackageLogger("github.com/nirb28/dsp-adk2", "server")

// Server is the engine HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
}

// Config holds the dependencies and settings for creating a Server.
type Config struct {
	Registry   *spec.Registry
	Dispatcher *dispatch.Dispatcher
	Runner     *agent.Runner

	// Store persists specification changes made through the admin
	// endpoints. Nil disables persistence; changes live in the
	// registry only.
	Store *configstore.Store

	// Runs records completed agent runs for the history endpoints.
	// Nil disables run history.
	Runs runstore.RunStore

	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Version      string
}

// New creates a new HTTP server with all routes configured.
func New(cfg Config) *Server {
	h := &handlers{
		registry:   cfg.Registry,
		dispatcher: cfg.Dispatcher,
		runner:     cfg.Runner,
		store:      cfg.Store,
		runs:       cfg.Runs,
		version:    cfg.Version,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.handleHealth)

	mux.HandleFunc("POST /v1/execute/tool", h.handleExecuteTool)
	mux.HandleFunc("POST /v1/execute/agent", h.handleExecuteAgent)

	mux.HandleFunc("GET /v1/tools", h.handleListTools)
	mux.HandleFunc("GET /v1/tools/{name}", h.handleGetTool)
	mux.HandleFunc("PUT /v1/tools/{name}", h.handlePutTool)
	mux.HandleFunc("DELETE /v1/tools/{name}", h.handleDeleteTool)

	mux.HandleFunc("GET /v1/runs/{agent}", h.handleListRuns)
	mux.HandleFunc("DELETE /v1/runs/{agent}", h.handleResetRuns)

	mux.HandleFunc("GET /v1/agents", h.handleListAgents)
	mux.HandleFunc("GET /v1/agents/{name}", h.handleGetAgent)
	mux.HandleFunc("PUT /v1/agents/{name}", h.handlePutAgent)
	mux.HandleFunc("DELETE /v1/agents/{name}", h.handleDeleteAgent)

	var handler http.Handler = mux
	handler = recoveryMiddleware(handler)
	handler = loggingMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler: handler,
	}
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	logger.KV(xlog.INFO, "status", "http_server_starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.KV(xlog.INFO, "status", "http_server_shutting_down")
	return s.httpServer.Shutdown(ctx)
}
