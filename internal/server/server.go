package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server routes HTTP traffic to the MCP streamable handler.
type Server struct {
	mcp     http.Handler
	apiKey  string
	version string
	log     *slog.Logger
	router  chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// leaves /mcp open; tsnet deployments gate access at the network layer
// instead.
func New(mcpHandler http.Handler, apiKey, version string, log *slog.Logger) *Server {
	s := &Server{
		mcp:     mcpHandler,
		apiKey:  apiKey,
		version: version,
		log:     log,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)

	// MCP endpoint (API key required when configured)
	s.router.Route("/mcp", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}
		r.Mount("/", s.mcp)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
