// Package adapthttp implements the Remote Weight API over HTTP.
package adapthttp

import (
	"net/http"

	"trackr/internal/app"

	"github.com/rs/zerolog"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	weight *app.WeightService
	auth   *app.AuthService
	oidc   IDTokenVerifier
	log    zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithOIDC accepts OIDC ID tokens as bearer credentials in addition to
// session tokens.
func WithOIDC(v IDTokenVerifier) Option {
	return func(s *Server) { s.oidc = v }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a Server wired to the given application services.
func New(ws *app.WeightService, as *app.AuthService, opts ...Option) *Server {
	s := &Server{weight: ws, auth: as, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/setup", s.handleSetupUser)

	api.Handle("/users/{user}", s.authMiddleware(http.HandlerFunc(s.handleUser)))
	api.Handle("/users/{user}/weight", s.authMiddleware(http.HandlerFunc(s.handleUserWeight)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return s.loggingMiddleware(withNoCache(root))
}
