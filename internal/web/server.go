// Package web provides the HTTP server and handlers for the spa directory
// API.
package web

import (
	"context"
	"net/http"
	"time"

	"spa-directory/internal/auth"
	"spa-directory/internal/catalog"
	"spa-directory/internal/config"
	"spa-directory/internal/notify"
	mw "spa-directory/internal/web/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Server is the HTTP server for the directory API.
type Server struct {
	cfg      *config.Config
	catalog  *catalog.Store
	auth     *auth.Service
	notifier *notify.Notifier
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server instance wired to the given collaborators.
func NewServer(cfg *config.Config, store *catalog.Store, authSvc *auth.Service, notifier *notify.Notifier) *Server {
	s := &Server{
		cfg:      cfg,
		catalog:  store,
		auth:     authSvc,
		notifier: notifier,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(render.SetContentType(render.ContentTypeJSON))

	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Public catalog endpoints: permissive by contract, never 4xx on
		// malformed query values.
		r.Get("/filters", s.handleFilters)
		r.Get("/spas", s.handleListSpas)
		r.Get("/spas/{id}", s.handleSpaDetail)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)

			r.Group(func(r chi.Router) {
				r.Use(mw.BearerAuth(s.auth.Verify))
				r.Post("/logout", s.handleLogout)
				r.Get("/me", s.handleMe)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.BearerAuth(s.auth.Verify))

			r.Post("/checkout", s.handleCheckout)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(auth.RoleAdmin))
				r.Get("/users", s.handleListUsers)
				r.Post("/admin/reload", s.handleReloadCatalog)
			})
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// handleHealth answers a plain readiness message at the root.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "Bali Spa Directory API is running. Use /api/filters or /api/spas.")
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
