// ABOUTME: Development backend implementing the conference admin API over SQLite.
// ABOUTME: Mounts the generic resource routes for every registered app plus app-specific routes.

package mockapi

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/auth"
	apierrors "github.com/pyconkr/console/internal/errors"
	"github.com/pyconkr/console/internal/logging"
	"github.com/pyconkr/console/internal/store"
	"github.com/pyconkr/console/plugins/core"
)

// maxBodySize bounds request bodies; file fields travel as data URIs.
const maxBodySize = 16 << 20

// Options configures the development backend.
type Options struct {
	// RequireAuth rejects anonymous admin API calls with 401.
	RequireAuth bool
	// CSRFCookieName is read for request logging identity only.
	CSRFCookieName string
}

// Server is the development backend.
type Server struct {
	store      *store.Store
	logger     *zap.Logger
	opts       Options
	validators sync.Map // "app/resource" -> *compiled
}

// New returns the development backend handler.
func New(s *store.Store, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: s, logger: logger.Named("mockapi"), opts: opts}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware(s.opts.CSRFCookieName))
	r.Use(logging.Middleware(s.store, s.logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "찾을 수 없습니다.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, http.StatusMethodNotAllowed, apierrors.ErrMethodNotAllowed, "메서드 \""+r.Method+"\"는 허용되지 않습니다.")
	})

	r.Get("/healthz", s.health)

	r.Route("/v1/admin-api/{app}/{resource}", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Use(s.resolve)
		r.Get("/json-schema/", s.schemaDocument)
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Get("/{id}/", s.retrieve)
		r.Patch("/{id}/", s.update)
		r.Put("/{id}/", s.update)
		r.Delete("/{id}/", s.remove)
	})

	for _, p := range core.All() {
		if rp, ok := p.(core.RouteProvider); ok {
			rp.RegisterRoutes(r, s.store)
		}
	}
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	apps := map[string]core.HealthStatus{}
	for _, p := range core.All() {
		apps[p.Name()] = p.Health()
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "apps": apps})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.RequireAuth && auth.UserFromContext(r.Context()) == auth.Anonymous {
			apierrors.WriteError(w, http.StatusUnauthorized, apierrors.ErrNotAuthenticated, "자격 인증데이터(authentication credentials)가 제공되지 않았습니다.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
