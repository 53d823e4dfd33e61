package http

import (
	"net/http"
	"time"

	"user-management/internal/domain"
	"user-management/internal/dto"
	"user-management/internal/netutil"
	obsmw "user-management/internal/observability/middleware"
	"user-management/internal/service"
	authmw "user-management/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	CORSOrigins    []string
	TrustProxy     bool
	RequestTimeout time.Duration
}

type Handler struct {
	auth     service.AuthService
	gate     service.AuthGate
	profiles service.ProfileService
	paths    service.LearningPathService
	opts     Options
}

func NewRouter(auth service.AuthService, gate service.AuthGate, profiles service.ProfileService, paths service.LearningPathService, opts Options) http.Handler {
	h := &Handler{auth: auth, gate: gate, profiles: profiles, paths: paths, opts: opts}

	r := chi.NewRouter()
	r.Use(obsmw.WithRequestAndTrace)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(obsmw.WithMetrics)
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", obsmw.HeaderRequestID, obsmw.HeaderTraceID},
		ExposedHeaders:   []string{obsmw.HeaderRequestID, obsmw.HeaderTraceID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, domain.NotFoundError("NOT_FOUND", "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, dto.ErrorResponse{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := authmw.RequireAuth(gate, writeError)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", h.logout)
				r.Get("/sessions", h.listSessions)
				r.Delete("/sessions", h.logoutEverywhere)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", h.getProfile)
			r.Put("/me/profile", h.updateProfile)
			r.Get("/me/dashboard", h.dashboard)
			r.Get("/{id}", h.getProfile)
			r.Put("/{id}/profile", h.updateProfile)
			r.Get("/{id}/dashboard", h.dashboard)
		})

		r.Route("/learning-paths", func(r chi.Router) {
			r.With(authmw.OptionalAuth(gate)).Get("/public/list", h.listPublicPaths)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", h.listPaths)
				r.Get("/progress", h.progress)
				r.Get("/{pathId}", h.getPath)
				r.Patch("/{pathId}/courses/{courseId}", h.updateCourseProgress)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(authmw.RequireRole(gate, writeError, domain.UserTypeAdmin))
			r.Post("/sessions/sweep", h.sweepSessions)
			r.Delete("/users/{id}/sessions", h.revokeUserSessions)
		})
	})

	return r
}

func (h *Handler) clientIP(r *http.Request) string {
	return netutil.ClientIP(r, h.opts.TrustProxy)
}
