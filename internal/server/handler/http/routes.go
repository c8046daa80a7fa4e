package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/atinyakov/PlantCare/internal/apperr"
	"github.com/atinyakov/PlantCare/internal/metrics"
	"github.com/atinyakov/PlantCare/internal/middleware"
)

// RouterConfig carries the cross-cutting collaborators of the router.
type RouterConfig struct {
	// Tokens verifies bearer access tokens.
	Tokens middleware.TokenParser
	// Users rejects tokens of deleted or disabled accounts. Optional.
	Users middleware.UserChecker
	// ServiceToken guards /api/service/. Empty disables those routes.
	ServiceToken string
	// CORSOrigins lists allowed browser origins. Empty disables CORS.
	CORSOrigins []string
	// AuthLimiter throttles the credential endpoints. Optional.
	AuthLimiter *middleware.RateLimiter
	// Health reports storage readiness for /healthz. Optional.
	Health func(ctx context.Context) error
}

// NewRouter constructs and returns an HTTP handler that serves
// the plant care API.
//
// Routes:
//
//	GET    /healthz                          liveness and storage readiness
//	GET    /metrics                          Prometheus metrics
//	POST   /api/auth/register/               auth.Register
//	POST   /api/auth/login/                  auth.Login
//	POST   /api/auth/refresh/                auth.Refresh
//	POST   /api/auth/logout/                 auth.Logout (bearer)
//	GET    /api/users/me/                    auth.Me (bearer, also PATCH and DELETE)
//	GET    /api/plants/                      plants.List (bearer, also POST)
//	GET    /api/plants/{id}/                 plants.Get (bearer, also PATCH and DELETE)
//	GET    /api/plants/{id}/logs/            logs.ListForPlant (bearer)
//	GET    /api/plants/{id}/summary/         plants.Summary (bearer)
//	GET    /api/logs/                        logs.List (bearer, also POST)
//	GET    /api/logs/{id}/                   logs.Get (bearer, also PATCH and DELETE)
//	GET    /api/care-templates/              careH.List
//	GET    /api/care-templates/{category}/   careH.Get
//	GET    /api/service/users/               auth.ServiceUsers (service token)
//
// Middleware chain (applied in order):
//  1. Recoverer turns panics into 500 responses
//  2. InstrumentHandler records Prometheus request metrics
//  3. WithRequestLogging logs every request
//  4. CORS, when origins are configured
//  5. AllowContentType("application/json") on requests with a body
func NewRouter(
	auth *AuthHandler,
	plants *PlantHandler,
	logs *LogHandler,
	careH *CareHandler,
	cfg RouterConfig,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.WithRequestLogging(logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				writeError(w, apperr.Unavailable("storage unavailable", err))
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	bearer := middleware.BearerAuth(cfg.Tokens, cfg.Users)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if cfg.AuthLimiter != nil {
					r.Use(cfg.AuthLimiter.Handler)
				}
				r.Post("/register/", auth.Register)
				r.Post("/login/", auth.Login)
				r.Post("/refresh/", auth.Refresh)
			})
			r.With(bearer).Post("/logout/", auth.Logout)
		})

		r.Route("/care-templates", func(r chi.Router) {
			r.Get("/", careH.List)
			r.Get("/{category}/", careH.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(bearer)

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", auth.Me)
				r.Patch("/", auth.UpdateMe)
				r.Delete("/", auth.DeleteMe)
			})

			r.Route("/plants", func(r chi.Router) {
				r.Get("/", plants.List)
				r.Post("/", plants.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", plants.Get)
					r.Patch("/", plants.Update)
					r.Delete("/", plants.Delete)
					r.Get("/logs/", logs.ListForPlant)
					r.Get("/summary/", plants.Summary)
				})
			})

			r.Route("/logs", func(r chi.Router) {
				r.Get("/", logs.List)
				r.Post("/", logs.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", logs.Get)
					r.Patch("/", logs.Update)
					r.Delete("/", logs.Delete)
				})
			})
		})

		r.With(middleware.ServiceToken(cfg.ServiceToken)).Get("/service/users/", auth.ServiceUsers)
	})

	return r
}
