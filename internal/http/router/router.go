package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sulytrack/internal/auth"
	"sulytrack/internal/http/handlers"
	obs "sulytrack/internal/http/middleware"
	"sulytrack/internal/http/middleware/ratelimit"
	"sulytrack/internal/logx"
	"sulytrack/internal/metrics"
)

const requestTimeout = 5 * time.Second

// Deps lists everything the router mounts. Metrics, Gatherer and RateLimit may be nil.
type Deps struct {
	Logger     logx.Logger
	Base       *handlers.Handlers
	Categories *handlers.CategoryHandler
	Drivers    *handlers.DriverHandler
	Accounts   *handlers.AccountHandler
	Map        *handlers.MapHandler
	Auth       *auth.Middleware
	RateLimit  *ratelimit.Middleware
	Metrics    *metrics.HTTP
	Gatherer   prometheus.Gatherer
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.Observability(d.Logger, d.Metrics))

	// the websocket outlives any request timeout
	r.Get("/ws/map", d.Map.Socket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/ping", d.Base.Ping)
		r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
		if d.Gatherer != nil {
			r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
		}

		r.Route("/api", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if d.RateLimit != nil {
					r.Use(d.RateLimit.Scope("auth"))
				}
				r.Post("/admin/login", d.Accounts.AdminLogin)
				r.Post("/driver/login", d.Accounts.DriverLogin)
				r.Post("/register", d.Accounts.Register)
			})

			r.Get("/categories", d.Categories.PublicList)
			r.Get("/icons", d.Categories.Icons)
			r.Get("/map/markers", d.Map.Markers)
			r.Get("/map/nearby", d.Map.Nearby)

			r.Route("/admin", func(r chi.Router) {
				r.Use(d.Auth.RequireRole(auth.RoleAdmin))

				r.Get("/categories", d.Categories.List)
				r.Post("/categories", d.Categories.Create)
				r.Patch("/categories/{id}", d.Categories.Update)
				r.Delete("/categories/{id}", d.Categories.Delete)

				r.Get("/drivers", d.Drivers.List)
				r.Post("/drivers", d.Drivers.Create)
				r.Get("/drivers/{id}", d.Drivers.Get)
				r.Patch("/drivers/{id}", d.Drivers.Update)
				r.Delete("/drivers/{id}", d.Drivers.Delete)
			})

			r.Route("/driver/me", func(r chi.Router) {
				r.Use(d.Auth.RequireRole(auth.RoleDriver))

				r.Get("/", d.Accounts.Me)
				r.Put("/availability", d.Accounts.SetAvailability)
			})
		})
	})

	r.NotFound(d.Base.NotFound)
	r.MethodNotAllowed(d.Base.MethodNotAllowed)

	return r
}
