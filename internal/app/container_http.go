package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"sulytrack/internal/auth"
	"sulytrack/internal/config"
	"sulytrack/internal/http/handlers"
	"sulytrack/internal/http/middleware/ratelimit"
	"sulytrack/internal/http/pprofserver"
	"sulytrack/internal/http/router"
	"sulytrack/internal/logx"
	"sulytrack/internal/metrics"
	"sulytrack/internal/service/category"
	"sulytrack/internal/service/driver"
	"sulytrack/internal/service/livemap"
)

type routerIn struct {
	dig.In

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

func newRouter(in routerIn) http.Handler {
	return router.New(router.Deps{
		Logger:     in.Logger,
		Base:       in.Base,
		Categories: in.Categories,
		Drivers:    in.Drivers,
		Accounts:   in.Accounts,
		Map:        in.Map,
		Auth:       in.Auth,
		RateLimit:  in.RateLimit,
		Metrics:    in.Metrics,
		Gatherer:   in.Gatherer,
	})
}

// newServer ties request contexts to ctx so open websockets end on shutdown.
func newServer(ctx context.Context, cfg *config.Config, mux http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

type pprofOut struct {
	dig.Out

	Server *http.Server `name:"pprof_server"`
}

func newPprofServer(cfg *config.Config) pprofOut {
	return pprofOut{Server: pprofserver.New(cfg.Pprof)}
}

// newRateLimiter builds the per-IP limiter guarding login and registration.
func newRateLimiter(cfg *config.Config, logger logx.Logger) ratelimit.Limiter {
	rl := cfg.RateLimit
	if !rl.Enabled {
		logger.Warn("rate limiting disabled for auth endpoints")
		return ratelimit.NopLimiter{}
	}
	return ratelimit.NewTokenBucketLimiter(ratelimit.RealClock{}, ratelimit.Config{
		Rate:       rl.Rate,
		Burst:      rl.Burst,
		TTL:        rl.TTL,
		MaxBuckets: rl.MaxBuckets,
	})
}

type rateLimitIn struct {
	dig.In

	Logger  logx.Logger
	Counter prometheus.Counter `name:"rate_limit_exceeded_total"`
	Limiter ratelimit.Limiter
}

func newRateLimitMiddleware(in rateLimitIn) *ratelimit.Middleware {
	return ratelimit.New(in.Logger, in.Counter, in.Limiter)
}

func registerHTTP(container *dig.Container) error {
	return provideAll(container,
		handlers.New,
		func(l logx.Logger, s *category.Service) *handlers.CategoryHandler {
			return handlers.NewCategoryHandler(l, s)
		},
		func(l logx.Logger, s *driver.Service) *handlers.DriverHandler {
			return handlers.NewDriverHandler(l, s)
		},
		func(l logx.Logger, s *driver.Service, admins auth.AdminAuthenticator, tokens *auth.Issuer) *handlers.AccountHandler {
			return handlers.NewAccountHandler(l, s, admins, tokens)
		},
		func(l logx.Logger, hub *livemap.Hub) *handlers.MapHandler {
			return handlers.NewMapHandler(l, hub)
		},
		newRateLimiter,
		newRateLimitMiddleware,
		newRouter,
		newServer,
		newPprofServer,
	)
}
