package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"sulytrack/internal/auth"
	"sulytrack/internal/changefeed"
	"sulytrack/internal/config"
	"sulytrack/internal/domain"
	"sulytrack/internal/events"
	"sulytrack/internal/geo"
	"sulytrack/internal/logx"
	"sulytrack/internal/metrics"
	"sulytrack/internal/repository"
	"sulytrack/internal/service/category"
	"sulytrack/internal/service/driver"
	"sulytrack/internal/service/livemap"
	"sulytrack/internal/transport/kafka"
)

type metricsOut struct {
	dig.Out

	HTTP        *metrics.HTTP
	RateLimited prometheus.Counter     `name:"rate_limit_exceeded_total"`
	Mutations   *prometheus.CounterVec `name:"store_mutations_total"`
	Changefeed  *prometheus.CounterVec `name:"changefeed_notifications_total"`
	MapSessions prometheus.Gauge       `name:"map_sessions_active"`
	Gatherer    prometheus.Gatherer
}

// provideMetrics registers every collector on a private registry, so tests
// and several containers in one process never collide on the default one.
func provideMetrics() (metricsOut, error) {
	out := metricsOut{
		HTTP:        metrics.NewHTTP(),
		RateLimited: metrics.NewRateLimitExceededTotal(),
		Mutations:   metrics.NewStoreMutationsTotal(),
		Changefeed:  metrics.NewChangefeedNotificationsTotal(),
		MapSessions: metrics.NewMapSessionsActive(),
	}
	cs := append(out.HTTP.Collectors(), out.RateLimited, out.Mutations, out.Changefeed, out.MapSessions)
	reg, err := metrics.NewRegistry(cs...)
	if err != nil {
		return metricsOut{}, fmt.Errorf("register metrics: %w", err)
	}
	out.Gatherer = reg
	return out, nil
}

func registerMetrics(container *dig.Container) error {
	return provideAll(container, provideMetrics)
}

// newEventProducer returns nil when no kafka brokers are configured.
func newEventProducer(cfg *config.Config, logger logx.Logger) (*kafka.Producer, error) {
	p, err := kafka.NewProducer(logger, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	if p == nil {
		logger.Info("kafka not configured, domain events are dropped")
	}
	return p, nil
}

func newEventPublisher(p *kafka.Producer) events.Publisher {
	if p == nil {
		return events.Nop{}
	}
	return p
}

type storesIn struct {
	dig.In

	Config     *config.Config
	Logger     logx.Logger
	Publisher  events.Publisher
	Hasher     auth.PasswordHasher
	Mutations  *prometheus.CounterVec `name:"store_mutations_total"`
	Categories *repository.CategoryRepo
	Drivers    *repository.DriverRepo
}

func newCategoryService(in storesIn) *category.Service {
	return category.NewService(in.Categories, in.Publisher, in.Mutations, in.Logger, 0)
}

func newDriverService(in storesIn) *driver.Service {
	return driver.NewService(driver.Deps{
		Repo:       in.Drivers,
		Categories: in.Categories,
		Hasher:     in.Hasher,
		Publisher:  in.Publisher,
		Mutations:  in.Mutations,
		Logger:     in.Logger,
		Center:     mapCenter(in.Config),
	})
}

func mapCenter(cfg *config.Config) domain.Point {
	return domain.Point{Lng: cfg.Map.CenterLng, Lat: cfg.Map.CenterLat}
}

func newIssuer(cfg *config.Config) (*auth.Issuer, error) {
	return auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

func newAdminAuthenticator(cfg *config.Config, hasher auth.PasswordHasher, logger logx.Logger) auth.AdminAuthenticator {
	if cfg.Admin.Email == "" || cfg.Admin.PasswordHash == "" {
		logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD_HASH not set, admin login is disabled")
	}
	return auth.NewStaticAdmin(cfg.Admin.Email, cfg.Admin.PasswordHash, hasher)
}

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		newEventProducer,
		newEventPublisher,
		func() auth.PasswordHasher { return auth.NewBcrypt() },
		newCategoryService,
		newDriverService,
		newIssuer,
		newAdminAuthenticator,
		auth.NewMiddleware,
	)
}

// newRedisClient returns nil when REDIS_ADDR is empty.
func newRedisClient(ctx context.Context, cfg *config.Config, logger logx.Logger) (*goredis.Client, error) {
	if !cfg.Redis.Enabled() {
		logger.Info("redis not configured, nearby search scans the in-memory snapshot")
		return nil, nil
	}
	return geo.Connect(ctx, &goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, 10, logger)
}

func newGeoIndex(rdb *goredis.Client) geo.Index {
	if rdb == nil {
		return geo.Nop{}
	}
	return geo.NewRedisIndex(rdb)
}

type brokerIn struct {
	dig.In

	Counter *prometheus.CounterVec `name:"changefeed_notifications_total"`
}

func newBroker(in brokerIn) *changefeed.Broker {
	return changefeed.NewBroker(in.Counter)
}

func newListener(pool *pgxpool.Pool, broker *changefeed.Broker, logger logx.Logger) *changefeed.Listener {
	return changefeed.NewListener(changefeed.PoolDialer(pool, repository.NotifyChannel), broker, logger)
}

type hubIn struct {
	dig.In

	Config     *config.Config
	Logger     logx.Logger
	Broker     *changefeed.Broker
	Index      geo.Index
	Categories *repository.CategoryRepo
	Drivers    *repository.DriverRepo
	Sessions   prometheus.Gauge `name:"map_sessions_active"`
}

func newHub(in hubIn) *livemap.Hub {
	return livemap.NewHub(livemap.HubDeps{
		Categories:    in.Categories,
		Drivers:       in.Drivers,
		Broker:        in.Broker,
		Index:         in.Index,
		Sessions:      in.Sessions,
		Logger:        in.Logger,
		Center:        mapCenter(in.Config),
		Zoom:          in.Config.Map.DefaultZoom,
		LocateTimeout: in.Config.Map.LocateTimeout,
	})
}

func registerLiveMap(container *dig.Container) error {
	return provideAll(container,
		newRedisClient,
		newGeoIndex,
		newBroker,
		newListener,
		newHub,
	)
}
