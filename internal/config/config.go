package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

// Config stores all service settings.
type Config struct {
	Port        int
	LogLevel    string
	SeedOnStart bool

	DB        DB
	Redis     Redis
	Kafka     Kafka
	Auth      Auth
	Admin     Admin
	Map       Map
	RateLimit RateLimit
	Telegram  Telegram
	Pprof     Pprof
}

// DB holds postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a postgres connection URL.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Redis holds the geo index connection. An empty Addr disables redis.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a redis address is configured.
func (r Redis) Enabled() bool { return r.Addr != "" }

// Kafka holds event bus settings. No brokers means events are dropped.
type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Enabled reports whether at least one broker is configured.
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

// Auth configures token signing.
type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Admin holds the single operator account. PasswordHash is a bcrypt hash.
type Admin struct {
	Email        string
	PasswordHash string
}

// Map configures the live map view.
type Map struct {
	CenterLat     float64
	CenterLng     float64
	DefaultZoom   int
	LocateTimeout time.Duration
}

// RateLimit configures the limiter in front of login and registration.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// Telegram configures admin notifications from the worker.
type Telegram struct {
	BotToken    string
	AdminChatID int64
}

// Enabled reports whether notifications can be delivered.
func (t Telegram) Enabled() bool { return t.BotToken != "" && t.AdminChatID != 0 }

// Pprof exposes the profiler on a separate listener. An empty Addr disables it.
type Pprof struct {
	Addr string
	User string
	Pass string
}

// Load reads configuration in order: .env (if present) → environment → command line flags.
func Load() (*Config, error) {
	return LoadFrom(pflag.CommandLine, os.Args[1:])
}

// LoadFrom is Load with an explicit flag set and arguments.
func LoadFrom(fs *pflag.FlagSet, args []string) (*Config, error) {
	return load(true, fs, args)
}

// LoadWorker is Load for processes that serve no API, so no token secret is required.
func LoadWorker() (*Config, error) {
	return LoadWorkerFrom(pflag.CommandLine, os.Args[1:])
}

// LoadWorkerFrom is LoadWorker with an explicit flag set and arguments.
func LoadWorkerFrom(fs *pflag.FlagSet, args []string) (*Config, error) {
	return load(false, fs, args)
}

func load(api bool, fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:      defaultPort,
		LogLevel:  "info",
		DB:        defaultDB,
		Kafka:     defaultKafka,
		Auth:      Auth{TokenTTL: defaultTokenTTL},
		Map:       defaultMap,
		RateLimit: defaultRateLimit,
	}
	if err := fromEnv(cfg); err != nil {
		return nil, err
	}
	if err := fromFlags(cfg, fs, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(api); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv(cfg *Config) error {
	e := envReader{}

	e.int("PORT", &cfg.Port)
	e.str("LOG_LEVEL", &cfg.LogLevel)
	e.bool("SEED_ON_START", &cfg.SeedOnStart)

	e.str("POSTGRES_HOST", &cfg.DB.Host)
	e.str("POSTGRES_PORT", &cfg.DB.Port)
	e.str("POSTGRES_USER", &cfg.DB.User)
	e.str("POSTGRES_PASSWORD", &cfg.DB.Pass)
	e.str("POSTGRES_DB", &cfg.DB.Name)

	e.str("REDIS_ADDR", &cfg.Redis.Addr)
	e.str("REDIS_PASSWORD", &cfg.Redis.Password)
	e.int("REDIS_DB", &cfg.Redis.DB)

	if v, ok := lookup("KAFKA_BROKERS"); ok {
		cfg.Kafka.Brokers = splitList(v)
	}
	e.str("KAFKA_TOPIC", &cfg.Kafka.Topic)
	e.str("KAFKA_GROUP_ID", &cfg.Kafka.GroupID)

	e.str("AUTH_JWT_SECRET", &cfg.Auth.JWTSecret)
	e.duration("AUTH_TOKEN_TTL", &cfg.Auth.TokenTTL)
	e.str("ADMIN_EMAIL", &cfg.Admin.Email)
	e.str("ADMIN_PASSWORD_HASH", &cfg.Admin.PasswordHash)

	e.float("MAP_CENTER_LAT", &cfg.Map.CenterLat)
	e.float("MAP_CENTER_LNG", &cfg.Map.CenterLng)
	e.int("MAP_DEFAULT_ZOOM", &cfg.Map.DefaultZoom)
	e.duration("MAP_LOCATE_TIMEOUT", &cfg.Map.LocateTimeout)

	e.bool("RATE_LIMIT_ENABLED", &cfg.RateLimit.Enabled)
	e.float("RATE_LIMIT_RATE", &cfg.RateLimit.Rate)
	e.int("RATE_LIMIT_BURST", &cfg.RateLimit.Burst)
	e.duration("RATE_LIMIT_TTL", &cfg.RateLimit.TTL)
	e.int("RATE_LIMIT_MAX_BUCKETS", &cfg.RateLimit.MaxBuckets)

	e.str("TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken)
	e.int64("TELEGRAM_ADMIN_CHAT_ID", &cfg.Telegram.AdminChatID)

	e.str("PPROF_ADDR", &cfg.Pprof.Addr)
	e.str("PPROF_USER", &cfg.Pprof.User)
	e.str("PPROF_PASS", &cfg.Pprof.Pass)

	return e.err
}

func fromFlags(cfg *Config, fs *pflag.FlagSet, args []string) error {
	if fs.Lookup("port") == nil {
		fs.IntP("port", "p", cfg.Port, "port to listen on")
	}
	if fs.Lookup("seed") == nil {
		fs.Bool("seed", cfg.SeedOnStart, "insert missing default categories on start")
	}
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if fs.Changed("port") {
		port, err := fs.GetInt("port")
		if err != nil {
			return fmt.Errorf("parse flags: %w", err)
		}
		cfg.Port = port
	}
	if fs.Changed("seed") {
		seed, err := fs.GetBool("seed")
		if err != nil {
			return fmt.Errorf("parse flags: %w", err)
		}
		cfg.SeedOnStart = seed
	}
	return nil
}

func (c *Config) validate(api bool) error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if api && c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid AUTH_TOKEN_TTL: %s", c.Auth.TokenTTL)
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 || c.Map.CenterLng < -180 || c.Map.CenterLng > 180 {
		return fmt.Errorf("invalid map center: %v,%v", c.Map.CenterLat, c.Map.CenterLng)
	}
	if c.Map.LocateTimeout <= 0 {
		return fmt.Errorf("invalid MAP_LOCATE_TIMEOUT: %s", c.Map.LocateTimeout)
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		return errors.New("KAFKA_TOPIC must not be empty when brokers are set")
	}
	return nil
}

// envReader keeps the first conversion error so fromEnv reads linearly.
type envReader struct{ err error }

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("env %s: %w", key, err)
	}
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	if v, ok := lookup(key); ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) int64(key string, dst *int64) {
	if v, ok := lookup(key); ok {
		n, err := cast.ToInt64E(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := lookup(key); ok {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) bool(key string, dst *bool) {
	if v, ok := lookup(key); ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := lookup(key); ok {
		d, err := cast.ToDurationE(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = d
	}
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
