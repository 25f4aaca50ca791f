package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"sulytrack/internal/changefeed"
	"sulytrack/internal/config"
	"sulytrack/internal/logx"
	"sulytrack/internal/service/category"
	"sulytrack/internal/service/livemap"
	"sulytrack/internal/transport/kafka"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the API server.
type Runner struct {
	runFn  func(*dig.Container) error
	fatalf func(string, ...interface{})
}

// NewRunner returns a Runner.
func NewRunner() *Runner {
	return &Runner{runFn: run, fatalf: log.Fatalf}
}

// MustRun serves until the container context is canceled and exits the process on failure.
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	logger := containerLogger(container)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Info("startup aborted: startup timeout exceeded")
	default:
		logger.Error("run error", logx.Err(err))
		_ = logger.Sync()
		r.fatalf("run error: %v", err)
	}
}

// MustRun is NewRunner().MustRun.
func MustRun(container *dig.Container) {
	NewRunner().MustRun(container)
}

// containerLogger falls back to Nop when the logger itself failed to build.
func containerLogger(container *dig.Container) logx.Logger {
	var logger logx.Logger = logx.Nop()
	_ = container.Invoke(func(l logx.Logger) { logger = l })
	return logger
}

type runIn struct {
	dig.In

	Ctx        context.Context
	Config     *config.Config
	Logger     logx.Logger
	Server     *http.Server
	Pprof      *http.Server `name:"pprof_server" optional:"true"`
	Pool       *pgxpool.Pool
	Categories *category.Service
	Listener   *changefeed.Listener
	Hub        *livemap.Hub
	Producer   *kafka.Producer `optional:"true"`
	Redis      *goredis.Client `optional:"true"`
}

func run(container *dig.Container) error {
	return container.Invoke(serve)
}

func serve(in runIn) error {
	defer closeResources(in)

	if in.Config.SeedOnStart {
		if err := seedCategories(in.Ctx, in.Categories, in.Logger); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(in.Ctx)
	var wg sync.WaitGroup
	background(ctx, &wg, in.Logger, "change listener", in.Listener.Run)
	background(ctx, &wg, in.Logger, "map hub", in.Hub.Run)
	defer wg.Wait()
	defer cancel()

	errc := startServer(in.Server, in.Logger, "sulytrack")
	if in.Pprof != nil {
		pprofErr := startServer(in.Pprof, in.Logger, "pprof")
		defer gracefulShutdown(in.Pprof, in.Logger, shutdownTimeout)
		go func() {
			if err := <-pprofErr; err != nil {
				in.Logger.Error("pprof server stopped", logx.Err(err))
			}
		}()
	}

	select {
	case <-ctx.Done():
		in.Logger.Info("shutting down sulytrack")
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	}
	gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
	return nil
}

func background(ctx context.Context, wg *sync.WaitGroup, logger logx.Logger, name string, fn func(context.Context) error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error(name+" stopped", logx.Err(err))
		}
	}()
}

// startServer reports a listen failure on the returned channel. A clean close sends nothing.
func startServer(server *http.Server, logger logx.Logger, name string) <-chan error {
	errc := make(chan error, 1)
	go func() {
		logger.Info(name+" listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	return errc
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Warn("graceful shutdown error", logx.String("addr", srv.Addr), logx.Err(err))
	}
}

// Seed inserts missing default categories, then releases the database.
func Seed(container *dig.Container) error {
	return container.Invoke(func(ctx context.Context, svc *category.Service, logger logx.Logger, pool *pgxpool.Pool) error {
		defer pool.Close()
		return seedCategories(ctx, svc, logger)
	})
}

func seedCategories(ctx context.Context, svc *category.Service, logger logx.Logger) error {
	defaults, err := category.Defaults()
	if err != nil {
		return fmt.Errorf("load default categories: %w", err)
	}
	n, err := svc.Seed(ctx, defaults)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	logger.Info("default categories seeded", logx.Int("inserted", n), logx.Int("defaults", len(defaults)))
	return nil
}

func closeResources(in runIn) {
	if err := in.Producer.Close(); err != nil {
		in.Logger.Warn("kafka producer close error", logx.Err(err))
	}
	if in.Redis != nil {
		if err := in.Redis.Close(); err != nil {
			in.Logger.Warn("redis close error", logx.Err(err))
		}
	}
	if in.Pool != nil {
		in.Pool.Close()
	}
	_ = in.Logger.Sync()
}
