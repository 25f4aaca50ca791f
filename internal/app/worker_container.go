package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/dig"

	"sulytrack/internal/config"
	"sulytrack/internal/events"
	"sulytrack/internal/logx"
	"sulytrack/internal/service/notify"
	"sulytrack/internal/transport/kafka"
)

const eventHandleTimeout = 5 * time.Second

type eventHandler interface {
	Handle(ctx context.Context, e events.Event) error
}

// makeEventHandler bounds each event so a stuck notification cannot stall the partition.
func makeEventHandler(h eventHandler, timeout time.Duration) kafka.HandleFunc {
	return func(ctx context.Context, e events.Event) error {
		hctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return h.Handle(hctx, e)
	}
}

func newNotifier(cfg *config.Config, logger logx.Logger) (notify.Notifier, error) {
	if !cfg.Telegram.Enabled() {
		logger.Warn("telegram not configured, admin notifications are dropped")
		return notify.Nop{}, nil
	}
	n, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return notify.NewRetryingNotifier(n, logger, nil, notify.DefaultRetry), nil
}

func newConsumer(cfg *config.Config, logger logx.Logger, p *notify.Processor) (*kafka.Consumer, error) {
	return kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic,
		makeEventHandler(p, eventHandleTimeout))
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		newNotifier,
		notify.NewProcessor,
		newConsumer,
	)
}

// MustBuildWorkerContainer builds the container for the notification worker.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

// MustBuildWorker builds the worker container. The worker needs no database.
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container := dig.New()
	err := registerCore(container, ctx, b.loadWorkerConfig)
	if err != nil {
		b.logFatalf("failed to build worker container: core: %v", err)
	}
	if err := registerWorker(container); err != nil {
		b.logFatalf("failed to build worker container: worker: %v", err)
	}
	return container
}
