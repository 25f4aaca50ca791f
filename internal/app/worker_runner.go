package app

import (
	"context"
	"errors"

	"go.uber.org/dig"

	"sulytrack/internal/logx"
	"sulytrack/internal/transport/kafka"
)

// WorkerRunner runs the notification worker.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun consumes events until the container context is canceled.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(ctx context.Context, logger logx.Logger, consumer *kafka.Consumer) error {
	if consumer == nil {
		return errors.New("kafka consumer is nil: KAFKA_BROKERS, KAFKA_TOPIC and KAFKA_GROUP_ID are required")
	}
	defer closeWorker(logger, consumer)

	logger.Info("sulytrack-worker started")
	return consumer.Run(ctx)
}

func closeWorker(logger logx.Logger, consumer *kafka.Consumer) {
	if err := consumer.Close(); err != nil {
		logger.Error("kafka close error", logx.Err(err))
	}
	_ = logger.Sync()
}
