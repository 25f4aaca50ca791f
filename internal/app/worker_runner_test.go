package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"sulytrack/internal/logx"
)

func TestWorkerRunner_MustRun_NoPanicOnNilOrCanceled(t *testing.T) {
	t.Parallel()

	for _, err := range []error{nil, context.Canceled} {
		r := &WorkerRunner{runFn: func(*dig.Container) error { return err }}
		require.NotPanics(t, func() { r.MustRun(dig.New()) })
	}
}

func TestWorkerRunner_MustRun_PanicsOnOtherError(t *testing.T) {
	t.Parallel()

	r := &WorkerRunner{runFn: func(*dig.Container) error { return errors.New("boom") }}
	require.Panics(t, func() { r.MustRun(dig.New()) })
}

func TestWorkerRun_ReturnsError_WhenConsumerNil(t *testing.T) {
	t.Parallel()

	err := workerRun(context.Background(), logx.Nop(), nil)
	require.ErrorContains(t, err, "kafka consumer is nil")
}
