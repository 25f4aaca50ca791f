package notify

import (
	"context"
	"errors"
	"time"

	tele "gopkg.in/telebot.v3"

	"sulytrack/internal/logx"
	"sulytrack/internal/transport/kafka"
)

type counter interface {
	Inc()
}

// RetryConfig bounds the retries of a single notification.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetry is used by the worker.
var DefaultRetry = RetryConfig{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second}

// RetryingNotifier retries transient delivery failures with exponential backoff.
// Permanent errors and canceled contexts are returned at once.
type RetryingNotifier struct {
	next    Notifier
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingNotifier wraps next. retries may be nil.
func NewRetryingNotifier(next Notifier, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingNotifier {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &RetryingNotifier{next: next, logger: logger, retries: retries, cfg: cfg}
}

func (r *RetryingNotifier) Notify(ctx context.Context, msg string) error {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		err := r.next.Notify(ctx, msg)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == r.cfg.MaxAttempts || !retryable(err) {
			break
		}

		delay := retryDelay(err, r.cfg, attempt)
		if r.retries != nil {
			r.retries.Inc()
		}
		r.logger.Warn("notification retry",
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepCtx(ctx, delay) {
			break
		}
	}
	return lastErr
}

func retryable(err error) bool {
	var perm kafka.PermanentError
	return !errors.As(err, &perm) && !errors.Is(err, context.Canceled)
}

// retryDelay honors telegram's flood control hint when present.
func retryDelay(err error, cfg RetryConfig, attempt int) time.Duration {
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		return time.Duration(flood.RetryAfter) * time.Second
	}
	d := cfg.BaseDelay << (attempt - 1)
	if d > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
