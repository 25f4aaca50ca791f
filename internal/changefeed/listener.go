package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sulytrack/internal/logx"
)

// NotificationConn is a connection that has already issued LISTEN.
type NotificationConn interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// Dialer opens a listening connection.
type Dialer func(ctx context.Context) (NotificationConn, error)

// PoolDialer takes a connection out of the pool for the lifetime of the LISTEN session.
func PoolDialer(pool *pgxpool.Pool, channel string) Dialer {
	return func(ctx context.Context) (NotificationConn, error) {
		pc, err := pool.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire listen conn: %w", err)
		}
		conn := pc.Hijack()
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			_ = conn.Close(context.Background())
			return nil, fmt.Errorf("listen %s: %w", channel, err)
		}
		return conn, nil
	}
}

// Listener forwards postgres notifications into a Broker and reconnects on failure.
type Listener struct {
	dial       Dialer
	broker     *Broker
	logger     logx.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewListener creates a Listener with 200ms..10s reconnect backoff.
func NewListener(dial Dialer, broker *Broker, logger logx.Logger) *Listener {
	return &Listener{
		dial:       dial,
		broker:     broker,
		logger:     logger,
		minBackoff: 200 * time.Millisecond,
		maxBackoff: 10 * time.Second,
	}
}

// Run blocks until ctx is done. After every successful (re)connect it asks
// subscribers to resync, since notifications sent while disconnected are lost.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.minBackoff
	for {
		conn, err := l.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("changefeed connect failed", logx.Err(err), logx.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, l.maxBackoff)
			continue
		}

		backoff = l.minBackoff
		l.logger.Info("changefeed listening")
		l.broker.Resync()

		err = l.consume(ctx, conn)
		_ = conn.Close(context.Background())
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.logger.Warn("changefeed connection lost", logx.Err(err))
		if !sleep(ctx, backoff) {
			return ctx.Err()
		}
	}
}

func (l *Listener) consume(ctx context.Context, conn NotificationConn) error {
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		ch, err := decode(n.Payload)
		if err != nil {
			l.logger.Warn("changefeed bad payload", logx.String("payload", n.Payload), logx.Err(err))
			l.broker.Resync()
			continue
		}
		l.broker.Publish(ch)
	}
}

func decode(payload string) (Change, error) {
	var ch Change
	if err := json.Unmarshal([]byte(payload), &ch); err != nil {
		return Change{}, err
	}
	switch ch.Collection {
	case Drivers, Categories:
		return ch, nil
	default:
		return Change{}, fmt.Errorf("unknown collection %q", ch.Collection)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
