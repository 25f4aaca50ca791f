//go:generate mockgen -source=publisher.go -destination=publisher_mocks_test.go -package=driver_test

package driver

import (
	"context"

	"sulytrack/internal/events"
)

// EventPublisher sends domain events to the bus.
type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}
