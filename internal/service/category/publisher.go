//go:generate mockgen -source=publisher.go -destination=publisher_mocks_test.go -package=category_test

package category

import (
	"context"

	"sulytrack/internal/events"
)

// EventPublisher sends domain events to the bus.
type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}
