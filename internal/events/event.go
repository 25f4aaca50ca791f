// Package events defines the outward domain events published to the event bus.
package events

import (
	"context"
	"strings"
	"time"
)

// Event types.
const (
	CategoryChanged           = "category.changed"
	DriverCreated             = "driver.created"
	DriverRegistered          = "driver.registered"
	DriverUpdated             = "driver.updated"
	DriverDeleted             = "driver.deleted"
	DriverAvailabilityChanged = "driver.availability_changed"
)

// Event is a single domain event.
type Event struct {
	Type       string            `json:"type"`
	DriverID   string            `json:"driver_id,omitempty"`
	CategoryID string            `json:"category_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Payload    map[string]string `json:"payload,omitempty"`
}

// Key returns the partitioning key: the entity the event is about.
func (e Event) Key() string {
	if e.DriverID != "" {
		return e.DriverID
	}
	return e.CategoryID
}

// Normalize trims identifiers and lowercases the type.
func (e Event) Normalize() Event {
	e.Type = strings.ToLower(strings.TrimSpace(e.Type))
	e.DriverID = strings.TrimSpace(e.DriverID)
	e.CategoryID = strings.TrimSpace(e.CategoryID)
	return e
}

// Publisher sends events to the bus.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. It is used when no brokers are configured.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, Event) error { return nil }
