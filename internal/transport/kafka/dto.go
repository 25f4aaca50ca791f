package kafka

import (
	"time"

	"sulytrack/internal/events"
)

// EventDTO is the wire form of events.Event.
type EventDTO struct {
	Type       string            `json:"type"`
	DriverID   string            `json:"driver_id,omitempty"`
	CategoryID string            `json:"category_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Payload    map[string]string `json:"payload,omitempty"`
}

// ToDomain converts EventDTO to a normalized events.Event.
func ToDomain(dto EventDTO) events.Event {
	return events.Event{
		Type:       dto.Type,
		DriverID:   dto.DriverID,
		CategoryID: dto.CategoryID,
		OccurredAt: dto.OccurredAt,
		Payload:    dto.Payload,
	}.Normalize()
}

// FromDomain converts events.Event to its wire form.
func FromDomain(e events.Event) EventDTO {
	return EventDTO{
		Type:       e.Type,
		DriverID:   e.DriverID,
		CategoryID: e.CategoryID,
		OccurredAt: e.OccurredAt.UTC(),
		Payload:    e.Payload,
	}
}
