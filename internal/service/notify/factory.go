package notify

import (
	"context"
	"strings"

	"sulytrack/internal/events"
)

type actionFunc func(context.Context, events.Event) error

type actionFactory struct {
	byType map[string]actionFunc
}

func newActionFactory(onRegistered, onAvailability actionFunc) *actionFactory {
	return &actionFactory{
		byType: map[string]actionFunc{
			events.DriverRegistered:          onRegistered,
			events.DriverAvailabilityChanged: onAvailability,
		},
	}
}

func (f *actionFactory) get(typ string) (actionFunc, bool) {
	fn, ok := f.byType[strings.ToLower(strings.TrimSpace(typ))]
	return fn, ok
}
