// Package notify turns domain events from the bus into operator notifications.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"sulytrack/internal/events"
	"sulytrack/internal/logx"
)

// Processor dispatches events by type. Unknown types are ignored.
type Processor struct {
	notifier Notifier
	logger   logx.Logger
	factory  *actionFactory
}

// NewProcessor creates a Processor. A nil notifier drops notifications.
func NewProcessor(n Notifier, logger logx.Logger) *Processor {
	if n == nil {
		n = Nop{}
	}
	if logger == nil {
		logger = logx.Nop()
	}
	p := &Processor{notifier: n, logger: logger}
	p.factory = newActionFactory(p.onRegistered, p.onAvailability)
	return p
}

// Handle processes a single event.
func (p *Processor) Handle(ctx context.Context, e events.Event) error {
	fn, ok := p.factory.get(e.Type)
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onRegistered(ctx context.Context, e events.Event) error {
	if err := p.notifier.Notify(ctx, registrationMessage(e)); err != nil {
		return fmt.Errorf("notify registration %s: %w", e.DriverID, err)
	}
	p.logger.Info("registration notified", logx.String("driver_id", e.DriverID))
	return nil
}

func (p *Processor) onAvailability(_ context.Context, e events.Event) error {
	p.logger.Info("driver availability changed",
		logx.String("driver_id", e.DriverID),
		logx.String("available", e.Payload["available"]),
		logx.Time("at", e.OccurredAt),
	)
	return nil
}

func registrationMessage(e events.Event) string {
	var b strings.Builder
	b.WriteString("<b>New driver awaiting approval</b>\n")
	line := func(label, key string) {
		if v := e.Payload[key]; v != "" {
			fmt.Fprintf(&b, "\n%s: <code>%s</code>", label, html.EscapeString(v))
		}
	}
	line("Name", "name")
	line("Phone", "phone")
	line("Vehicle", "vehicle_type")
	line("Plate", "plate")
	fmt.Fprintf(&b, "\nID: <code>%s</code>", html.EscapeString(e.DriverID))
	return b.String()
}
