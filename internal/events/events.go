// Package events carries trip reminder events from the notifications worker
// to whatever is able to deliver them: connected navigation sockets on this
// instance, and optionally a NATS subject for the other instances.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const reminderSubject = "saferoute.reminders"

type EventType string

const (
	EventTypeTripReminder EventType = "trip_reminder"
)

type Event interface {
	GetType() EventType
}

type TripReminderEvent struct {
	UserID   uint      `json:"user_id"`
	RouteID  string    `json:"route_id"`
	Name     string    `json:"name"`
	DepartAt time.Time `json:"depart_at"`
}

func (e TripReminderEvent) GetType() EventType {
	return EventTypeTripReminder
}

// Sink receives events for local delivery.
type Sink interface {
	HandleTripReminder(event TripReminderEvent)
}

type EventBus struct {
	eventQueue chan Event
	nats       *nats.Conn
	natsSub    *nats.Subscription
	sink       Sink
}

func NewEventBus(natsConn *nats.Conn, sink Sink) *EventBus {
	return &EventBus{
		eventQueue: make(chan Event, 100),
		nats:       natsConn,
		sink:       sink,
	}
}

func (eb *EventBus) GetChannel() chan Event {
	return eb.eventQueue
}

// Start consumes the queue until the context is cancelled. Events published
// locally are also fanned out over NATS; events arriving from NATS are
// delivered to the local sink only.
func (eb *EventBus) Start(ctx context.Context) error {
	if eb.nats != nil {
		sub, err := eb.nats.Subscribe(reminderSubject, func(msg *nats.Msg) {
			var event TripReminderEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				slog.Warn("Failed to decode reminder from NATS", "error", err)
				return
			}
			eb.sink.HandleTripReminder(event)
		})
		if err != nil {
			return err
		}
		eb.natsSub = sub
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eb.eventQueue:
				eb.dispatch(event)
			}
		}
	}()
	return nil
}

func (eb *EventBus) Stop() {
	if eb.natsSub != nil {
		if err := eb.natsSub.Unsubscribe(); err != nil {
			slog.Warn("Failed to unsubscribe from NATS", "error", err)
		}
	}
}

func (eb *EventBus) dispatch(event Event) {
	switch event := event.(type) {
	case TripReminderEvent:
		if eb.nats == nil {
			eb.sink.HandleTripReminder(event)
			return
		}
		// NATS delivers our own publishes back to our subscription, so
		// local delivery rides the same path as remote instances.
		data, err := json.Marshal(event)
		if err != nil {
			slog.Warn("Failed to encode reminder for NATS", "error", err)
			return
		}
		if err := eb.nats.Publish(reminderSubject, data); err != nil {
			slog.Warn("Failed to publish reminder to NATS", "error", err)
		}
	default:
		slog.Warn("Unknown event type", "type", event.GetType())
	}
}
