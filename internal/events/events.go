package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const (
	EventPitchCreated       = "pitch_created"
	EventPitchStatusChanged = "pitch_status_changed"
	EventPitchDeleted       = "pitch_deleted"

	EventBookingConfirmed = "booking_confirmed"
	EventBookingCanceled  = "booking_canceled"
	EventBookingPassed    = "booking_passed"
)

// PitchEventPayload describes the minimal pitch request snapshot for
// event consumers.
type PitchEventPayload struct {
	RequestID  int64  `json:"request_id"`
	TelegramID int64  `json:"telegram_id,omitempty"`
	Status     string `json:"status,omitempty"`
}

// BookingEventPayload describes a booking transition made by the notifier.
type BookingEventPayload struct {
	BookingID  int64  `json:"booking_id"`
	TelegramID int64  `json:"telegram_id"`
	Reason     string `json:"reason,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(_ context.Context, eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
