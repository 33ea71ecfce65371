package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventPitchCreated, func(e *Event) error {
		received = append(received, e)
		return nil
	})

	err := bus.PublishJSON(context.Background(), EventPitchCreated, PitchEventPayload{
		RequestID:  7,
		TelegramID: 100,
		Status:     "new",
	})
	require.NoError(t, err)
	require.Len(t, received, 1)

	var payload PitchEventPayload
	require.NoError(t, json.Unmarshal(received[0].Payload, &payload))
	assert.Equal(t, int64(7), payload.RequestID)
	assert.Equal(t, int64(100), payload.TelegramID)
}

func TestEventBusIgnoresUnsubscribedTypes(t *testing.T) {
	bus := NewEventBus()

	called := false
	bus.Subscribe(EventPitchDeleted, func(e *Event) error {
		called = true
		return nil
	})

	err := bus.PublishJSON(context.Background(), EventPitchCreated, PitchEventPayload{RequestID: 1})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestNilBusPublishJSON(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(context.Background(), EventPitchCreated, nil))
}
