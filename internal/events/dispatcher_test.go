package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	var seen []Event
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		seen = append(seen, event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t-1"})

	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "t-1", seen[0].TicketID)
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	var calls int
	dispatcher.Subscribe(EventTicketUpdated, func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventTicketUpdated, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketUpdated})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDispatcherIgnoresUnrelatedEvents(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	var calls int
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls++
		return nil
	})

	_ = dispatcher.Publish(context.Background(), Event{Type: EventTicketUpdated})

	assert.Equal(t, 0, calls)
}
