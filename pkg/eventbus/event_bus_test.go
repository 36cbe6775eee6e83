package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/channels/gochannel"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/eventbus"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/events"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	publisher, subscriber, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(publisher, subscriber)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan *events.InstanceConnected, 1)

	err := bus.Handle(events.InstanceConnectedEvent, func(_ context.Context, event any) error {
		connected, ok := event.(*events.InstanceConnected)
		require.True(t, ok)

		received <- connected

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	published := events.InstanceConnected{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.InstanceConnectedEvent,
			Timestamp: time.Now().UTC(),
		},
		InstanceName: "Loja1",
	}

	require.NoError(t, bus.Publish(ctx, "Loja1", published))

	select {
	case connected := <-received:
		assert.Equal(t, published.ID, connected.ID)
		assert.Equal(t, events.InstanceConnectedEvent, connected.Type)
		assert.Equal(t, "Loja1", connected.InstanceName)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}

func TestWatermillEventBus_UnhandledTypeIsSkipped(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan *events.WebhookConfigChanged, 1)

	err := bus.Handle(events.WebhookConfigChangedEvent, func(_ context.Context, event any) error {
		changed, ok := event.(*events.WebhookConfigChanged)
		require.True(t, ok)

		received <- changed

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for this type; it must be acknowledged and
	// dropped without blocking later deliveries.
	require.NoError(t, bus.Publish(ctx, "Loja1", events.InstanceCreated{
		BaseEvent:    events.BaseEvent{ID: bus.GenerateID(), Type: events.InstanceCreatedEvent},
		InstanceName: "Loja1",
	}))

	require.NoError(t, bus.Publish(ctx, "carrega_agenda", events.WebhookConfigChanged{
		BaseEvent:  events.BaseEvent{ID: bus.GenerateID(), Type: events.WebhookConfigChangedEvent},
		Identifier: "carrega_agenda",
		URL:        "https://hooks.example.com/agenda",
	}))

	select {
	case changed := <-received:
		assert.Equal(t, "carrega_agenda", changed.Identifier)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
