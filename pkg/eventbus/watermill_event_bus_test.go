package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/textflow/pkg/channels/gochannel"
	"github.com/dukex/textflow/pkg/eventbus"
	"github.com/dukex/textflow/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillEventBus_PublishSubscribe(t *testing.T) {
	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{}, gochannel.WithAck())
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() { _ = bus.Close() })

	received := make(chan *events.RecordAdded, 1)

	err = bus.Handle(events.RecordAddedEvent, func(_ context.Context, event eventbus.Event) error {
		received <- event.(*events.RecordAdded)

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, bus.Subscribe(ctx))

	err = bus.Publish(ctx, "rec-1", events.RecordAdded{
		BaseEvent: events.NewBaseEvent(events.RecordAddedEvent),
		RecordID:  "rec-1",
		FileName:  "2024-01-01-0000-00.md",
		Tags:      []string{"a"},
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "rec-1", event.RecordID)
		assert.Equal(t, []string{"a"}, event.Tags)
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{}, gochannel.WithBuffer(1))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() { _ = bus.Close() })

	assert.NotEqual(t, bus.GenerateID(), bus.GenerateID())
}

func TestNopPublisher(t *testing.T) {
	var publisher eventbus.EventPublisher = eventbus.NopPublisher{}

	assert.NoError(t, publisher.Publish(t.Context(), "k", events.RecordsDeleted{}))
}
