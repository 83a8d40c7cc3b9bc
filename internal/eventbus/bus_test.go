package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	ch1, cancel1 := bus.Subscribe(EventAlert)
	defer cancel1()
	ch2, cancel2 := bus.Subscribe(EventAlert)
	defer cancel2()

	bus.Publish(Event{Type: EventAlert, Timestamp: time.Now(), Data: AlertData{Message: "hola"}})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, "hola", ev.Data.(AlertData).Message)
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for event")
		}
	}
}

func TestPublishIgnoresOtherTypes(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe(EventMotion)
	defer cancel()

	bus.Publish(Event{Type: EventLocation})
	assert.Len(t, ch, 0)
}

func TestCancelClosesAndRemoves(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe(EventSegment)
	require.Equal(t, 1, bus.SubscriberCount(EventSegment))

	cancel()
	cancel() // idempotente

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")
	assert.Equal(t, 0, bus.SubscriberCount(EventSegment))

	// Publicar después de cancelar no debe entrar en pánico
	bus.Publish(Event{Type: EventSegment})
}

func TestPublishDropsWhenFull(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	ch, cancel := bus.SubscribeBuffered(EventMotion, 1)
	defer cancel()

	bus.Publish(Event{Type: EventMotion, Data: 1})
	bus.Publish(Event{Type: EventMotion, Data: 2})

	require.Len(t, ch, 1)
	assert.Equal(t, 1, (<-ch).Data)
}

func TestCancelAfterClose(t *testing.T) {
	bus := NewEventBus()
	ch, cancel := bus.Subscribe(EventOdometer)
	bus.Close()

	_, ok := <-ch
	assert.False(t, ok)
	assert.NotPanics(t, cancel)

	late, lateCancel := bus.Subscribe(EventOdometer)
	_, ok = <-late
	assert.False(t, ok, "subscriptions on a closed bus start closed")
	lateCancel()
}
