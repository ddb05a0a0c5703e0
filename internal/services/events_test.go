package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/duet/internal/domain"
)

func textEvent(s string) domain.Event {
	return domain.Event{Kind: domain.EventText, SessionID: "s1", Text: s}
}

func TestEventBus_PublishDoesNotBlockOnIdleSubscriber(t *testing.T) {
	bus := NewEventBus()
	sub := bus.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := range 10000 {
			bus.Publish(textEvent(string(rune('a' + i%26))))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a subscriber that is not reading")
	}

	first := <-sub.C
	assert.Equal(t, "a", first.Text)
}

func TestEventBus_FanOutPreservesOrder(t *testing.T) {
	bus := NewEventBus()
	subs := []*Subscription{bus.Subscribe(), bus.Subscribe()}

	for _, s := range []string{"one", "two", "three"} {
		bus.Publish(textEvent(s))
	}
	bus.Close()

	for _, sub := range subs {
		var got []string
		for ev := range sub.C {
			got = append(got, ev.Text)
		}
		assert.Equal(t, []string{"one", "two", "three"}, got)
	}
}

func TestEventBus_LateSubscriberMissesEarlierEvents(t *testing.T) {
	bus := NewEventBus()
	bus.Publish(textEvent("early"))

	sub := bus.Subscribe()
	bus.Publish(textEvent("late"))
	bus.Close()

	var got []string
	for ev := range sub.C {
		got = append(got, ev.Text)
	}
	assert.Equal(t, []string{"late"}, got)
}

func TestSubscription_CloseStopsDelivery(t *testing.T) {
	bus := NewEventBus()
	sub := bus.Subscribe()
	bus.Publish(textEvent("pending"))

	sub.Close()
	bus.Publish(textEvent("after"))

	for ev := range sub.C {
		assert.NotEqual(t, "after", ev.Text)
	}
	sub.Close()
}

func TestEventBus_SubscribeAfterCloseEndsImmediately(t *testing.T) {
	bus := NewEventBus()
	bus.Close()
	bus.Close()

	sub := bus.Subscribe()

	select {
	case _, ok := <-sub.C:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription did not end")
	}
}
