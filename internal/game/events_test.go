package game

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusRunsHandlersInOrder(t *testing.T) {
	bus := NewEventBus(nil)
	var got []string
	bus.On(EventAfterPlayCard, func(Event) { got = append(got, "a") })
	bus.On(EventAfterPlayCard, func(Event) { got = append(got, "b") })
	bus.On(EventAfterTakeCard, func(Event) { got = append(got, "other") })

	bus.Dispatch(Event{Name: EventAfterPlayCard})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestEventBusPassesEvent(t *testing.T) {
	bus := NewEventBus(nil)
	var got Event
	bus.On(EventAfterTakeCard, func(ev Event) { got = ev })

	bus.Dispatch(Event{Name: EventAfterTakeCard, PlayerID: "p1", CardID: "c1"})
	assert.Equal(t, Event{Name: EventAfterTakeCard, PlayerID: "p1", CardID: "c1"}, got)
}

func TestEventBusOff(t *testing.T) {
	bus := NewEventBus(nil)
	calls := 0
	sub := bus.On(EventAfterJoin, func(Event) { calls++ })
	keep := bus.On(EventAfterJoin, func(Event) { calls += 10 })

	assert.True(t, bus.Off(sub))
	assert.False(t, bus.Off(sub), "second removal is a no-op")
	bus.Dispatch(Event{Name: EventAfterJoin})
	assert.Equal(t, 10, calls)

	assert.True(t, bus.Off(keep))
	bus.Dispatch(Event{Name: EventAfterJoin})
	assert.Equal(t, 10, calls)
}

func TestEventBusRecoversPanics(t *testing.T) {
	logger, hook := test.NewNullLogger()
	bus := NewEventBus(logger)
	ran := false
	bus.On(EventAfterGameEnd, func(Event) { panic("boom") })
	bus.On(EventAfterGameEnd, func(Event) { ran = true })

	assert.NotPanics(t, func() { bus.Dispatch(Event{Name: EventAfterGameEnd}) })
	assert.True(t, ran, "later handlers still run")

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, EventAfterGameEnd, hook.LastEntry().Data["event"])
}

func TestEventBusSubscribeDuringDispatch(t *testing.T) {
	bus := NewEventBus(nil)
	late := 0
	bus.On(EventAfterJoin, func(Event) {
		bus.On(EventAfterJoin, func(Event) { late++ })
	})

	bus.Dispatch(Event{Name: EventAfterJoin})
	assert.Zero(t, late, "handlers added mid-dispatch wait for the next event")

	bus.Dispatch(Event{Name: EventAfterJoin})
	assert.Equal(t, 1, late)
}

func TestEventBusUnsubscribeDuringDispatch(t *testing.T) {
	bus := NewEventBus(nil)
	calls := 0
	var sub Subscription
	sub = bus.On(EventAfterJoin, func(Event) {
		calls++
		bus.Off(sub)
	})

	bus.Dispatch(Event{Name: EventAfterJoin})
	bus.Dispatch(Event{Name: EventAfterJoin})
	assert.Equal(t, 1, calls)
}
