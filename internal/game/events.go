// internal/game/events.go
package game

import (
	"github.com/sirupsen/logrus"
)

// EventName identifies a lifecycle channel on the EventBus.
type EventName string

const (
	EventAfterJoin            EventName = "after-join"
	EventAfterGameStart       EventName = "after-game-start"
	EventAfterPlayCard        EventName = "after-play-card"
	EventAfterTakeCard        EventName = "after-take-card"
	EventAfterDeckRegenerated EventName = "after-deck-regenerated"
	EventAfterGameEnd         EventName = "after-game-end"
)

// Event is delivered to handlers once the operation that caused it has committed.
// Handlers read everything else through the engine getters.
type Event struct {
	Name     EventName `json:"name"`
	PlayerID string    `json:"playerId,omitempty"` // acting player, when there is one
	CardID   string    `json:"cardId,omitempty"`   // card played or drawn, when there is one
}

// EventHandler observes an event. It returns nothing; state is already committed.
type EventHandler func(ev Event)

// Subscription identifies one registered handler so it can be removed with Off.
type Subscription struct {
	event EventName
	id    uint64
}

type subscriber struct {
	id      uint64
	handler EventHandler
}

// EventBus is a synchronous publish/subscribe bus with one channel per EventName.
// It is not safe for concurrent use; the engine owning it is single-threaded.
type EventBus struct {
	handlers map[EventName][]subscriber
	nextID   uint64
	logger   logrus.FieldLogger
}

func NewEventBus(logger logrus.FieldLogger) *EventBus {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EventBus{
		handlers: make(map[EventName][]subscriber),
		logger:   logger,
	}
}

// On registers handler on the event channel. Handlers run in registration order.
func (b *EventBus) On(event EventName, handler EventHandler) Subscription {
	b.nextID++
	b.handlers[event] = append(b.handlers[event], subscriber{id: b.nextID, handler: handler})
	return Subscription{event: event, id: b.nextID}
}

// Off removes a handler. It reports whether the subscription was still registered.
func (b *EventBus) Off(sub Subscription) bool {
	subs := b.handlers[sub.event]
	for i, s := range subs {
		if s.id == sub.id {
			b.handlers[sub.event] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

// Dispatch runs every handler of ev.Name in order on the calling goroutine.
// A panicking handler is logged and does not stop the others.
func (b *EventBus) Dispatch(ev Event) {
	// copy so handlers may subscribe or unsubscribe while we iterate
	subs := append([]subscriber(nil), b.handlers[ev.Name]...)
	for _, s := range subs {
		b.invoke(s, ev)
	}
}

func (b *EventBus) invoke(s subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithFields(logrus.Fields{
				"event":   ev.Name,
				"handler": s.id,
			}).Errorf("event handler panicked: %v", r)
		}
	}()
	s.handler(ev)
}
