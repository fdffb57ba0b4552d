package auth

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventType describes an auth-state transition.
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

// Event is pushed to subscribers whenever a session is established or
// terminated.
type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Origin    string    `json:"origin,omitempty"`
}

// Broker is the single source of truth for session-state changes.
// Observers register with Subscribe and are called on every transition,
// including those originating on other instances via Redis pub/sub.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]func(Event)
	nextID int

	origin string // instance id, used to drop echoes of our own events
	bus    Bus
	logger zerolog.Logger
}

// Bus is the cross-instance transport for auth events. *store.RedisStore
// satisfies it; a nil Bus keeps the broker purely local.
type Bus interface {
	PublishAuthEvent(ctx context.Context, payload []byte) error
}

// NewBroker creates a broker. bus may be nil for single-instance runs.
func NewBroker(bus Bus, logger zerolog.Logger) *Broker {
	return &Broker{
		subs:   make(map[int]func(Event)),
		origin: uuid.NewString(),
		bus:    bus,
		logger: logger,
	}
}

// Subscribe registers a callback for auth-state transitions and returns
// an unsubscribe handle. Callbacks run on the publishing goroutine and
// must not block.
func (b *Broker) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish notifies local subscribers and, when a bus is attached,
// forwards the event to the other instances.
func (b *Broker) Publish(ctx context.Context, ev Event) {
	ev.Origin = b.origin
	b.dispatch(ev)

	if b.bus == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to encode auth event")
		return
	}
	if err := b.bus.PublishAuthEvent(ctx, payload); err != nil {
		// Local subscribers were already notified; remote fanout is
		// best-effort.
		b.logger.Warn().Err(err).Msg("failed to publish auth event")
	}
}

// DispatchRemote feeds an event received from the bus into the local
// subscribers, skipping echoes of events this instance published.
func (b *Broker) DispatchRemote(payload []byte) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		b.logger.Warn().Err(err).Msg("dropping malformed auth event")
		return
	}
	if ev.Origin == b.origin {
		return
	}
	b.dispatch(ev)
}

func (b *Broker) dispatch(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, fn := range b.subs {
		fn(ev)
	}
}
