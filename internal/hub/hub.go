// Package hub fans task-change events out to websocket subscribers.
// Each client watches one room; every successful task mutation is
// broadcast to that room's watchers so open room views stay in sync.
package hub

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Satyam216/todo-collab/internal/auth"
	"github.com/Satyam216/todo-collab/internal/models"
)

// EventType names a task mutation.
type EventType string

const (
	TaskAdded   EventType = "task_added"
	TaskEdited  EventType = "task_edited"
	TaskToggled EventType = "task_toggled"
	TaskDeleted EventType = "task_deleted"
)

// Event is the wire format pushed to room subscribers.
type Event struct {
	Type   EventType    `json:"type"`
	RoomID string       `json:"room_id"`
	Task   *models.Task `json:"task,omitempty"`
	TaskID string       `json:"task_id,omitempty"`
}

// Hub routes events to the clients watching each room. All state is
// owned by the Run goroutine; other goroutines talk to it via channels.
type Hub struct {
	rooms map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	events     chan Event
	dropped    chan string // session ids revoked mid-connection

	logger zerolog.Logger
}

// New creates a hub. Call Run before registering clients.
func New(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, 64),
		dropped:    make(chan string, 16),
		logger:     logger,
	}
}

// Run dispatches until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.rooms {
				for c := range clients {
					c.close()
				}
			}
			return

		case c := <-h.register:
			clients, ok := h.rooms[c.roomID]
			if !ok {
				clients = make(map[*Client]struct{})
				h.rooms[c.roomID] = clients
			}
			clients[c] = struct{}{}
			h.logger.Debug().Str("room_id", c.roomID).Int("watchers", len(clients)).Msg("ws client joined")

		case c := <-h.unregister:
			h.remove(c)

		case ev := <-h.events:
			for c := range h.rooms[ev.RoomID] {
				select {
				case c.send <- ev:
				default:
					// Slow consumer: drop it rather than stall the hub.
					h.remove(c)
				}
			}

		case sessionID := <-h.dropped:
			for _, clients := range h.rooms {
				for c := range clients {
					if c.sessionID == sessionID {
						h.remove(c)
					}
				}
			}
		}
	}
}

// Broadcast queues an event for the room's watchers. Never blocks the
// mutating request; under sustained overload events are dropped.
func (h *Hub) Broadcast(ev Event) {
	select {
	case h.events <- ev:
	default:
		h.logger.Warn().Str("room_id", ev.RoomID).Msg("event queue full, dropping broadcast")
	}
}

// WatchAuth subscribes the hub to auth-state changes so connections of
// signed-out sessions are closed. Returns the unsubscribe handle.
func (h *Hub) WatchAuth(broker *auth.Broker) func() {
	return broker.Subscribe(func(ev auth.Event) {
		if ev.Type != auth.EventSignedOut {
			return
		}
		select {
		case h.dropped <- ev.SessionID:
		default:
		}
	})
}

func (h *Hub) remove(c *Client) {
	clients, ok := h.rooms[c.roomID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, c.roomID)
	}
	c.close()
}
