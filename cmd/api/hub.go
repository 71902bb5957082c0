package main

import (
	"sync"

	jww "github.com/spf13/jwalterweatherman"

	v1 "github.com/rahmanfaizur/PulseChat/api/chat/v1"
	"github.com/rahmanfaizur/PulseChat/internal/events"
)

// subscriptionBuffer is how many undelivered events one stream may queue
// before further events for it are dropped.
const subscriptionBuffer = 64

// ConnectionHub manages active change-feed streams for connected users.
// It maps user ids to one or more queues so every open stream of a user
// receives the events for that user's conversations.
type ConnectionHub struct {
	mu      sync.RWMutex
	streams map[string]map[int64]chan *v1.Event
	nextID  int64
	closed  bool
}

// NewConnectionHub creates a new hub instance.
func NewConnectionHub() *ConnectionHub {
	return &ConnectionHub{streams: make(map[string]map[int64]chan *v1.Event)}
}

// Register adds a queue for userID and returns its id plus the channel the
// stream should drain. The channel is closed on Unregister or Close.
func (h *ConnectionHub) Register(userID string) (int64, <-chan *v1.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan *v1.Event, subscriptionBuffer)
	h.nextID++
	id := h.nextID
	if h.closed {
		close(ch)
		return id, ch
	}
	if _, ok := h.streams[userID]; !ok {
		h.streams[userID] = make(map[int64]chan *v1.Event)
	}
	h.streams[userID][id] = ch
	return id, ch
}

// Unregister removes a previously-registered queue.
func (h *ConnectionHub) Unregister(userID string, id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.streams[userID]; ok {
		if ch, ok := conns[id]; ok {
			close(ch)
			delete(conns, id)
		}
		if len(conns) == 0 {
			delete(h.streams, userID)
		}
	}
}

// SendToUser queues ev on every stream of userID and reports how many
// accepted it. A full queue drops the event for that stream only.
func (h *ConnectionHub) SendToUser(userID string, ev *v1.Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, ch := range h.streams[userID] {
		select {
		case ch <- ev:
			delivered++
		default:
			jww.WARN.Printf("subscription %d of %s is full; dropping %s", id, userID, ev.Kind)
		}
	}
	return delivered
}

// Deliver routes a change event to every member it names. It is the hub's
// events.Handler.
func (h *ConnectionHub) Deliver(e events.Event) {
	ev := toEvent(e)
	for _, uid := range e.MemberIDs {
		h.SendToUser(uid, ev)
	}
}

// Close ends every stream and refuses new ones.
func (h *ConnectionHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for uid, conns := range h.streams {
		for _, ch := range conns {
			close(ch)
		}
		delete(h.streams, uid)
	}
}

// Connected reports how many streams userID has open.
func (h *ConnectionHub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams[userID])
}
