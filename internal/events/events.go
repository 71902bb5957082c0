// Package events carries post-commit change notifications from the chat
// core to connected subscribers. Events are invalidation hints: receivers
// refetch state through the query operations.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind names what changed.
type Kind string

const (
	KindConversationCreated Kind = "conversation.created"
	KindMessageSent         Kind = "message.sent"
	KindMessageDeleted      Kind = "message.deleted"
	KindReactionToggled     Kind = "reaction.toggled"
	KindTypingChanged       Kind = "typing.changed"
	KindReadMarked          Kind = "read.marked"
)

// Event describes one committed change in a conversation. MemberIDs lists
// every member at publish time and is the routing key for delivery.
type Event struct {
	Kind           Kind      `json:"kind"`
	ConversationID string    `json:"conversationId"`
	MessageID      string    `json:"messageId,omitempty"`
	ActorID        string    `json:"actorId"`
	MemberIDs      []string  `json:"memberIds"`
	At             time.Time `json:"at"`
}

// Publisher accepts events after the change they describe has committed.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Handler receives dispatched events. It must not block.
type Handler func(Event)

// Bus dispatches events to in-process handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewBus returns a Bus with no handlers.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string]Handler)}
}

// Subscribe registers h and returns a func that removes it.
func (b *Bus) Subscribe(h Handler) (cancel func()) {
	id := uuid.NewString()
	b.mu.Lock()
	b.handlers[id] = h
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish calls every handler with e. It never fails.
func (b *Bus) Publish(_ context.Context, e Event) error {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
	return nil
}
