// Package chat implements the conversation, message and presence core:
// identity resolution, presence, the conversation directory, typing
// signals, the message log, the reaction ledger and read state.
//
// Every operation runs against the store interfaces in store.go and
// assembles its views at read time; nothing aggregated is stored.
package chat

import (
	"context"
	"time"

	jww "github.com/spf13/jwalterweatherman"

	"github.com/rahmanfaizur/PulseChat/internal/data"
	"github.com/rahmanfaizur/PulseChat/internal/events"
)

const (
	// OnlineThreshold is how long a stored online flag is trusted without a
	// fresh heartbeat.
	OnlineThreshold = 60 * time.Second

	// TypingTTL is how long one SetTyping call keeps a member typing.
	TypingTTL = 3000 * time.Millisecond

	// DeletedPlaceholder replaces the content of a deleted message.
	DeletedPlaceholder = "This message was deleted"

	// ForwardPrefix marks forwarded content.
	ForwardPrefix = "↪ "

	// UnknownSender names a reply target whose sender no longer resolves.
	UnknownSender = "Unknown"
)

// Service is the chat core. It is safe for concurrent use; all shared state
// lives in the stores.
type Service struct {
	users         UserStore
	conversations ConversationStore
	members       MemberStore
	messages      MessageStore
	reactions     ReactionStore
	tx            Transactor

	now       func() time.Time
	publisher events.Publisher
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPublisher sends change events to p after each committed mutation.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// NewService returns a Service over the given stores.
func NewService(st Stores, opts ...Option) *Service {
	s := &Service{
		users:         st.Users,
		conversations: st.Conversations,
		members:       st.Members,
		messages:      st.Messages,
		reactions:     st.Reactions,
		tx:            st.Tx,
		now:           time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// clock returns the current time in the stored precision.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// requireMember returns the caller's membership or ErrNotAMember.
func (s *Service) requireMember(ctx context.Context, conversationID, userID string) (*data.Membership, error) {
	m, err := s.members.GetMembership(ctx, conversationID, userID)
	if err != nil {
		return nil, storeErr(err, "membership lookup", ErrNotAMember)
	}
	return m, nil
}

// publish announces a committed change. Delivery is best-effort: failures
// are logged and never reach the caller.
func (s *Service) publish(ctx context.Context, kind events.Kind, conversationID, messageID, actorID string) {
	if s.publisher == nil {
		return
	}
	ms, err := s.members.ListMembershipsByConversation(ctx, conversationID)
	if err != nil {
		jww.WARN.Printf("event %s for %s not published: %v", kind, conversationID, err)
		return
	}
	ids := make([]string, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.UserID)
	}
	e := events.Event{
		Kind:           kind,
		ConversationID: conversationID,
		MessageID:      messageID,
		ActorID:        actorID,
		MemberIDs:      ids,
		At:             s.clock(),
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		jww.WARN.Printf("event %s for %s not published: %v", kind, conversationID, err)
	}
}
