// Package memory is an in-process implementation of the chat stores. It
// backs tests and single-instance development runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rahmanfaizur/PulseChat/internal/data"
)

// Store keeps every collection in maps guarded by one RWMutex.
// Transactions are serialized by txMu; single operations only take mu.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users         map[string]*data.User
	conversations map[string]*data.Conversation
	memberships   map[string]*data.Membership
	messages      map[string]*data.Message
	reactions     map[string]*data.Reaction

	// insertion order, used where the Mongo stores sort by _id
	memberOrder   []string
	messageOrder  []string
	reactionOrder []string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:         make(map[string]*data.User),
		conversations: make(map[string]*data.Conversation),
		memberships:   make(map[string]*data.Membership),
		messages:      make(map[string]*data.Message),
		reactions:     make(map[string]*data.Reaction),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// RunInTx runs fn while holding the transaction lock. Writes are applied
// directly, so a failing fn leaves its earlier writes in place; callers
// order their writes so a partial run is recoverable.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

// ===== users =====

func (s *Store) InsertUser(_ context.Context, u *data.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.ExternalID == u.ExternalID {
			return data.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*data.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByExternalID(_ context.Context, externalID string) (*data.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ExternalID == externalID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, data.ErrNotFound
}

func (s *Store) UpdateProfile(_ context.Context, id, email, displayName, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return data.ErrNotFound
	}
	u.Email, u.DisplayName, u.AvatarURL = email, displayName, avatarURL
	return nil
}

func (s *Store) SetPresence(_ context.Context, id string, online bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return data.ErrNotFound
	}
	u.OnlineFlag, u.LastSeenAt = online, at
	return nil
}

func (s *Store) ListUsers(context.Context) ([]*data.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*data.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ===== conversations =====

func (s *Store) InsertConversation(_ context.Context, c *data.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	s.conversations[c.ID] = &cp
	return nil
}

func (s *Store) GetConversation(_ context.Context, id string) (*data.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// ===== memberships =====

func copyMembership(m *data.Membership) *data.Membership {
	cp := *m
	if m.TypingUntil != nil {
		t := *m.TypingUntil
		cp.TypingUntil = &t
	}
	return &cp
}

func (s *Store) InsertMembership(_ context.Context, m *data.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.memberships {
		if existing.ConversationID == m.ConversationID && existing.UserID == m.UserID {
			return data.ErrDuplicate
		}
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	s.memberships[m.ID] = copyMembership(m)
	s.memberOrder = append(s.memberOrder, m.ID)
	return nil
}

func (s *Store) GetMembership(_ context.Context, conversationID, userID string) (*data.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.memberships {
		if m.ConversationID == conversationID && m.UserID == userID {
			return copyMembership(m), nil
		}
	}
	return nil, data.ErrNotFound
}

func (s *Store) ListMembershipsByUser(_ context.Context, userID string) ([]*data.Membership, error) {
	return s.filterMemberships(func(m *data.Membership) bool { return m.UserID == userID }), nil
}

func (s *Store) ListMembershipsByConversation(_ context.Context, conversationID string) ([]*data.Membership, error) {
	return s.filterMemberships(func(m *data.Membership) bool { return m.ConversationID == conversationID }), nil
}

func (s *Store) filterMemberships(keep func(*data.Membership) bool) []*data.Membership {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*data.Membership
	for _, id := range s.memberOrder {
		if m := s.memberships[id]; keep(m) {
			out = append(out, copyMembership(m))
		}
	}
	return out
}

func (s *Store) SetTypingUntil(_ context.Context, id string, until *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memberships[id]
	if !ok {
		return data.ErrNotFound
	}
	m.TypingUntil = nil
	if until != nil {
		t := *until
		m.TypingUntil = &t
	}
	return nil
}

func (s *Store) SetLastRead(_ context.Context, id, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memberships[id]
	if !ok {
		return data.ErrNotFound
	}
	m.LastReadMessageID = messageID
	return nil
}

// ===== messages =====

func (s *Store) InsertMessage(_ context.Context, m *data.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	cp := *m
	s.messages[m.ID] = &cp
	s.messageOrder = append(s.messageOrder, m.ID)
	return nil
}

func (s *Store) GetMessage(_ context.Context, id string) (*data.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

// conversationMessages returns copies in creation order, insertion order
// breaking ties. Caller holds mu.
func (s *Store) conversationMessages(conversationID string) []*data.Message {
	var out []*data.Message
	for _, id := range s.messageOrder {
		if m := s.messages[id]; m.ConversationID == conversationID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) ListMessages(_ context.Context, conversationID string) ([]*data.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversationMessages(conversationID), nil
}

func (s *Store) LatestMessage(_ context.Context, conversationID string) (*data.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.conversationMessages(conversationID)
	if len(msgs) == 0 {
		return nil, data.ErrNotFound
	}
	return msgs[len(msgs)-1], nil
}

func (s *Store) CountFromOthers(_ context.Context, conversationID, userID string, after *time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, m := range s.messages {
		if m.ConversationID != conversationID || m.SenderID == userID {
			continue
		}
		if after != nil && !m.CreatedAt.After(*after) {
			continue
		}
		n++
	}
	return n, nil
}

func (s *Store) MarkDeleted(_ context.Context, id, placeholder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return data.ErrNotFound
	}
	m.IsDeleted, m.Content = true, placeholder
	return nil
}

// ===== reactions =====

func (s *Store) InsertReaction(_ context.Context, r *data.Reaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reactions {
		if existing.MessageID == r.MessageID && existing.UserID == r.UserID && existing.Emoji == r.Emoji {
			return data.ErrDuplicate
		}
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	cp := *r
	s.reactions[r.ID] = &cp
	s.reactionOrder = append(s.reactionOrder, r.ID)
	return nil
}

func (s *Store) FindReaction(_ context.Context, messageID, userID, emoji string) (*data.Reaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reactions {
		if r.MessageID == messageID && r.UserID == userID && r.Emoji == emoji {
			cp := *r
			return &cp, nil
		}
	}
	return nil, data.ErrNotFound
}

func (s *Store) DeleteReaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reactions[id]; !ok {
		return data.ErrNotFound
	}
	delete(s.reactions, id)
	for i, rid := range s.reactionOrder {
		if rid == id {
			s.reactionOrder = append(s.reactionOrder[:i], s.reactionOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListReactions(_ context.Context, messageID string) ([]*data.Reaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*data.Reaction
	for _, id := range s.reactionOrder {
		if r := s.reactions[id]; r.MessageID == messageID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}
