package chat

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/rahmanfaizur/PulseChat/internal/data"
	"github.com/rahmanfaizur/PulseChat/internal/events"
)

// ConversationView is one row of a user's conversation list.
type ConversationView struct {
	*data.Conversation
	OtherMembers []UserView   `json:"otherMembers"`
	LastMessage  *data.Message `json:"lastMessage,omitempty"`
	UnreadCount  int64        `json:"unreadCount"`
}

// activity is the sort key: the last message time, or creation time for an
// empty conversation.
func (v ConversationView) activity() time.Time {
	if v.LastMessage != nil {
		return v.LastMessage.CreatedAt
	}
	return v.CreatedAt
}

// GetOrCreateDirect returns the direct conversation between a and b,
// creating it with both memberships when none exists.
//
// The lookup and the create are not serialized across pairs: two first
// contacts racing from opposite sides may each create a conversation.
func (s *Service) GetOrCreateDirect(ctx context.Context, a, b string) (string, error) {
	if a == b {
		return "", errors.Wrap(ErrInvalidArgument, "cannot start a conversation with yourself")
	}
	if _, err := s.users.GetUser(ctx, b); err != nil {
		return "", storeErr(err, "lookup user", ErrNotFound)
	}

	var id string
	created := false
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		found, err := s.findDirect(ctx, a, b)
		if err != nil {
			return err
		}
		if found != "" {
			id = found
			return nil
		}

		now := s.clock()
		conv := &data.Conversation{IsGroup: false, CreatedAt: now}
		if err := s.conversations.InsertConversation(ctx, conv); err != nil {
			return storeErr(err, "insert conversation", ErrNotFound)
		}
		for _, uid := range []string{a, b} {
			m := &data.Membership{ConversationID: conv.ID, UserID: uid, CreatedAt: now}
			if err := s.members.InsertMembership(ctx, m); err != nil {
				return storeErr(err, "insert membership", ErrNotFound)
			}
		}
		id, created = conv.ID, true
		return nil
	})
	if err != nil {
		return "", storeErr(err, "create direct conversation", ErrNotFound)
	}
	if created {
		s.publish(ctx, events.KindConversationCreated, id, "", a)
	}
	return id, nil
}

// findDirect scans a's memberships for a non-group conversation b is in.
func (s *Service) findDirect(ctx context.Context, a, b string) (string, error) {
	mine, err := s.members.ListMembershipsByUser(ctx, a)
	if err != nil {
		return "", storeErr(err, "list memberships", ErrNotFound)
	}
	for _, m := range mine {
		conv, err := s.conversations.GetConversation(ctx, m.ConversationID)
		if errors.Is(err, data.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", storeErr(err, "get conversation", ErrNotFound)
		}
		if conv.IsGroup {
			continue
		}
		_, err = s.members.GetMembership(ctx, conv.ID, b)
		if err == nil {
			return conv.ID, nil
		}
		if !errors.Is(err, data.ErrNotFound) {
			return "", storeErr(err, "membership lookup", ErrNotFound)
		}
	}
	return "", nil
}

// CreateGroup creates a group conversation holding every listed member
// plus the creator, each exactly once.
func (s *Service) CreateGroup(ctx context.Context, name string, memberIDs []string, creatorID, avatarURL string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.Wrap(ErrInvalidArgument, "group name is required")
	}

	seen := map[string]bool{creatorID: true}
	all := []string{creatorID}
	for _, id := range memberIDs {
		if id == "" || seen[id] {
			continue
		}
		if _, err := s.users.GetUser(ctx, id); err != nil {
			return "", storeErr(err, "lookup member "+id, ErrNotFound)
		}
		seen[id] = true
		all = append(all, id)
	}

	var id string
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.clock()
		conv := &data.Conversation{
			IsGroup:   true,
			Name:      name,
			AvatarURL: strings.TrimSpace(avatarURL),
			CreatedAt: now,
		}
		if err := s.conversations.InsertConversation(ctx, conv); err != nil {
			return storeErr(err, "insert conversation", ErrNotFound)
		}
		for _, uid := range all {
			m := &data.Membership{ConversationID: conv.ID, UserID: uid, CreatedAt: now}
			if err := s.members.InsertMembership(ctx, m); err != nil {
				return storeErr(err, "insert membership", ErrNotFound)
			}
		}
		id = conv.ID
		return nil
	})
	if err != nil {
		return "", storeErr(err, "create group", ErrNotFound)
	}
	s.publish(ctx, events.KindConversationCreated, id, "", creatorID)
	return id, nil
}

// ListForUser returns the user's conversations with counterpart identity,
// last message and unread count, most recently active first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]ConversationView, error) {
	mine, err := s.members.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "list memberships", ErrNotFound)
	}
	now := s.clock()

	out := make([]ConversationView, 0, len(mine))
	for _, m := range mine {
		conv, err := s.conversations.GetConversation(ctx, m.ConversationID)
		if errors.Is(err, data.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeErr(err, "get conversation", ErrNotFound)
		}

		others, err := s.otherMembers(ctx, conv.ID, userID, now)
		if err != nil {
			return nil, err
		}

		var last *data.Message
		last, err = s.messages.LatestMessage(ctx, conv.ID)
		if err != nil && !errors.Is(err, data.ErrNotFound) {
			return nil, storeErr(err, "latest message", ErrNotFound)
		}

		unread, err := s.unreadCount(ctx, m)
		if err != nil {
			return nil, err
		}

		out = append(out, ConversationView{
			Conversation: conv,
			OtherMembers: others,
			LastMessage:  last,
			UnreadCount:  unread,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].activity().After(out[j].activity())
	})
	return out, nil
}

// otherMembers resolves every member but userID. Members whose user row is
// gone are omitted.
func (s *Service) otherMembers(ctx context.Context, conversationID, userID string, now time.Time) ([]UserView, error) {
	ms, err := s.members.ListMembershipsByConversation(ctx, conversationID)
	if err != nil {
		return nil, storeErr(err, "list members", ErrNotFound)
	}
	views := make([]UserView, 0, len(ms))
	for _, m := range ms {
		if m.UserID == userID {
			continue
		}
		u, err := s.users.GetUser(ctx, m.UserID)
		if errors.Is(err, data.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeErr(err, "get member", ErrNotFound)
		}
		views = append(views, viewUser(u, now))
	}
	return views, nil
}
