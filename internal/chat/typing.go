package chat

import (
	"context"

	"github.com/pkg/errors"

	"github.com/rahmanfaizur/PulseChat/internal/data"
	"github.com/rahmanfaizur/PulseChat/internal/events"
)

// SetTyping marks the caller as typing for TypingTTL. Clients refresh it
// while input continues; expiry covers clients that vanish.
func (s *Service) SetTyping(ctx context.Context, conversationID, userID string) error {
	m, err := s.requireMember(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	until := s.clock().Add(TypingTTL)
	if err := s.members.SetTypingUntil(ctx, m.ID, &until); err != nil {
		return storeErr(err, "set typing", ErrNotAMember)
	}
	s.publish(ctx, events.KindTypingChanged, conversationID, "", userID)
	return nil
}

// ClearTyping ends the caller's typing signal immediately.
func (s *Service) ClearTyping(ctx context.Context, conversationID, userID string) error {
	m, err := s.requireMember(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if err := s.members.SetTypingUntil(ctx, m.ID, nil); err != nil {
		return storeErr(err, "clear typing", ErrNotAMember)
	}
	s.publish(ctx, events.KindTypingChanged, conversationID, "", userID)
	return nil
}

// ListTyping returns the members other than viewerID whose typing signal
// has not expired.
func (s *Service) ListTyping(ctx context.Context, conversationID, viewerID string) ([]UserView, error) {
	if _, err := s.requireMember(ctx, conversationID, viewerID); err != nil {
		return nil, err
	}
	ms, err := s.members.ListMembershipsByConversation(ctx, conversationID)
	if err != nil {
		return nil, storeErr(err, "list members", ErrNotFound)
	}

	now := s.clock()
	out := make([]UserView, 0)
	for _, m := range ms {
		if m.UserID == viewerID || m.TypingUntil == nil || !m.TypingUntil.After(now) {
			continue
		}
		u, err := s.users.GetUser(ctx, m.UserID)
		if errors.Is(err, data.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeErr(err, "get typing member", ErrNotFound)
		}
		out = append(out, viewUser(u, now))
	}
	return out, nil
}
