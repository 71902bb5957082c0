package chat

import (
	"context"

	"github.com/pkg/errors"

	"github.com/rahmanfaizur/PulseChat/internal/data"
	"github.com/rahmanfaizur/PulseChat/internal/events"
)

// MarkRead moves the caller's watermark to messageID, which must belong to
// the conversation.
func (s *Service) MarkRead(ctx context.Context, conversationID, userID, messageID string) error {
	m, err := s.requireMember(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return storeErr(err, "get message", ErrNotFound)
	}
	if msg.ConversationID != conversationID {
		return errors.Wrap(ErrNotFound, "message is not in this conversation")
	}
	if err := s.members.SetLastRead(ctx, m.ID, messageID); err != nil {
		return storeErr(err, "set last read", ErrNotAMember)
	}
	s.publish(ctx, events.KindReadMarked, conversationID, messageID, userID)
	return nil
}

// unreadCount counts messages from others after the membership's watermark.
// A never-set watermark counts every message from others; a watermark whose
// message no longer resolves counts as fully read.
func (s *Service) unreadCount(ctx context.Context, m *data.Membership) (int64, error) {
	if m.LastReadMessageID == "" {
		n, err := s.messages.CountFromOthers(ctx, m.ConversationID, m.UserID, nil)
		return n, storeErr(err, "count unread", ErrNotFound)
	}

	lastRead, err := s.messages.GetMessage(ctx, m.LastReadMessageID)
	if errors.Is(err, data.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr(err, "get watermark", ErrNotFound)
	}
	n, err := s.messages.CountFromOthers(ctx, m.ConversationID, m.UserID, &lastRead.CreatedAt)
	return n, storeErr(err, "count unread", ErrNotFound)
}
