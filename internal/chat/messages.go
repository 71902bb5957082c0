package chat

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/rahmanfaizur/PulseChat/internal/data"
	"github.com/rahmanfaizur/PulseChat/internal/events"
)

// SenderView is the sender identity shown next to a message.
type SenderView struct {
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	IsOnline  bool   `json:"isOnline"`
}

// ReplyPreview summarizes the message a reply points at.
type ReplyPreview struct {
	MessageID       string `json:"messageId"`
	Content         string `json:"content"`
	SenderName      string `json:"senderName"`
	SenderAvatarURL string `json:"senderAvatarUrl,omitempty"`
}

// MessageView is a message as one viewer sees it.
type MessageView struct {
	*data.Message
	Sender    *SenderView     `json:"sender,omitempty"`
	IsMine    bool            `json:"isMine"`
	Reactions []ReactionGroup `json:"reactions"`
	ReplyTo   *ReplyPreview   `json:"replyTo,omitempty"`
}

// Send appends a message and advances the sender's watermark to it.
// replyToID is stored as given; a dangling reference only loses its
// preview at read time.
func (s *Service) Send(ctx context.Context, conversationID, senderID, content, replyToID string) (string, error) {
	return s.appendMessage(ctx, conversationID, senderID, content, replyToID)
}

// Forward appends content marked as forwarded, without a reply reference.
func (s *Service) Forward(ctx context.Context, conversationID, senderID, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", errors.Wrap(ErrInvalidArgument, "message content is required")
	}
	return s.appendMessage(ctx, conversationID, senderID, ForwardPrefix+strings.TrimSpace(content), "")
}

func (s *Service) appendMessage(ctx context.Context, conversationID, senderID, content, replyToID string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.Wrap(ErrInvalidArgument, "message content is required")
	}

	var id string
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		m, err := s.requireMember(ctx, conversationID, senderID)
		if err != nil {
			return err
		}
		msg := &data.Message{
			ConversationID: conversationID,
			SenderID:       senderID,
			Content:        content,
			ReplyToID:      replyToID,
			CreatedAt:      s.clock(),
		}
		if err := s.messages.InsertMessage(ctx, msg); err != nil {
			return storeErr(err, "insert message", ErrNotFound)
		}
		// a message you just wrote is never unread to you
		if err := s.members.SetLastRead(ctx, m.ID, msg.ID); err != nil {
			return storeErr(err, "set last read", ErrNotAMember)
		}
		id = msg.ID
		return nil
	})
	if err != nil {
		return "", storeErr(err, "send message", ErrNotFound)
	}
	s.publish(ctx, events.KindMessageSent, conversationID, id, senderID)
	return id, nil
}

// List returns the conversation's messages, oldest first, with sender,
// reactions and reply previews resolved for viewerID.
func (s *Service) List(ctx context.Context, conversationID, viewerID string) ([]MessageView, error) {
	if _, err := s.requireMember(ctx, conversationID, viewerID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, storeErr(err, "list messages", ErrNotFound)
	}

	now := s.clock()
	users := newUserCache(s.users)
	out := make([]MessageView, 0, len(msgs))
	for _, msg := range msgs {
		v := MessageView{Message: msg, IsMine: msg.SenderID == viewerID}

		sender, err := users.get(ctx, msg.SenderID)
		if err != nil {
			return nil, err
		}
		if sender != nil {
			v.Sender = &SenderView{Name: sender.DisplayName, AvatarURL: sender.AvatarURL, IsOnline: IsOnline(sender, now)}
		}

		if v.Reactions, err = s.reactionGroups(ctx, msg.ID, users); err != nil {
			return nil, err
		}
		if v.ReplyTo, err = s.replyPreview(ctx, msg, users); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// replyPreview resolves msg's reply target. Targets that are missing or in
// another conversation yield no preview.
func (s *Service) replyPreview(ctx context.Context, msg *data.Message, users *userCache) (*ReplyPreview, error) {
	if msg.ReplyToID == "" {
		return nil, nil
	}
	target, err := s.messages.GetMessage(ctx, msg.ReplyToID)
	if errors.Is(err, data.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err, "get reply target", ErrNotFound)
	}
	if target.ConversationID != msg.ConversationID {
		return nil, nil
	}

	p := &ReplyPreview{MessageID: target.ID, Content: target.Content, SenderName: UnknownSender}
	if target.IsDeleted {
		p.Content = DeletedPlaceholder
	}
	sender, err := users.get(ctx, target.SenderID)
	if err != nil {
		return nil, err
	}
	if sender != nil {
		if sender.DisplayName != "" {
			p.SenderName = sender.DisplayName
		}
		p.SenderAvatarURL = sender.AvatarURL
	}
	return p, nil
}

// Delete soft-deletes a message. Only the sender may delete; deleting an
// already deleted message is a no-op.
func (s *Service) Delete(ctx context.Context, messageID, requesterID string) error {
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return storeErr(err, "get message", ErrNotFound)
	}
	if msg.SenderID != requesterID {
		return errors.Wrap(ErrForbidden, "can only delete your own messages")
	}
	if msg.IsDeleted {
		return nil
	}
	if err := s.messages.MarkDeleted(ctx, messageID, DeletedPlaceholder); err != nil {
		return storeErr(err, "mark deleted", ErrNotFound)
	}
	s.publish(ctx, events.KindMessageDeleted, msg.ConversationID, messageID, requesterID)
	return nil
}

// userCache memoizes user lookups for one read. Missing users are cached
// as nil.
type userCache struct {
	store UserStore
	byID  map[string]*data.User
}

func newUserCache(store UserStore) *userCache {
	return &userCache{store: store, byID: make(map[string]*data.User)}
}

func (c *userCache) get(ctx context.Context, id string) (*data.User, error) {
	if u, ok := c.byID[id]; ok {
		return u, nil
	}
	u, err := c.store.GetUser(ctx, id)
	if errors.Is(err, data.ErrNotFound) {
		c.byID[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err, "get user", ErrNotFound)
	}
	c.byID[id] = u
	return u, nil
}
