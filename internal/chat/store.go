package chat

import (
	"context"
	"time"

	"github.com/rahmanfaizur/PulseChat/internal/data"
)

// Store adapters return data.ErrNotFound for missing documents and
// data.ErrDuplicate for unique index violations. Any other error is treated
// as a store transport failure.

// UserStore persists users.
type UserStore interface {
	InsertUser(ctx context.Context, u *data.User) error
	GetUser(ctx context.Context, id string) (*data.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*data.User, error)
	UpdateProfile(ctx context.Context, id, email, displayName, avatarURL string) error
	SetPresence(ctx context.Context, id string, online bool, at time.Time) error
	ListUsers(ctx context.Context) ([]*data.User, error)
}

// ConversationStore persists conversations.
type ConversationStore interface {
	InsertConversation(ctx context.Context, c *data.Conversation) error
	GetConversation(ctx context.Context, id string) (*data.Conversation, error)
}

// MemberStore persists memberships.
type MemberStore interface {
	InsertMembership(ctx context.Context, m *data.Membership) error
	GetMembership(ctx context.Context, conversationID, userID string) (*data.Membership, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]*data.Membership, error)
	ListMembershipsByConversation(ctx context.Context, conversationID string) ([]*data.Membership, error)
	// SetTypingUntil sets the typing expiry, or unsets it when until is nil.
	SetTypingUntil(ctx context.Context, id string, until *time.Time) error
	SetLastRead(ctx context.Context, id, messageID string) error
}

// MessageStore persists messages.
type MessageStore interface {
	InsertMessage(ctx context.Context, m *data.Message) error
	GetMessage(ctx context.Context, id string) (*data.Message, error)
	// ListMessages returns a conversation's messages in creation order.
	ListMessages(ctx context.Context, conversationID string) ([]*data.Message, error)
	// LatestMessage returns the newest message or data.ErrNotFound.
	LatestMessage(ctx context.Context, conversationID string) (*data.Message, error)
	// CountFromOthers counts messages not sent by userID, restricted to
	// those created strictly after `after` when it is non-nil.
	CountFromOthers(ctx context.Context, conversationID, userID string, after *time.Time) (int64, error)
	MarkDeleted(ctx context.Context, id, placeholder string) error
}

// ReactionStore persists the reaction ledger.
type ReactionStore interface {
	InsertReaction(ctx context.Context, r *data.Reaction) error
	FindReaction(ctx context.Context, messageID, userID, emoji string) (*data.Reaction, error)
	DeleteReaction(ctx context.Context, id string) error
	// ListReactions returns a message's reactions in insertion order.
	ListReactions(ctx context.Context, messageID string) ([]*data.Reaction, error)
}

// Transactor runs fn as one atomic unit. fn must use the context it is given.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores groups every store the service needs.
type Stores struct {
	Users         UserStore
	Conversations ConversationStore
	Members       MemberStore
	Messages      MessageStore
	Reactions     ReactionStore
	Tx            Transactor
}
