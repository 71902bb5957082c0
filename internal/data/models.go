package data

import (
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by stores when no document matches.
	ErrNotFound = errors.New("data: document not found")

	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("data: duplicate key")
)

// User maps to the users collection. One row per external identity.
type User struct {
	ID          string    `bson:"_id" json:"id"`
	ExternalID  string    `bson:"external_id" json:"externalId"`
	Email       string    `bson:"email" json:"email"`
	DisplayName string    `bson:"display_name,omitempty" json:"displayName,omitempty"`
	AvatarURL   string    `bson:"avatar_url,omitempty" json:"avatarUrl,omitempty"`
	OnlineFlag  bool      `bson:"online" json:"onlineFlag"`
	LastSeenAt  time.Time `bson:"last_seen_at" json:"lastSeenAt"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// Conversation maps to the conversations collection. Name and AvatarURL are
// only meaningful for groups.
type Conversation struct {
	ID        string    `bson:"_id" json:"id"`
	IsGroup   bool      `bson:"is_group" json:"isGroup"`
	Name      string    `bson:"name,omitempty" json:"name,omitempty"`
	AvatarURL string    `bson:"avatar_url,omitempty" json:"avatarUrl,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Membership maps to the memberships collection, unique per
// (conversation_id, user_id).
type Membership struct {
	ID                string     `bson:"_id" json:"id"`
	ConversationID    string     `bson:"conversation_id" json:"conversationId"`
	UserID            string     `bson:"user_id" json:"userId"`
	LastReadMessageID string     `bson:"last_read_message_id,omitempty" json:"lastReadMessageId,omitempty"`
	TypingUntil       *time.Time `bson:"typing_until,omitempty" json:"typingUntil,omitempty"`
	CreatedAt         time.Time  `bson:"created_at" json:"createdAt"`
}

// Message maps to the messages collection. Only IsDeleted and Content ever
// change after insert.
type Message struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversationId"`
	SenderID       string    `bson:"sender_id" json:"senderId"`
	Content        string    `bson:"content" json:"content"`
	IsDeleted      bool      `bson:"is_deleted" json:"isDeleted"`
	ReplyToID      string    `bson:"reply_to_id,omitempty" json:"replyToId,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}

// Reaction maps to the reactions collection, unique per
// (message_id, user_id, emoji).
type Reaction struct {
	ID        string    `bson:"_id" json:"id"`
	MessageID string    `bson:"message_id" json:"messageId"`
	UserID    string    `bson:"user_id" json:"userId"`
	Emoji     string    `bson:"emoji" json:"emoji"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
