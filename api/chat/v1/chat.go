// Package chatv1 defines the wire types and gRPC service for chat.v1.
// Messages travel as JSON over gRPC (see Codec).
package chatv1

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Empty struct{}

type User struct {
	Id          string                 `json:"id"`
	ExternalId  string                 `json:"externalId"`
	Email       string                 `json:"email"`
	DisplayName string                 `json:"displayName,omitempty"`
	AvatarUrl   string                 `json:"avatarUrl,omitempty"`
	IsOnline    bool                   `json:"isOnline"`
	LastSeenAt  *timestamppb.Timestamp `json:"lastSeenAt,omitempty"`
}

type SyncIdentityRequest struct {
	// DisplayName and AvatarUrl override the token's profile claims when set.
	DisplayName string `json:"displayName,omitempty"`
	AvatarUrl   string `json:"avatarUrl,omitempty"`
}

func (x *SyncIdentityRequest) GetDisplayName() string {
	if x != nil {
		return x.DisplayName
	}
	return ""
}

func (x *SyncIdentityRequest) GetAvatarUrl() string {
	if x != nil {
		return x.AvatarUrl
	}
	return ""
}

type SyncIdentityResponse struct {
	UserId string `json:"userId"`
}

type SetPresenceRequest struct {
	Online bool `json:"online"`
}

func (x *SetPresenceRequest) GetOnline() bool {
	return x != nil && x.Online
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}

type GetOrCreateDirectConversationRequest struct {
	OtherUserId string `json:"otherUserId"`
}

func (x *GetOrCreateDirectConversationRequest) GetOtherUserId() string {
	if x != nil {
		return x.OtherUserId
	}
	return ""
}

type CreateGroupConversationRequest struct {
	Name      string   `json:"name"`
	MemberIds []string `json:"memberIds"`
	AvatarUrl string   `json:"avatarUrl,omitempty"`
}

func (x *CreateGroupConversationRequest) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *CreateGroupConversationRequest) GetMemberIds() []string {
	if x != nil {
		return x.MemberIds
	}
	return nil
}

func (x *CreateGroupConversationRequest) GetAvatarUrl() string {
	if x != nil {
		return x.AvatarUrl
	}
	return ""
}

type ConversationIdResponse struct {
	ConversationId string `json:"conversationId"`
}

type Conversation struct {
	Id           string                 `json:"id"`
	IsGroup      bool                   `json:"isGroup"`
	Name         string                 `json:"name,omitempty"`
	AvatarUrl    string                 `json:"avatarUrl,omitempty"`
	CreatedAt    *timestamppb.Timestamp `json:"createdAt"`
	OtherMembers []*User                `json:"otherMembers"`
	LastMessage  *Message               `json:"lastMessage,omitempty"`
	UnreadCount  int64                  `json:"unreadCount"`
}

type ListMyConversationsRequest struct{}

type ListMyConversationsResponse struct {
	Conversations []*Conversation `json:"conversations"`
}

// ConversationRequest addresses one conversation; typing RPCs use it.
type ConversationRequest struct {
	ConversationId string `json:"conversationId"`
}

func (x *ConversationRequest) GetConversationId() string {
	if x != nil {
		return x.ConversationId
	}
	return ""
}

type ListTypingMembersResponse struct {
	Users []*User `json:"users"`
}

type SendMessageRequest struct {
	ConversationId string `json:"conversationId"`
	Content        string `json:"content"`
	ReplyToId      string `json:"replyToId,omitempty"`
}

func (x *SendMessageRequest) GetConversationId() string {
	if x != nil {
		return x.ConversationId
	}
	return ""
}

func (x *SendMessageRequest) GetContent() string {
	if x != nil {
		return x.Content
	}
	return ""
}

func (x *SendMessageRequest) GetReplyToId() string {
	if x != nil {
		return x.ReplyToId
	}
	return ""
}

type ForwardMessageRequest struct {
	ConversationId string `json:"conversationId"`
	Content        string `json:"content"`
}

func (x *ForwardMessageRequest) GetConversationId() string {
	if x != nil {
		return x.ConversationId
	}
	return ""
}

func (x *ForwardMessageRequest) GetContent() string {
	if x != nil {
		return x.Content
	}
	return ""
}

type MessageIdResponse struct {
	MessageId string `json:"messageId"`
}

type Sender struct {
	Name      string `json:"name,omitempty"`
	AvatarUrl string `json:"avatarUrl,omitempty"`
	IsOnline  bool   `json:"isOnline"`
}

type Reactor struct {
	Id         string `json:"id"`
	ExternalId string `json:"externalId"`
	Name       string `json:"name,omitempty"`
	AvatarUrl  string `json:"avatarUrl,omitempty"`
}

type ReactionGroup struct {
	Emoji   string     `json:"emoji"`
	UserIds []string   `json:"userIds"`
	Users   []*Reactor `json:"users"`
}

type ReplyPreview struct {
	MessageId       string `json:"messageId"`
	Content         string `json:"content"`
	SenderName      string `json:"senderName"`
	SenderAvatarUrl string `json:"senderAvatarUrl,omitempty"`
}

type Message struct {
	Id             string                 `json:"id"`
	ConversationId string                 `json:"conversationId"`
	SenderId       string                 `json:"senderId"`
	Content        string                 `json:"content"`
	IsDeleted      bool                   `json:"isDeleted"`
	ReplyToId      string                 `json:"replyToId,omitempty"`
	CreatedAt      *timestamppb.Timestamp `json:"createdAt"`

	// set on ListMessages only
	Sender    *Sender          `json:"sender,omitempty"`
	IsMine    bool             `json:"isMine"`
	Reactions []*ReactionGroup `json:"reactions"`
	ReplyTo   *ReplyPreview    `json:"replyTo,omitempty"`
}

type ListMessagesResponse struct {
	Messages []*Message `json:"messages"`
}

type DeleteMessageRequest struct {
	MessageId string `json:"messageId"`
}

func (x *DeleteMessageRequest) GetMessageId() string {
	if x != nil {
		return x.MessageId
	}
	return ""
}

type MarkReadRequest struct {
	ConversationId string `json:"conversationId"`
	MessageId      string `json:"messageId"`
}

func (x *MarkReadRequest) GetConversationId() string {
	if x != nil {
		return x.ConversationId
	}
	return ""
}

func (x *MarkReadRequest) GetMessageId() string {
	if x != nil {
		return x.MessageId
	}
	return ""
}

type ToggleReactionRequest struct {
	MessageId string `json:"messageId"`
	Emoji     string `json:"emoji"`
}

func (x *ToggleReactionRequest) GetMessageId() string {
	if x != nil {
		return x.MessageId
	}
	return ""
}

func (x *ToggleReactionRequest) GetEmoji() string {
	if x != nil {
		return x.Emoji
	}
	return ""
}

type ToggleReactionResponse struct {
	Added bool `json:"added"`
}

type SubscribeRequest struct{}

// Event tells a subscriber that a conversation changed.
type Event struct {
	Kind           string                 `json:"kind"`
	ConversationId string                 `json:"conversationId"`
	MessageId      string                 `json:"messageId,omitempty"`
	ActorId        string                 `json:"actorId"`
	At             *timestamppb.Timestamp `json:"at"`
}
