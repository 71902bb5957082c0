package main

import (
	"google.golang.org/protobuf/types/known/timestamppb"

	v1 "github.com/rahmanfaizur/PulseChat/api/chat/v1"
	"github.com/rahmanfaizur/PulseChat/internal/chat"
	"github.com/rahmanfaizur/PulseChat/internal/data"
	"github.com/rahmanfaizur/PulseChat/internal/events"
)

func toUser(u *data.User, online bool) *v1.User {
	return &v1.User{
		Id:          u.ID,
		ExternalId:  u.ExternalID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarUrl:   u.AvatarURL,
		IsOnline:    online,
		LastSeenAt:  timestamppb.New(u.LastSeenAt),
	}
}

func toUsers(views []chat.UserView) []*v1.User {
	out := make([]*v1.User, 0, len(views))
	for _, v := range views {
		out = append(out, toUser(v.User, v.IsOnline))
	}
	return out
}

func toMessage(m *data.Message) *v1.Message {
	return &v1.Message{
		Id:             m.ID,
		ConversationId: m.ConversationID,
		SenderId:       m.SenderID,
		Content:        m.Content,
		IsDeleted:      m.IsDeleted,
		ReplyToId:      m.ReplyToID,
		CreatedAt:      timestamppb.New(m.CreatedAt),
	}
}

func toConversation(v chat.ConversationView) *v1.Conversation {
	c := &v1.Conversation{
		Id:           v.ID,
		IsGroup:      v.IsGroup,
		Name:         v.Name,
		AvatarUrl:    v.AvatarURL,
		CreatedAt:    timestamppb.New(v.CreatedAt),
		OtherMembers: toUsers(v.OtherMembers),
		UnreadCount:  v.UnreadCount,
	}
	if v.LastMessage != nil {
		c.LastMessage = toMessage(v.LastMessage)
	}
	return c
}

func toMessageView(v chat.MessageView) *v1.Message {
	m := toMessage(v.Message)
	m.IsMine = v.IsMine
	if v.Sender != nil {
		m.Sender = &v1.Sender{Name: v.Sender.Name, AvatarUrl: v.Sender.AvatarURL, IsOnline: v.Sender.IsOnline}
	}
	if v.ReplyTo != nil {
		m.ReplyTo = &v1.ReplyPreview{
			MessageId:       v.ReplyTo.MessageID,
			Content:         v.ReplyTo.Content,
			SenderName:      v.ReplyTo.SenderName,
			SenderAvatarUrl: v.ReplyTo.SenderAvatarURL,
		}
	}
	m.Reactions = make([]*v1.ReactionGroup, 0, len(v.Reactions))
	for _, g := range v.Reactions {
		rg := &v1.ReactionGroup{Emoji: g.Emoji, UserIds: g.UserIDs, Users: make([]*v1.Reactor, 0, len(g.Users))}
		for _, r := range g.Users {
			rg.Users = append(rg.Users, &v1.Reactor{Id: r.ID, ExternalId: r.ExternalID, Name: r.Name, AvatarUrl: r.AvatarURL})
		}
		m.Reactions = append(m.Reactions, rg)
	}
	return m
}

func toEvent(e events.Event) *v1.Event {
	return &v1.Event{
		Kind:           string(e.Kind),
		ConversationId: e.ConversationID,
		MessageId:      e.MessageID,
		ActorId:        e.ActorID,
		At:             timestamppb.New(e.At),
	}
}
