package main

import (
	"context"

	jww "github.com/spf13/jwalterweatherman"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/rahmanfaizur/PulseChat/api/chat/v1"
	"github.com/rahmanfaizur/PulseChat/internal/chat"
)

// SyncIdentity creates or refreshes the caller's user row from the token
// claims. Request fields override the profile the token carries.
func (s *Server) SyncIdentity(ctx context.Context, req *v1.SyncIdentityRequest) (*v1.SyncIdentityResponse, error) {
	c, err := claims(ctx)
	if err != nil {
		return nil, err
	}

	id := chat.Identity{ExternalID: c.Subject, Email: c.Email, DisplayName: c.Name, AvatarURL: c.Picture}
	if n := req.GetDisplayName(); n != "" {
		id.DisplayName = n
	}
	if a := req.GetAvatarUrl(); a != "" {
		id.AvatarURL = a
	}

	userID, err := s.chat.ResolveOrCreate(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.SyncIdentityResponse{UserId: userID}, nil
}

// SetPresence records a heartbeat or sign-off for the caller.
func (s *Server) SetPresence(ctx context.Context, req *v1.SetPresenceRequest) (*v1.Empty, error) {
	c, err := claims(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.chat.SetPresence(ctx, c.Subject, req.GetOnline()); err != nil {
		return nil, toStatus(err)
	}
	return &v1.Empty{}, nil
}

// ListUsers returns every user with derived presence.
func (s *Server) ListUsers(ctx context.Context, _ *v1.ListUsersRequest) (*v1.ListUsersResponse, error) {
	if _, err := claims(ctx); err != nil {
		return nil, err
	}
	users, err := s.chat.ListUsers(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.ListUsersResponse{Users: toUsers(users)}, nil
}

// GetOrCreateDirectConversation returns the one-to-one conversation with
// another user.
func (s *Server) GetOrCreateDirectConversation(ctx context.Context, req *v1.GetOrCreateDirectConversationRequest) (*v1.ConversationIdResponse, error) {
	me, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.chat.GetOrCreateDirect(ctx, me.ID, req.GetOtherUserId())
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.ConversationIdResponse{ConversationId: id}, nil
}

// CreateGroupConversation creates a group with the caller as a member.
func (s *Server) CreateGroupConversation(ctx context.Context, req *v1.CreateGroupConversationRequest) (*v1.ConversationIdResponse, error) {
	me, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.chat.CreateGroup(ctx, req.GetName(), req.GetMemberIds(), me.ID, req.GetAvatarUrl())
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.ConversationIdResponse{ConversationId: id}, nil
}

// ListMyConversations returns the caller's conversation list.
func (s *Server) ListMyConversations(ctx context.Context, _ *v1.ListMyConversationsRequest) (*v1.ListMyConversationsResponse, error) {
	resp := &v1.ListMyConversationsResponse{Conversations: []*v1.Conversation{}}
	me, err := s.viewer(ctx)
	if err != nil || me == nil {
		return resp, err
	}

	views, err := s.chat.ListForUser(ctx, me.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	for _, v := range views {
		resp.Conversations = append(resp.Conversations, toConversation(v))
	}
	return resp, nil
}

// SetTyping marks the caller as typing.
func (s *Server) SetTyping(ctx context.Context, req *v1.ConversationRequest) (*v1.Empty, error) {
	me, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.chat.SetTyping(ctx, req.GetConversationId(), me.ID); err != nil {
		return nil, toStatus(err)
	}
	return &v1.Empty{}, nil
}

// ClearTyping ends the caller's typing signal.
func (s *Server) ClearTyping(ctx context.Context, req *v1.ConversationRequest) (*v1.Empty, error) {
	me, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.chat.ClearTyping(ctx, req.GetConversationId(), me.ID); err != nil {
		return nil, toStatus(err)
	}
	return &v1.Empty{}, nil
}

// ListTypingMembers returns the other members currently typing.
func (s *Server) ListTypingMembers(ctx context.Context, req *v1.ConversationRequest) (*v1.ListTypingMembersResponse, error) {
	resp := &v1.ListTypingMembersResponse{Users: []*v1.User{}}
	me, err := s.viewer(ctx)
	if err != nil || me == nil {
		return resp, err
	}

	users, err := s.chat.ListTyping(ctx, req.GetConversationId(), me.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	resp.Users = toUsers(users)
	return resp, nil
}

// SendMessage appends a message to a conversation.
func (s *Server) SendMessage(ctx context.Context, req *v1.SendMessageRequest) (*v1.MessageIdResponse, error) {
	me, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.chat.Send(ctx, req.GetConversationId(), me.ID, req.GetContent(), req.GetReplyToId())
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.MessageIdResponse{MessageId: id}, nil
}

// ForwardMessage appends forwarded content to a conversation.
func (s *Server) ForwardMessage(ctx context.Context, req *v1.ForwardMessageRequest) (*v1.MessageIdResponse, error) {
	me, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.chat.Forward(ctx, req.GetConversationId(), me.ID, req.GetContent())
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.MessageIdResponse{MessageId: id}, nil
}

// ListMessages returns a conversation's messages as the caller sees them.
func (s *Server) ListMessages(ctx context.Context, req *v1.ConversationRequest) (*v1.ListMessagesResponse, error) {
	resp := &v1.ListMessagesResponse{Messages: []*v1.Message{}}
	me, err := s.viewer(ctx)
	if err != nil || me == nil {
		return resp, err
	}

	views, err := s.chat.List(ctx, req.GetConversationId(), me.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	for _, v := range views {
		resp.Messages = append(resp.Messages, toMessageView(v))
	}
	return resp, nil
}

// DeleteMessage soft-deletes one of the caller's messages.
func (s *Server) DeleteMessage(ctx context.Context, req *v1.DeleteMessageRequest) (*v1.Empty, error) {
	me, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.chat.Delete(ctx, req.GetMessageId(), me.ID); err != nil {
		return nil, toStatus(err)
	}
	return &v1.Empty{}, nil
}

// MarkRead moves the caller's read watermark.
func (s *Server) MarkRead(ctx context.Context, req *v1.MarkReadRequest) (*v1.Empty, error) {
	me, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.chat.MarkRead(ctx, req.GetConversationId(), me.ID, req.GetMessageId()); err != nil {
		return nil, toStatus(err)
	}
	return &v1.Empty{}, nil
}

// ToggleReaction adds or removes the caller's emoji on a message.
func (s *Server) ToggleReaction(ctx context.Context, req *v1.ToggleReactionRequest) (*v1.ToggleReactionResponse, error) {
	me, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	added, err := s.chat.Toggle(ctx, req.GetMessageId(), me.ID, req.GetEmoji())
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.ToggleReactionResponse{Added: added}, nil
}

// Subscribe streams change events for the caller's conversations until the
// client goes away or the server shuts down.
func (s *Server) Subscribe(_ *v1.SubscribeRequest, stream v1.ChatService_SubscribeServer) error {
	ctx := stream.Context()
	me, err := s.caller(ctx)
	if err != nil {
		return err
	}
	if s.hub == nil {
		return status.Errorf(codes.Unavailable, "change feed disabled")
	}

	// Register this stream in the hub and make sure it is removed when the
	// stream returns.
	id, events := s.hub.Register(me.ID)
	defer s.hub.Unregister(me.ID, id)
	jww.DEBUG.Printf("subscription %d opened for %s", id, me.ID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := stream.Send(ev); err != nil {
				return status.Errorf(codes.Unavailable, "failed to send event: %v", err)
			}
		}
	}
}
