package chatv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "chat.v1.ChatService"

// FullMethod returns "/chat.v1.ChatService/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// ChatServiceServer is the server API for ChatService.
type ChatServiceServer interface {
	SyncIdentity(context.Context, *SyncIdentityRequest) (*SyncIdentityResponse, error)
	SetPresence(context.Context, *SetPresenceRequest) (*Empty, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
	GetOrCreateDirectConversation(context.Context, *GetOrCreateDirectConversationRequest) (*ConversationIdResponse, error)
	CreateGroupConversation(context.Context, *CreateGroupConversationRequest) (*ConversationIdResponse, error)
	ListMyConversations(context.Context, *ListMyConversationsRequest) (*ListMyConversationsResponse, error)
	SetTyping(context.Context, *ConversationRequest) (*Empty, error)
	ClearTyping(context.Context, *ConversationRequest) (*Empty, error)
	ListTypingMembers(context.Context, *ConversationRequest) (*ListTypingMembersResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*MessageIdResponse, error)
	ForwardMessage(context.Context, *ForwardMessageRequest) (*MessageIdResponse, error)
	ListMessages(context.Context, *ConversationRequest) (*ListMessagesResponse, error)
	DeleteMessage(context.Context, *DeleteMessageRequest) (*Empty, error)
	MarkRead(context.Context, *MarkReadRequest) (*Empty, error)
	ToggleReaction(context.Context, *ToggleReactionRequest) (*ToggleReactionResponse, error)
	Subscribe(*SubscribeRequest, ChatService_SubscribeServer) error
}

// UnimplementedChatServiceServer answers every RPC with codes.Unimplemented.
// Embed it to stay forward compatible.
type UnimplementedChatServiceServer struct{}

func (UnimplementedChatServiceServer) SyncIdentity(context.Context, *SyncIdentityRequest) (*SyncIdentityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SyncIdentity not implemented")
}
func (UnimplementedChatServiceServer) SetPresence(context.Context, *SetPresenceRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetPresence not implemented")
}
func (UnimplementedChatServiceServer) ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListUsers not implemented")
}
func (UnimplementedChatServiceServer) GetOrCreateDirectConversation(context.Context, *GetOrCreateDirectConversationRequest) (*ConversationIdResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOrCreateDirectConversation not implemented")
}
func (UnimplementedChatServiceServer) CreateGroupConversation(context.Context, *CreateGroupConversationRequest) (*ConversationIdResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateGroupConversation not implemented")
}
func (UnimplementedChatServiceServer) ListMyConversations(context.Context, *ListMyConversationsRequest) (*ListMyConversationsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMyConversations not implemented")
}
func (UnimplementedChatServiceServer) SetTyping(context.Context, *ConversationRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetTyping not implemented")
}
func (UnimplementedChatServiceServer) ClearTyping(context.Context, *ConversationRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method ClearTyping not implemented")
}
func (UnimplementedChatServiceServer) ListTypingMembers(context.Context, *ConversationRequest) (*ListTypingMembersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTypingMembers not implemented")
}
func (UnimplementedChatServiceServer) SendMessage(context.Context, *SendMessageRequest) (*MessageIdResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SendMessage not implemented")
}
func (UnimplementedChatServiceServer) ForwardMessage(context.Context, *ForwardMessageRequest) (*MessageIdResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ForwardMessage not implemented")
}
func (UnimplementedChatServiceServer) ListMessages(context.Context, *ConversationRequest) (*ListMessagesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMessages not implemented")
}
func (UnimplementedChatServiceServer) DeleteMessage(context.Context, *DeleteMessageRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteMessage not implemented")
}
func (UnimplementedChatServiceServer) MarkRead(context.Context, *MarkReadRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method MarkRead not implemented")
}
func (UnimplementedChatServiceServer) ToggleReaction(context.Context, *ToggleReactionRequest) (*ToggleReactionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ToggleReaction not implemented")
}
func (UnimplementedChatServiceServer) Subscribe(*SubscribeRequest, ChatService_SubscribeServer) error {
	return status.Error(codes.Unimplemented, "method Subscribe not implemented")
}

// ChatService_SubscribeServer is the server side of the Subscribe stream.
type ChatService_SubscribeServer interface {
	Send(*Event) error
	grpc.ServerStream
}

type chatServiceSubscribeServer struct {
	grpc.ServerStream
}

func (x *chatServiceSubscribeServer) Send(m *Event) error {
	return x.ServerStream.SendMsg(m)
}

// RegisterChatServiceServer registers srv on s.
func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatService_ServiceDesc, srv)
}

// unary builds the MethodDesc for one unary RPC.
func unary[Req, Resp any](method string, call func(ChatServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ChatServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ChatServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func subscribeHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(SubscribeRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ChatServiceServer).Subscribe(m, &chatServiceSubscribeServer{stream})
}

// ChatService_ServiceDesc is the grpc.ServiceDesc for ChatService.
var ChatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SyncIdentity", ChatServiceServer.SyncIdentity),
		unary("SetPresence", ChatServiceServer.SetPresence),
		unary("ListUsers", ChatServiceServer.ListUsers),
		unary("GetOrCreateDirectConversation", ChatServiceServer.GetOrCreateDirectConversation),
		unary("CreateGroupConversation", ChatServiceServer.CreateGroupConversation),
		unary("ListMyConversations", ChatServiceServer.ListMyConversations),
		unary("SetTyping", ChatServiceServer.SetTyping),
		unary("ClearTyping", ChatServiceServer.ClearTyping),
		unary("ListTypingMembers", ChatServiceServer.ListTypingMembers),
		unary("SendMessage", ChatServiceServer.SendMessage),
		unary("ForwardMessage", ChatServiceServer.ForwardMessage),
		unary("ListMessages", ChatServiceServer.ListMessages),
		unary("DeleteMessage", ChatServiceServer.DeleteMessage),
		unary("MarkRead", ChatServiceServer.MarkRead),
		unary("ToggleReaction", ChatServiceServer.ToggleReaction),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "chat/v1/chat.proto",
}

// ChatServiceClient is the client API for ChatService. Every call is sent
// with the JSON content-subtype.
type ChatServiceClient interface {
	SyncIdentity(ctx context.Context, in *SyncIdentityRequest, opts ...grpc.CallOption) (*SyncIdentityResponse, error)
	SetPresence(ctx context.Context, in *SetPresenceRequest, opts ...grpc.CallOption) (*Empty, error)
	ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error)
	GetOrCreateDirectConversation(ctx context.Context, in *GetOrCreateDirectConversationRequest, opts ...grpc.CallOption) (*ConversationIdResponse, error)
	CreateGroupConversation(ctx context.Context, in *CreateGroupConversationRequest, opts ...grpc.CallOption) (*ConversationIdResponse, error)
	ListMyConversations(ctx context.Context, in *ListMyConversationsRequest, opts ...grpc.CallOption) (*ListMyConversationsResponse, error)
	SetTyping(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*Empty, error)
	ClearTyping(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*Empty, error)
	ListTypingMembers(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*ListTypingMembersResponse, error)
	SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*MessageIdResponse, error)
	ForwardMessage(ctx context.Context, in *ForwardMessageRequest, opts ...grpc.CallOption) (*MessageIdResponse, error)
	ListMessages(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error)
	DeleteMessage(ctx context.Context, in *DeleteMessageRequest, opts ...grpc.CallOption) (*Empty, error)
	MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*Empty, error)
	ToggleReaction(ctx context.Context, in *ToggleReactionRequest, opts ...grpc.CallOption) (*ToggleReactionResponse, error)
	Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (ChatService_SubscribeClient, error)
}

type chatServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewChatServiceClient returns a client over cc.
func NewChatServiceClient(cc grpc.ClientConnInterface) ChatServiceClient {
	return &chatServiceClient{cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) SyncIdentity(ctx context.Context, in *SyncIdentityRequest, opts ...grpc.CallOption) (*SyncIdentityResponse, error) {
	return invoke[SyncIdentityResponse](ctx, c.cc, "SyncIdentity", in, opts)
}

func (c *chatServiceClient) SetPresence(ctx context.Context, in *SetPresenceRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "SetPresence", in, opts)
}

func (c *chatServiceClient) ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	return invoke[ListUsersResponse](ctx, c.cc, "ListUsers", in, opts)
}

func (c *chatServiceClient) GetOrCreateDirectConversation(ctx context.Context, in *GetOrCreateDirectConversationRequest, opts ...grpc.CallOption) (*ConversationIdResponse, error) {
	return invoke[ConversationIdResponse](ctx, c.cc, "GetOrCreateDirectConversation", in, opts)
}

func (c *chatServiceClient) CreateGroupConversation(ctx context.Context, in *CreateGroupConversationRequest, opts ...grpc.CallOption) (*ConversationIdResponse, error) {
	return invoke[ConversationIdResponse](ctx, c.cc, "CreateGroupConversation", in, opts)
}

func (c *chatServiceClient) ListMyConversations(ctx context.Context, in *ListMyConversationsRequest, opts ...grpc.CallOption) (*ListMyConversationsResponse, error) {
	return invoke[ListMyConversationsResponse](ctx, c.cc, "ListMyConversations", in, opts)
}

func (c *chatServiceClient) SetTyping(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "SetTyping", in, opts)
}

func (c *chatServiceClient) ClearTyping(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "ClearTyping", in, opts)
}

func (c *chatServiceClient) ListTypingMembers(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*ListTypingMembersResponse, error) {
	return invoke[ListTypingMembersResponse](ctx, c.cc, "ListTypingMembers", in, opts)
}

func (c *chatServiceClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*MessageIdResponse, error) {
	return invoke[MessageIdResponse](ctx, c.cc, "SendMessage", in, opts)
}

func (c *chatServiceClient) ForwardMessage(ctx context.Context, in *ForwardMessageRequest, opts ...grpc.CallOption) (*MessageIdResponse, error) {
	return invoke[MessageIdResponse](ctx, c.cc, "ForwardMessage", in, opts)
}

func (c *chatServiceClient) ListMessages(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	return invoke[ListMessagesResponse](ctx, c.cc, "ListMessages", in, opts)
}

func (c *chatServiceClient) DeleteMessage(ctx context.Context, in *DeleteMessageRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteMessage", in, opts)
}

func (c *chatServiceClient) MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "MarkRead", in, opts)
}

func (c *chatServiceClient) ToggleReaction(ctx context.Context, in *ToggleReactionRequest, opts ...grpc.CallOption) (*ToggleReactionResponse, error) {
	return invoke[ToggleReactionResponse](ctx, c.cc, "ToggleReaction", in, opts)
}

func (c *chatServiceClient) Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (ChatService_SubscribeClient, error) {
	stream, err := c.cc.NewStream(ctx, &ChatService_ServiceDesc.Streams[0], FullMethod("Subscribe"), withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &chatServiceSubscribeClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// ChatService_SubscribeClient is the client side of the Subscribe stream.
type ChatService_SubscribeClient interface {
	Recv() (*Event, error)
	grpc.ClientStream
}

type chatServiceSubscribeClient struct {
	grpc.ClientStream
}

func (x *chatServiceSubscribeClient) Recv() (*Event, error) {
	m := new(Event)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
