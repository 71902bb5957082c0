package main

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/rahmanfaizur/PulseChat/api/chat/v1"
	"github.com/rahmanfaizur/PulseChat/internal/auth"
	"github.com/rahmanfaizur/PulseChat/internal/chat"
	"github.com/rahmanfaizur/PulseChat/internal/data"
)

// Server implements the chat service on top of the chat core and the
// subscription hub.
type Server struct {
	v1.UnimplementedChatServiceServer

	chat *chat.Service
	hub  *ConnectionHub
}

// newServer returns a ready-to-use Server.
func newServer(svc *chat.Service, hub *ConnectionHub) *Server {
	return &Server{chat: svc, hub: hub}
}

// registerService registers the ChatService on the given gRPC server.
func registerService(s *grpc.Server, srv *Server) {
	v1.RegisterChatServiceServer(s, srv)
}

// claims returns the verified token claims attached by the interceptors.
func claims(ctx context.Context) (*auth.Claims, error) {
	c, ok := auth.FromContext(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing auth claims")
	}
	return c, nil
}

// caller resolves the authenticated subject to its user. Subjects that
// never synced are Unauthenticated.
func (s *Server) caller(ctx context.Context) (*data.User, error) {
	c, err := claims(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.chat.ResolveUser(ctx, c.Subject)
	if err != nil {
		return nil, toStatus(err)
	}
	return u, nil
}

// viewer is caller for queries: a subject that never synced yields a nil
// user and no error, and the query answers with an empty result.
func (s *Server) viewer(ctx context.Context) (*data.User, error) {
	c, err := claims(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.chat.ResolveUser(ctx, c.Subject)
	if errors.Is(err, chat.ErrUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return u, nil
}
