package main

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"

	v1 "github.com/rahmanfaizur/PulseChat/api/chat/v1"
	"github.com/rahmanfaizur/PulseChat/internal/auth"
	"github.com/rahmanfaizur/PulseChat/internal/chat"
	"github.com/rahmanfaizur/PulseChat/internal/config"
	"github.com/rahmanfaizur/PulseChat/internal/data/memory"
	"github.com/rahmanfaizur/PulseChat/internal/events"
	"github.com/rahmanfaizur/PulseChat/internal/metrics"
	"github.com/rahmanfaizur/PulseChat/internal/middleware"
)

const bufSize = 1024 * 1024

type testStack struct {
	client  v1.ChatServiceClient
	jwt     *auth.JWTManager
	metrics *metrics.Metrics
	hub     *ConnectionHub
}

// startServer runs the full interceptor chain over bufconn with the
// in-memory store.
func startServer(t *testing.T, cfg *config.Config) *testStack {
	t.Helper()

	st := memory.New()
	m := metrics.New(prometheus.NewRegistry())
	bus := events.NewBus()
	hub := NewConnectionHub()
	t.Cleanup(bus.Subscribe(hub.Deliver))
	svc := chat.NewService(
		chat.Stores{Users: st, Conversations: st, Members: st, Messages: st, Reactions: st, Tx: st},
		chat.WithPublisher(m.Publisher(bus)),
	)

	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	limiter := middleware.NewLimiterStore(cfg.RateLimitRPM, cfg.RateLimitBurst, time.Minute)
	t.Cleanup(limiter.Stop)

	s, err := newGRPCServer(cfg, jwtMgr, m, limiter)
	if err != nil {
		t.Fatalf("newGRPCServer failed: %v", err)
	}
	registerService(s, newServer(svc, hub))

	// set up bufconn server
	lis := bufconn.Listen(bufSize)
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(func() {
		hub.Close()
		s.Stop()
	})

	// Dialer via bufconn
	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial bufnet: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &testStack{client: v1.NewChatServiceClient(conn), jwt: jwtMgr, metrics: m, hub: hub}
}

// login mints a token for subject and returns an authenticated context.
func (ts *testStack) login(t *testing.T, subject, name string) context.Context {
	t.Helper()
	tok, _, err := ts.jwt.GenerateToken(subject, subject+"@Example.com", name, "")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func TestIntegration_ConversationFlow(t *testing.T) {
	ts := startServer(t, config.Default())

	aliceCtx := ts.login(t, "auth0|alice", "Alice")
	bobCtx := ts.login(t, "auth0|bob", "Bob")

	alice, err := ts.client.SyncIdentity(aliceCtx, &v1.SyncIdentityRequest{})
	if err != nil {
		t.Fatalf("SyncIdentity alice failed: %v", err)
	}
	bob, err := ts.client.SyncIdentity(bobCtx, &v1.SyncIdentityRequest{})
	if err != nil {
		t.Fatalf("SyncIdentity bob failed: %v", err)
	}

	users, err := ts.client.ListUsers(aliceCtx, &v1.ListUsersRequest{})
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users.Users))
	}
	for _, u := range users.Users {
		if u.Email != strings.ToLower(u.ExternalId)+"@example.com" {
			t.Fatalf("email not normalized: %+v", u)
		}
	}

	// bob subscribes before alice writes
	subCtx, cancel := context.WithCancel(bobCtx)
	defer cancel()
	stream, err := ts.client.Subscribe(subCtx, &v1.SubscribeRequest{})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	waitConnected(t, ts.hub, bob.UserId, 1)

	conv, err := ts.client.GetOrCreateDirectConversation(aliceCtx, &v1.GetOrCreateDirectConversationRequest{OtherUserId: bob.UserId})
	if err != nil {
		t.Fatalf("GetOrCreateDirectConversation failed: %v", err)
	}
	again, err := ts.client.GetOrCreateDirectConversation(bobCtx, &v1.GetOrCreateDirectConversationRequest{OtherUserId: alice.UserId})
	if err != nil {
		t.Fatalf("GetOrCreateDirectConversation from bob failed: %v", err)
	}
	if again.ConversationId != conv.ConversationId {
		t.Fatalf("direct conversation not reused: %s vs %s", again.ConversationId, conv.ConversationId)
	}

	sent, err := ts.client.SendMessage(aliceCtx, &v1.SendMessageRequest{ConversationId: conv.ConversationId, Content: "hello"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	// conversation.created then message.sent
	wantKinds := []string{string(events.KindConversationCreated), string(events.KindMessageSent)}
	for _, want := range wantKinds {
		ev, err := stream.Recv()
		if err != nil {
			t.Fatalf("stream Recv failed: %v", err)
		}
		if ev.Kind != want || ev.ConversationId != conv.ConversationId {
			t.Fatalf("expected %s event, got %+v", want, ev)
		}
		if want == string(events.KindMessageSent) && ev.MessageId != sent.MessageId {
			t.Fatalf("event message id = %s, want %s", ev.MessageId, sent.MessageId)
		}
	}

	if _, err := ts.client.ToggleReaction(bobCtx, &v1.ToggleReactionRequest{MessageId: sent.MessageId, Emoji: "👍"}); err != nil {
		t.Fatalf("ToggleReaction failed: %v", err)
	}
	if _, err := ts.client.MarkRead(bobCtx, &v1.MarkReadRequest{ConversationId: conv.ConversationId, MessageId: sent.MessageId}); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	msgs, err := ts.client.ListMessages(bobCtx, &v1.ConversationRequest{ConversationId: conv.ConversationId})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs.Messages))
	}
	m := msgs.Messages[0]
	if m.IsMine || m.Content != "hello" || m.Sender == nil || m.Sender.Name != "Alice" {
		t.Fatalf("unexpected message: %+v", m)
	}
	if len(m.Reactions) != 1 || m.Reactions[0].Emoji != "👍" {
		t.Fatalf("unexpected reactions: %+v", m.Reactions)
	}

	convs, err := ts.client.ListMyConversations(bobCtx, &v1.ListMyConversationsRequest{})
	if err != nil {
		t.Fatalf("ListMyConversations failed: %v", err)
	}
	if len(convs.Conversations) != 1 || convs.Conversations[0].UnreadCount != 0 {
		t.Fatalf("unexpected conversations: %+v", convs.Conversations)
	}

	if got := testutil.ToFloat64(ts.metrics.Events.WithLabelValues(string(events.KindMessageSent))); got != 1 {
		t.Fatalf("message.sent events counted = %v", got)
	}
}

func TestIntegration_RejectsMissingOrBadToken(t *testing.T) {
	ts := startServer(t, config.Default())

	_, err := ts.client.ListUsers(context.Background(), &v1.ListUsersRequest{})
	if code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated without token, got %v", err)
	}

	bad := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer not-a-jwt")
	_, err = ts.client.SyncIdentity(bad, &v1.SyncIdentityRequest{})
	if code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated with bad token, got %v", err)
	}

	stream, err := ts.client.Subscribe(context.Background(), &v1.SubscribeRequest{})
	if err == nil {
		_, err = stream.Recv()
	}
	if code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated on stream, got %v", err)
	}
}

func TestIntegration_RateLimitsWrites(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimitRPM = 1
	cfg.RateLimitBurst = 2
	ts := startServer(t, cfg)

	ctx := ts.login(t, "auth0|carol", "Carol")
	for i := 0; i < cfg.RateLimitBurst; i++ {
		if _, err := ts.client.SyncIdentity(ctx, &v1.SyncIdentityRequest{}); err != nil {
			t.Fatalf("SyncIdentity %d failed: %v", i, err)
		}
	}
	if _, err := ts.client.SyncIdentity(ctx, &v1.SyncIdentityRequest{}); code(err) != codes.ResourceExhausted {
		t.Fatalf("expected ResourceExhausted, got %v", err)
	}

	// reads and heartbeats are not limited
	for i := 0; i < 5; i++ {
		if _, err := ts.client.ListUsers(ctx, &v1.ListUsersRequest{}); err != nil {
			t.Fatalf("ListUsers %d failed: %v", i, err)
		}
		if _, err := ts.client.SetPresence(ctx, &v1.SetPresenceRequest{Online: true}); err != nil {
			t.Fatalf("SetPresence %d failed: %v", i, err)
		}
	}
}
