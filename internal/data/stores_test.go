package data_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rahmanfaizur/PulseChat/internal/data"
	"github.com/rahmanfaizur/PulseChat/internal/db"
)

// These tests are integration tests and require a running MongoDB instance.
// Set MONGODB_URI in the environment before running them.

func connect(t *testing.T) *db.Client {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri, "pulsechat_data_test")
	if err != nil {
		t.Fatalf("failed to connect to DB: %v", err)
	}
	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}
	t.Cleanup(func() {
		_ = c.UsersCollection().Drop(context.Background())
		_ = c.ConversationsCollection().Drop(context.Background())
		_ = c.MembershipsCollection().Drop(context.Background())
		_ = c.MessagesCollection().Drop(context.Background())
		_ = c.ReactionsCollection().Drop(context.Background())
		_ = c.Close(context.Background())
	})
	return c
}

// Mongo keeps millisecond precision.
var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestUsersStore(t *testing.T) {
	c := connect(t)
	ctx := context.Background()
	users := data.NewUsersStore(c.UsersCollection())

	u := &data.User{ExternalID: "ext-alice", Email: "alice@example.com", DisplayName: "Alice", LastSeenAt: t0, CreatedAt: t0}
	if err := users.InsertUser(ctx, u); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("InsertUser did not assign an id")
	}
	if err := users.InsertUser(ctx, &data.User{ExternalID: "ext-alice", Email: "x@example.com"}); !errors.Is(err, data.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for same external id, got %v", err)
	}

	if err := users.UpdateProfile(ctx, u.ID, "alice@new.example.com", "", "https://img/a.png"); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if err := users.SetPresence(ctx, u.ID, true, t0.Add(time.Minute)); err != nil {
		t.Fatalf("SetPresence failed: %v", err)
	}

	got, err := users.GetUserByExternalID(ctx, "ext-alice")
	if err != nil {
		t.Fatalf("GetUserByExternalID failed: %v", err)
	}
	if got.Email != "alice@new.example.com" || got.DisplayName != "" || got.AvatarURL != "https://img/a.png" {
		t.Fatalf("profile not updated: %+v", got)
	}
	if !got.OnlineFlag || !got.LastSeenAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("presence not updated: %+v", got)
	}

	if _, err := users.GetUser(ctx, "missing"); !errors.Is(err, data.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := users.SetPresence(ctx, "missing", false, t0); !errors.Is(err, data.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on missing user, got %v", err)
	}
}

func TestMembersStore(t *testing.T) {
	c := connect(t)
	ctx := context.Background()
	members := data.NewMembersStore(c.MembershipsCollection())

	m := &data.Membership{ConversationID: "c1", UserID: "u1", CreatedAt: t0}
	if err := members.InsertMembership(ctx, m); err != nil {
		t.Fatalf("InsertMembership failed: %v", err)
	}
	if err := members.InsertMembership(ctx, &data.Membership{ConversationID: "c1", UserID: "u1"}); !errors.Is(err, data.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := members.InsertMembership(ctx, &data.Membership{ConversationID: "c1", UserID: "u2", CreatedAt: t0}); err != nil {
		t.Fatalf("InsertMembership failed: %v", err)
	}

	until := t0.Add(3 * time.Second)
	if err := members.SetTypingUntil(ctx, m.ID, &until); err != nil {
		t.Fatalf("SetTypingUntil failed: %v", err)
	}
	if err := members.SetLastRead(ctx, m.ID, "m9"); err != nil {
		t.Fatalf("SetLastRead failed: %v", err)
	}
	got, err := members.GetMembership(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("GetMembership failed: %v", err)
	}
	if got.TypingUntil == nil || !got.TypingUntil.Equal(until) || got.LastReadMessageID != "m9" {
		t.Fatalf("unexpected membership: %+v", got)
	}

	if err := members.SetTypingUntil(ctx, m.ID, nil); err != nil {
		t.Fatalf("clearing typing failed: %v", err)
	}
	got, _ = members.GetMembership(ctx, "c1", "u1")
	if got.TypingUntil != nil {
		t.Fatalf("typing not cleared: %v", got.TypingUntil)
	}

	byConv, err := members.ListMembershipsByConversation(ctx, "c1")
	if err != nil || len(byConv) != 2 {
		t.Fatalf("ListMembershipsByConversation = %d, %v", len(byConv), err)
	}
	byUser, err := members.ListMembershipsByUser(ctx, "u2")
	if err != nil || len(byUser) != 1 {
		t.Fatalf("ListMembershipsByUser = %d, %v", len(byUser), err)
	}
}

func TestMessagesStore(t *testing.T) {
	c := connect(t)
	ctx := context.Background()
	msgs := data.NewMessagesStore(c.MessagesCollection())

	// same timestamp for the last two: _id breaks the tie
	for i, at := range []time.Time{t0, t0.Add(time.Second), t0.Add(time.Second)} {
		sender := "alice"
		if i > 0 {
			sender = "bob"
		}
		if err := msgs.InsertMessage(ctx, &data.Message{ConversationID: "c1", SenderID: sender, Content: string(rune('a' + i)), CreatedAt: at}); err != nil {
			t.Fatalf("InsertMessage failed: %v", err)
		}
	}

	list, err := msgs.ListMessages(ctx, "c1")
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(list) != 3 || list[0].Content != "a" || list[1].Content != "b" || list[2].Content != "c" {
		t.Fatalf("unexpected order: %+v", list)
	}

	latest, err := msgs.LatestMessage(ctx, "c1")
	if err != nil || latest.ID != list[2].ID {
		t.Fatalf("LatestMessage = %+v, %v", latest, err)
	}
	if _, err := msgs.LatestMessage(ctx, "empty"); !errors.Is(err, data.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty conversation, got %v", err)
	}

	n, err := msgs.CountFromOthers(ctx, "c1", "alice", nil)
	if err != nil || n != 2 {
		t.Fatalf("CountFromOthers(all) = %d, %v", n, err)
	}
	n, err = msgs.CountFromOthers(ctx, "c1", "alice", &list[1].CreatedAt)
	if err != nil || n != 0 {
		t.Fatalf("CountFromOthers(after) = %d, %v", n, err)
	}

	if err := msgs.MarkDeleted(ctx, list[0].ID, "This message was deleted"); err != nil {
		t.Fatalf("MarkDeleted failed: %v", err)
	}
	got, err := msgs.GetMessage(ctx, list[0].ID)
	if err != nil || !got.IsDeleted || got.Content != "This message was deleted" {
		t.Fatalf("GetMessage after delete = %+v, %v", got, err)
	}
	if err := msgs.MarkDeleted(ctx, "missing", "x"); !errors.Is(err, data.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReactionsStore(t *testing.T) {
	c := connect(t)
	ctx := context.Background()
	reactions := data.NewReactionsStore(c.ReactionsCollection())

	r := &data.Reaction{MessageID: "m1", UserID: "u1", Emoji: "👍", CreatedAt: t0}
	if err := reactions.InsertReaction(ctx, r); err != nil {
		t.Fatalf("InsertReaction failed: %v", err)
	}
	if err := reactions.InsertReaction(ctx, &data.Reaction{MessageID: "m1", UserID: "u1", Emoji: "👍"}); !errors.Is(err, data.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := reactions.InsertReaction(ctx, &data.Reaction{MessageID: "m1", UserID: "u2", Emoji: "🔥", CreatedAt: t0}); err != nil {
		t.Fatalf("InsertReaction failed: %v", err)
	}

	found, err := reactions.FindReaction(ctx, "m1", "u1", "👍")
	if err != nil || found.ID != r.ID {
		t.Fatalf("FindReaction = %+v, %v", found, err)
	}

	list, err := reactions.ListReactions(ctx, "m1")
	if err != nil || len(list) != 2 || list[0].Emoji != "👍" {
		t.Fatalf("ListReactions = %+v, %v", list, err)
	}

	if err := reactions.DeleteReaction(ctx, r.ID); err != nil {
		t.Fatalf("DeleteReaction failed: %v", err)
	}
	if err := reactions.DeleteReaction(ctx, r.ID); !errors.Is(err, data.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestConversationsStore(t *testing.T) {
	c := connect(t)
	ctx := context.Background()
	convs := data.NewConversationsStore(c.ConversationsCollection())

	conv := &data.Conversation{IsGroup: true, Name: "Team", CreatedAt: t0}
	if err := convs.InsertConversation(ctx, conv); err != nil {
		t.Fatalf("InsertConversation failed: %v", err)
	}
	got, err := convs.GetConversation(ctx, conv.ID)
	if err != nil || !got.IsGroup || got.Name != "Team" || !got.CreatedAt.Equal(t0) {
		t.Fatalf("GetConversation = %+v, %v", got, err)
	}
	if _, err := convs.GetConversation(ctx, "missing"); !errors.Is(err, data.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
