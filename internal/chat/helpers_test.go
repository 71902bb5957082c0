package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rahmanfaizur/PulseChat/internal/data"
	"github.com/rahmanfaizur/PulseChat/internal/data/memory"
	"github.com/rahmanfaizur/PulseChat/internal/events"
)

// fakeClock only moves when told to.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type env struct {
	t     *testing.T
	ctx   context.Context
	svc   *Service
	store *memory.Store
	clock *fakeClock

	mu     sync.Mutex
	events []events.Event
}

func stores(st *memory.Store) Stores {
	return Stores{Users: st, Conversations: st, Members: st, Messages: st, Reactions: st, Tx: st}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		t:     t,
		ctx:   context.Background(),
		store: memory.New(),
		clock: &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	bus := events.NewBus()
	bus.Subscribe(func(ev events.Event) {
		e.mu.Lock()
		e.events = append(e.events, ev)
		e.mu.Unlock()
	})
	e.svc = NewService(stores(e.store), WithClock(e.clock.Now), WithPublisher(bus))
	return e
}

// user syncs a user named name and returns its id.
func (e *env) user(name string) string {
	e.t.Helper()
	id, err := e.svc.ResolveOrCreate(e.ctx, Identity{
		ExternalID:  "ext-" + name,
		Email:       name + "@example.com",
		DisplayName: name,
	})
	require.NoError(e.t, err)
	return id
}

func (e *env) direct(a, b string) string {
	e.t.Helper()
	id, err := e.svc.GetOrCreateDirect(e.ctx, a, b)
	require.NoError(e.t, err)
	return id
}

// send advances the clock one second, then sends.
func (e *env) send(conversationID, senderID, content, replyTo string) string {
	e.t.Helper()
	e.clock.Advance(time.Second)
	id, err := e.svc.Send(e.ctx, conversationID, senderID, content, replyTo)
	require.NoError(e.t, err)
	return id
}

func (e *env) conversation(userID, conversationID string) ConversationView {
	e.t.Helper()
	views, err := e.svc.ListForUser(e.ctx, userID)
	require.NoError(e.t, err)
	for _, v := range views {
		if v.ID == conversationID {
			return v
		}
	}
	e.t.Fatalf("conversation %s not listed for %s", conversationID, userID)
	return ConversationView{}
}

func (e *env) unread(userID, conversationID string) int64 {
	e.t.Helper()
	return e.conversation(userID, conversationID).UnreadCount
}

func (e *env) published() []events.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]events.Event(nil), e.events...)
}

// hidingUsers reports the listed users as missing.
type hidingUsers struct {
	UserStore
	hidden map[string]bool
}

func (h hidingUsers) GetUser(ctx context.Context, id string) (*data.User, error) {
	if h.hidden[id] {
		return nil, data.ErrNotFound
	}
	return h.UserStore.GetUser(ctx, id)
}

// brokenMessages fails every read with a transport error.
type brokenMessages struct {
	MessageStore
}

var errConnReset = errors.New("connection reset by peer")

func (brokenMessages) ListMessages(context.Context, string) ([]*data.Message, error) {
	return nil, errConnReset
}

func (brokenMessages) GetMessage(context.Context, string) (*data.Message, error) {
	return nil, errConnReset
}

// racingUsers lets a rival session insert the same subject just before
// every InsertUser.
type racingUsers struct {
	UserStore
	rival *data.User
}

func (r racingUsers) InsertUser(ctx context.Context, _ *data.User) error {
	if err := r.UserStore.InsertUser(ctx, r.rival); err != nil {
		return err
	}
	return data.ErrDuplicate
}

// racingReactions lets an identical toggle land just before every
// InsertReaction.
type racingReactions struct {
	ReactionStore
}

func (r racingReactions) InsertReaction(ctx context.Context, rx *data.Reaction) error {
	rival := *rx
	if err := r.ReactionStore.InsertReaction(ctx, &rival); err != nil {
		return err
	}
	return data.ErrDuplicate
}
