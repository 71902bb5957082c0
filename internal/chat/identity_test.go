package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahmanfaizur/PulseChat/internal/data"
)

func TestResolveOrCreate_CreatesOnceThenUpdatesProfile(t *testing.T) {
	e := newEnv(t)

	id, err := e.svc.ResolveOrCreate(e.ctx, Identity{ExternalID: "sub-1", Email: " Alice@Example.COM ", DisplayName: "  Alice  "})
	require.NoError(t, err)

	u, err := e.store.GetUser(e.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "Alice", u.DisplayName)
	assert.True(t, u.OnlineFlag)
	assert.Equal(t, e.clock.Now(), u.LastSeenAt)

	// go offline, then sync again later with a new profile
	require.NoError(t, e.svc.SetPresence(e.ctx, "sub-1", false))
	seen := e.clock.Now()
	e.clock.Advance(time.Minute)

	again, err := e.svc.ResolveOrCreate(e.ctx, Identity{ExternalID: "sub-1", Email: "alice@new.example.com", DisplayName: "Alice B", AvatarURL: "https://img/a.png"})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	u, err = e.store.GetUser(e.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", u.Email)
	assert.Equal(t, "Alice B", u.DisplayName)
	assert.Equal(t, "https://img/a.png", u.AvatarURL)
	assert.False(t, u.OnlineFlag, "profile sync must not touch presence")
	assert.Equal(t, seen, u.LastSeenAt)

	users, err := e.store.ListUsers(e.ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestResolveOrCreate_LostInsertRaceAdoptsWinner(t *testing.T) {
	e := newEnv(t)
	rival := &data.User{ExternalID: "sub-1", Email: "old@example.com", DisplayName: "Old", CreatedAt: e.clock.Now()}
	st := stores(e.store)
	st.Users = racingUsers{UserStore: e.store, rival: rival}
	svc := NewService(st, WithClock(e.clock.Now))

	id, err := svc.ResolveOrCreate(e.ctx, Identity{ExternalID: "sub-1", Email: "Alice@Example.com", DisplayName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, rival.ID, id)

	u, err := e.store.GetUser(e.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email, "the loser's profile is applied to the winner")
	assert.Equal(t, "Alice", u.DisplayName)

	users, err := e.store.ListUsers(e.ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestResolveOrCreate_ConcurrentFirstSyncKeepsOneUser(t *testing.T) {
	e := newEnv(t)

	const sessions = 32
	ids := make([]string, sessions)
	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := e.svc.ResolveOrCreate(e.ctx, Identity{ExternalID: "sub-1", Email: "alice@example.com", DisplayName: "Alice"})
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	users, err := e.store.ListUsers(e.ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, users[0].ID, ids[0])
}

func TestResolveOrCreate_RejectsBlankSubject(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.ResolveOrCreate(e.ctx, Identity{ExternalID: "   ", Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestResolveUser(t *testing.T) {
	e := newEnv(t)
	id := e.user("alice")

	u, err := e.svc.ResolveUser(e.ctx, "ext-alice")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)

	_, err = e.svc.ResolveUser(e.ctx, "ext-nobody")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = e.svc.ResolveUser(e.ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
