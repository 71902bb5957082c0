package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahmanfaizur/PulseChat/internal/data"
)

func TestIsOnline_FreshnessWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		flag   bool
		ago    time.Duration
		online bool
	}{
		{"fresh heartbeat", true, 59000 * time.Millisecond, true},
		{"stale heartbeat", true, 61000 * time.Millisecond, false},
		{"exactly at threshold", true, OnlineThreshold, false},
		{"explicitly offline", false, time.Second, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := &data.User{OnlineFlag: tc.flag, LastSeenAt: now.Add(-tc.ago)}
			assert.Equal(t, tc.online, IsOnline(u, now))
		})
	}
}

func TestSetPresence_OfflineStillAdvancesLastSeen(t *testing.T) {
	e := newEnv(t)
	id := e.user("alice")

	e.clock.Advance(30 * time.Second)
	require.NoError(t, e.svc.SetPresence(e.ctx, "ext-alice", false))

	u, err := e.store.GetUser(e.ctx, id)
	require.NoError(t, err)
	assert.False(t, u.OnlineFlag)
	assert.Equal(t, e.clock.Now(), u.LastSeenAt)
	assert.False(t, IsOnline(u, e.clock.Now()))
}

func TestSetPresence_UnknownSubject(t *testing.T) {
	e := newEnv(t)
	err := e.svc.SetPresence(e.ctx, "ext-ghost", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsers_DerivesPresence(t *testing.T) {
	e := newEnv(t)
	alice := e.user("alice")
	bob := e.user("bob")

	// bob's last heartbeat is older than the threshold but his flag is still set
	require.NoError(t, e.store.SetPresence(e.ctx, bob, true, e.clock.Now().Add(-61*time.Second)))

	users, err := e.svc.ListUsers(e.ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	online := map[string]bool{}
	for _, u := range users {
		online[u.ID] = u.IsOnline
	}
	assert.True(t, online[alice])
	assert.False(t, online[bob])
}
