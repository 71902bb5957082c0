package chat

import (
	"context"
	"time"

	"github.com/rahmanfaizur/PulseChat/internal/data"
)

// UserView is a user plus presence derived at read time.
type UserView struct {
	*data.User
	IsOnline bool `json:"isOnline"`
}

// IsOnline trusts the stored flag only while the last heartbeat is fresher
// than OnlineThreshold.
func IsOnline(u *data.User, now time.Time) bool {
	return u.OnlineFlag && now.Sub(u.LastSeenAt) < OnlineThreshold
}

func viewUser(u *data.User, now time.Time) UserView {
	return UserView{User: u, IsOnline: IsOnline(u, now)}
}

// SetPresence records a heartbeat (online) or sign-off (offline). The
// timestamp advances either way.
func (s *Service) SetPresence(ctx context.Context, externalID string, online bool) error {
	u, err := s.users.GetUserByExternalID(ctx, externalID)
	if err != nil {
		return storeErr(err, "presence lookup", ErrNotFound)
	}
	if err := s.users.SetPresence(ctx, u.ID, online, s.clock()); err != nil {
		return storeErr(err, "set presence", ErrNotFound)
	}
	return nil
}

// ListUsers returns every user with derived presence.
func (s *Service) ListUsers(ctx context.Context) ([]UserView, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, storeErr(err, "list users", ErrNotFound)
	}
	now := s.clock()
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, viewUser(u, now))
	}
	return out, nil
}
