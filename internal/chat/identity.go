package chat

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/rahmanfaizur/PulseChat/internal/data"
	"github.com/rahmanfaizur/PulseChat/internal/normalize"
)

// Identity is the profile an authenticated session reports.
type Identity struct {
	ExternalID  string
	Email       string
	DisplayName string
	AvatarURL   string
}

// ResolveOrCreate returns the user id for id.ExternalID, creating the user
// (online, last seen now) on first sight and refreshing the profile
// otherwise. Presence of an existing user is left alone.
func (s *Service) ResolveOrCreate(ctx context.Context, id Identity) (string, error) {
	id.ExternalID = strings.TrimSpace(id.ExternalID)
	if id.ExternalID == "" {
		return "", errors.Wrap(ErrInvalidArgument, "external id is required")
	}
	email := normalize.Email(id.Email)
	name := normalize.DisplayName(id.DisplayName)
	avatar := strings.TrimSpace(id.AvatarURL)

	existing, err := s.users.GetUserByExternalID(ctx, id.ExternalID)
	switch {
	case err == nil:
		if err := s.users.UpdateProfile(ctx, existing.ID, email, name, avatar); err != nil {
			return "", storeErr(err, "update profile", ErrNotFound)
		}
		return existing.ID, nil
	case !errors.Is(err, data.ErrNotFound):
		return "", storeErr(err, "lookup user", ErrNotFound)
	}

	now := s.clock()
	u := &data.User{
		ExternalID:  id.ExternalID,
		Email:       email,
		DisplayName: name,
		AvatarURL:   avatar,
		OnlineFlag:  true,
		LastSeenAt:  now,
		CreatedAt:   now,
	}
	err = s.users.InsertUser(ctx, u)
	if errors.Is(err, data.ErrDuplicate) {
		// another session for the same subject inserted first
		winner, err := s.users.GetUserByExternalID(ctx, id.ExternalID)
		if err != nil {
			return "", storeErr(err, "lookup user", ErrNotFound)
		}
		if err := s.users.UpdateProfile(ctx, winner.ID, email, name, avatar); err != nil {
			return "", storeErr(err, "update profile", ErrNotFound)
		}
		return winner.ID, nil
	}
	if err != nil {
		return "", storeErr(err, "insert user", ErrNotFound)
	}
	return u.ID, nil
}

// ResolveUser maps a verified subject to its user. A subject that never
// synced is ErrUnauthorized.
func (s *Service) ResolveUser(ctx context.Context, externalID string) (*data.User, error) {
	if externalID == "" {
		return nil, ErrUnauthorized
	}
	u, err := s.users.GetUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, storeErr(err, "resolve user", ErrUnauthorized)
	}
	return u, nil
}
