package chat

import (
	"context"
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/pkg/errors"

	"github.com/rahmanfaizur/PulseChat/internal/data"
	"github.com/rahmanfaizur/PulseChat/internal/events"
)

// maxEmojiBytes bounds a reaction key; long ZWJ sequences stay well below it.
const maxEmojiBytes = 64

// ReactorView identifies one user in a reaction group.
type ReactorView struct {
	ID         string `json:"id"`
	ExternalID string `json:"externalId"`
	Name       string `json:"name,omitempty"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
}

// ReactionGroup aggregates the ledger rows for one emoji on one message.
// Users holds only reactors that still resolve; UserIDs holds all of them.
type ReactionGroup struct {
	Emoji   string        `json:"emoji"`
	UserIDs []string      `json:"userIds"`
	Users   []ReactorView `json:"users"`
}

// validEmoji accepts strings made only of emoji.
func validEmoji(e string) bool {
	if e == "" || len(e) > maxEmojiBytes || !gomoji.ContainsEmoji(e) {
		return false
	}
	return strings.TrimSpace(gomoji.RemoveEmojis(e)) == ""
}

// Toggle adds the caller's emoji reaction to a message, or removes it when
// it is already there. It reports whether the reaction is now present.
// Toggle is not idempotent: a retried call flips the state back.
func (s *Service) Toggle(ctx context.Context, messageID, userID, emoji string) (bool, error) {
	emoji = strings.TrimSpace(emoji)
	if !validEmoji(emoji) {
		return false, errors.Wrapf(ErrInvalidArgument, "%q is not an emoji", emoji)
	}
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return false, storeErr(err, "get message", ErrNotFound)
	}

	added := false
	existing, err := s.reactions.FindReaction(ctx, messageID, userID, emoji)
	switch {
	case err == nil:
		if err := s.reactions.DeleteReaction(ctx, existing.ID); err != nil && !errors.Is(err, data.ErrNotFound) {
			return false, storeErr(err, "delete reaction", ErrNotFound)
		}
	case errors.Is(err, data.ErrNotFound):
		r := &data.Reaction{MessageID: messageID, UserID: userID, Emoji: emoji, CreatedAt: s.clock()}
		err := s.reactions.InsertReaction(ctx, r)
		if err != nil && !errors.Is(err, data.ErrDuplicate) {
			return false, storeErr(err, "insert reaction", ErrNotFound)
		}
		// a duplicate means an identical concurrent toggle inserted it first
		added = true
	default:
		return false, storeErr(err, "find reaction", ErrNotFound)
	}

	s.publish(ctx, events.KindReactionToggled, msg.ConversationID, messageID, userID)
	return added, nil
}

// reactionGroups folds a message's ledger rows into per-emoji groups, in
// the order each emoji was first used.
func (s *Service) reactionGroups(ctx context.Context, messageID string, users *userCache) ([]ReactionGroup, error) {
	rows, err := s.reactions.ListReactions(ctx, messageID)
	if err != nil {
		return nil, storeErr(err, "list reactions", ErrNotFound)
	}

	groups := make([]ReactionGroup, 0)
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.Emoji]
		if !ok {
			i = len(groups)
			index[r.Emoji] = i
			groups = append(groups, ReactionGroup{Emoji: r.Emoji, UserIDs: []string{}, Users: []ReactorView{}})
		}
		groups[i].UserIDs = append(groups[i].UserIDs, r.UserID)

		u, err := users.get(ctx, r.UserID)
		if err != nil {
			return nil, err
		}
		if u != nil {
			groups[i].Users = append(groups[i].Users, ReactorView{
				ID:         u.ID,
				ExternalID: u.ExternalID,
				Name:       u.DisplayName,
				AvatarURL:  u.AvatarURL,
			})
		}
	}
	return groups, nil
}
