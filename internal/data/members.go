package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MembersStore provides membership database operations.
type MembersStore struct {
	// coll is reference to "memberships" collection in MongoDB
	coll *mongo.Collection
}

// NewMembersStore returns a MembersStore using given collection.
func NewMembersStore(coll *mongo.Collection) *MembersStore {
	return &MembersStore{coll: coll}
}

// InsertMembership adds a membership. The (conversation_id, user_id) unique
// index rejects a second row for the same pair with ErrDuplicate.
func (s *MembersStore) InsertMembership(ctx context.Context, m *Membership) error {
	if m.ID == "" {
		m.ID = newID()
	}
	_, err := s.coll.InsertOne(ctx, m)
	return translate(err, "insert membership")
}

// GetMembership looks up the membership of userID in conversationID.
func (s *MembersStore) GetMembership(ctx context.Context, conversationID, userID string) (*Membership, error) {
	var m Membership
	filter := bson.M{"conversation_id": conversationID, "user_id": userID}
	if err := s.coll.FindOne(ctx, filter).Decode(&m); err != nil {
		return nil, translate(err, "get membership")
	}
	return &m, nil
}

// ListMembershipsByUser returns all memberships of a user, oldest first.
func (s *MembersStore) ListMembershipsByUser(ctx context.Context, userID string) ([]*Membership, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

// ListMembershipsByConversation returns all memberships of a conversation.
func (s *MembersStore) ListMembershipsByConversation(ctx context.Context, conversationID string) ([]*Membership, error) {
	return s.list(ctx, bson.M{"conversation_id": conversationID})
}

func (s *MembersStore) list(ctx context.Context, filter bson.M) ([]*Membership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "list memberships")
	}
	defer cursor.Close(ctx)

	var out []*Membership
	if err = cursor.All(ctx, &out); err != nil {
		return nil, translate(err, "decode memberships")
	}
	return out, nil
}

// SetTypingUntil sets typing_until, or removes it when until is nil.
func (s *MembersStore) SetTypingUntil(ctx context.Context, id string, until *time.Time) error {
	update := bson.M{"$unset": bson.M{"typing_until": ""}}
	if until != nil {
		update = bson.M{"$set": bson.M{"typing_until": *until}}
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	return matched(res, err, "set typing")
}

// SetLastRead moves the read watermark to messageID.
func (s *MembersStore) SetLastRead(ctx context.Context, id, messageID string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"last_read_message_id": messageID},
	})
	return matched(res, err, "set last read")
}
