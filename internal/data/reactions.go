package data

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ReactionsStore provides reaction ledger database operations.
type ReactionsStore struct {
	// coll is reference to "reactions" collection in MongoDB
	coll *mongo.Collection
}

// NewReactionsStore returns a ReactionsStore using given collection.
func NewReactionsStore(coll *mongo.Collection) *ReactionsStore {
	return &ReactionsStore{coll: coll}
}

// InsertReaction adds a ledger row. The (message_id, user_id, emoji) unique
// index turns a repeated insert into ErrDuplicate.
func (r *ReactionsStore) InsertReaction(ctx context.Context, reaction *Reaction) error {
	if reaction.ID == "" {
		reaction.ID = newID()
	}
	_, err := r.coll.InsertOne(ctx, reaction)
	return translate(err, "insert reaction")
}

// FindReaction looks up the row for one (message, user, emoji) triple.
func (r *ReactionsStore) FindReaction(ctx context.Context, messageID, userID, emoji string) (*Reaction, error) {
	var reaction Reaction
	filter := bson.M{"message_id": messageID, "user_id": userID, "emoji": emoji}
	if err := r.coll.FindOne(ctx, filter).Decode(&reaction); err != nil {
		return nil, translate(err, "find reaction")
	}
	return &reaction, nil
}

// DeleteReaction removes a ledger row by id.
func (r *ReactionsStore) DeleteReaction(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "delete reaction")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReactions returns all reactions on a message in insertion order.
func (r *ReactionsStore) ListReactions(ctx context.Context, messageID string) ([]*Reaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"message_id": messageID}, opts)
	if err != nil {
		return nil, translate(err, "list reactions")
	}
	defer cursor.Close(ctx)

	var out []*Reaction
	if err = cursor.All(ctx, &out); err != nil {
		return nil, translate(err, "decode reactions")
	}
	return out, nil
}
