package data

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ConversationsStore provides conversation database operations.
type ConversationsStore struct {
	// coll is reference to "conversations" collection in MongoDB
	coll *mongo.Collection
}

// NewConversationsStore returns a ConversationsStore using given collection.
func NewConversationsStore(coll *mongo.Collection) *ConversationsStore {
	return &ConversationsStore{coll: coll}
}

// InsertConversation adds a conversation document, assigning its ID.
func (c *ConversationsStore) InsertConversation(ctx context.Context, conv *Conversation) error {
	if conv.ID == "" {
		conv.ID = newID()
	}
	_, err := c.coll.InsertOne(ctx, conv)
	return translate(err, "insert conversation")
}

// GetConversation finds a conversation by id.
func (c *ConversationsStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var conv Conversation
	if err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&conv); err != nil {
		return nil, translate(err, "get conversation")
	}
	return &conv, nil
}
