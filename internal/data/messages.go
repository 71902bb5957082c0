package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore provides message database operations.
type MessagesStore struct {
	// coll is reference to "messages" collection in MongoDB
	// Set via NewMessagesStore() and used in all methods below
	coll *mongo.Collection
}

// NewMessagesStore returns a MessagesStore using given collection.
func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll} // Store reference to MongoDB collection
}

// creationOrder sorts by created_at, breaking millisecond ties on _id.
var creationOrder = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

// InsertMessage adds a message document and assigns its ID.
func (m *MessagesStore) InsertMessage(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = newID()
	}
	_, err := m.coll.InsertOne(ctx, msg)
	return translate(err, "insert message")
}

// GetMessage finds a message by id.
func (m *MessagesStore) GetMessage(ctx context.Context, id string) (*Message, error) {
	var msg Message
	if err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&msg); err != nil {
		return nil, translate(err, "get message")
	}
	return &msg, nil
}

// ListMessages returns the conversation's messages, oldest first.
func (m *MessagesStore) ListMessages(ctx context.Context, conversationID string) ([]*Message, error) {
	// Served by the (conversation_id, created_at, _id) index
	opts := options.Find().SetSort(creationOrder)
	cursor, err := m.coll.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, translate(err, "list messages")
	}
	// Ensure cursor is closed when done (cleanup)
	defer cursor.Close(ctx)

	var messages []*Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, translate(err, "decode messages")
	}
	return messages, nil
}

// LatestMessage returns the newest message of a conversation.
func (m *MessagesStore) LatestMessage(ctx context.Context, conversationID string) (*Message, error) {
	// Same index walked backwards; limit 1 via FindOne
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	var msg Message
	err := m.coll.FindOne(ctx, bson.M{"conversation_id": conversationID}, opts).Decode(&msg)
	if err != nil {
		return nil, translate(err, "latest message")
	}
	return &msg, nil
}

// CountFromOthers counts messages in the conversation not sent by userID,
// optionally only those created strictly after `after`.
func (m *MessagesStore) CountFromOthers(ctx context.Context, conversationID, userID string, after *time.Time) (int64, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"sender_id":       bson.M{"$ne": userID},
	}
	if after != nil {
		filter["created_at"] = bson.M{"$gt": *after}
	}
	n, err := m.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, translate(err, "count unread")
	}
	return n, nil
}

// MarkDeleted flags the message deleted and overwrites its content.
func (m *MessagesStore) MarkDeleted(ctx context.Context, id, placeholder string) error {
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"is_deleted": true, "content": placeholder},
	})
	return matched(res, err, "mark deleted")
}
