// Package db manages MongoDB connections, collections and transactions.
package db

import (
	"context" // For connection timeout/cancellation
	"time"    // Duration for timeouts

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
)

// DefaultDatabase is used when no database name is configured.
const DefaultDatabase = "pulsechat"

// Client wraps mongo.Client and exposes collections.
type Client struct {
	// client is the underlying MongoDB connection (thread-safe, can be reused)
	client *mongo.Client

	// db is reference to the chat database within MongoDB
	db *mongo.Database
}

// New connects to MongoDB and returns a Client.
func New(ctx context.Context, mongoURI, database string) (*Client, error) {
	if database == "" {
		database = DefaultDatabase
	}

	// SetConnectTimeout: fail fast if MongoDB is unreachable
	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(10 * time.Second)

	// This doesn't actually connect yet, just creates the client
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}

	// Ping MongoDB to verify connection is working
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "failed to ping MongoDB")
	}

	return &Client{
		client: client,
		db:     client.Database(database),
	}, nil
}

// UsersCollection returns the users collection.
func (c *Client) UsersCollection() *mongo.Collection {
	return c.db.Collection("users")
}

// ConversationsCollection returns the conversations collection.
func (c *Client) ConversationsCollection() *mongo.Collection {
	return c.db.Collection("conversations")
}

// MembershipsCollection returns the memberships collection.
func (c *Client) MembershipsCollection() *mongo.Collection {
	return c.db.Collection("memberships")
}

// MessagesCollection returns the messages collection.
func (c *Client) MessagesCollection() *mongo.Collection {
	return c.db.Collection("messages")
}

// ReactionsCollection returns the reactions collection.
func (c *Client) ReactionsCollection() *mongo.Collection {
	return c.db.Collection("reactions")
}

// Ping checks the primary is reachable. Used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// RunInTx runs fn inside a multi-document transaction. The driver retries
// fn on transient transaction errors, so fn must be safe to re-run.
// Transactions need a replica set or sharded cluster.
func (c *Client) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := c.client.StartSession()
	if err != nil {
		return errors.Wrap(err, "failed to start session")
	}
	defer sess.EndSession(ctx)

	txOpts := options.Transaction().SetWriteConcern(writeconcern.Majority())
	_, err = sess.WithTransaction(ctx, func(sc context.Context) (any, error) {
		return nil, fn(sc)
	}, txOpts)
	return err
}

// CreateIndexes creates the indexes every store relies on. Unique indexes
// back the membership and reaction uniqueness invariants.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// ===== USERS =====
	// One user per identity-provider subject
	_, err := c.UsersCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "external_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create users index")
	}

	// ===== MEMBERSHIPS =====
	_, err = c.MembershipsCollection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// One row per (conversation, user) pair; also serves the pair lookup
			Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// A user's conversation list
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create membership indexes")
	}

	// ===== MESSAGES =====
	// Creation order within a conversation; also serves latest-message and unread counts
	_, err = c.MessagesCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create message indexes")
	}

	// ===== REACTIONS =====
	// The unique triple prefix also serves lookups by message_id alone
	_, err = c.ReactionsCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "message_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "emoji", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create reaction indexes")
	}

	return nil
}
