// Package data provides DB models and MongoDB-backed stores.
package data

import (
	"context" // Used for cancellation and timeouts
	"time"    // Timestamps

	"go.mongodb.org/mongo-driver/v2/bson"          // MongoDB document queries
	"go.mongodb.org/mongo-driver/v2/mongo"         // MongoDB driver
	"go.mongodb.org/mongo-driver/v2/mongo/options" // Query options
)

// UsersStore performs user DB operations.
type UsersStore struct {
	// coll is reference to "users" collection in MongoDB
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// InsertUser adds a user document. An empty ID is assigned here.
func (u *UsersStore) InsertUser(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	// The unique index on external_id turns a concurrent first sync into ErrDuplicate
	_, err := u.coll.InsertOne(ctx, user)
	return translate(err, "insert user")
}

// GetUser finds a user by id.
func (u *UsersStore) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, translate(err, "get user")
	}
	return &user, nil
}

// GetUserByExternalID finds a user by the identity provider's subject id.
func (u *UsersStore) GetUserByExternalID(ctx context.Context, externalID string) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"external_id": externalID}).Decode(&user)
	if err != nil {
		return nil, translate(err, "get user by external id")
	}
	return &user, nil
}

// UpdateProfile overwrites the profile fields. Presence fields are untouched.
func (u *UsersStore) UpdateProfile(ctx context.Context, id, email, displayName, avatarURL string) error {
	set := bson.M{"email": email}
	unset := bson.M{}

	// Empty optional fields are removed rather than stored as ""
	if displayName != "" {
		set["display_name"] = displayName
	} else {
		unset["display_name"] = ""
	}
	if avatarURL != "" {
		set["avatar_url"] = avatarURL
	} else {
		unset["avatar_url"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := u.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	return matched(res, err, "update profile")
}

// SetPresence patches the online flag and last-seen timestamp.
func (u *UsersStore) SetPresence(ctx context.Context, id string, online bool, at time.Time) error {
	res, err := u.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"online": online, "last_seen_at": at},
	})
	return matched(res, err, "set presence")
}

// ListUsers returns every user ordered by display name.
func (u *UsersStore) ListUsers(ctx context.Context) ([]*User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "display_name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := u.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate(err, "list users")
	}
	defer cursor.Close(ctx)

	var users []*User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, translate(err, "decode users")
	}
	return users, nil
}
