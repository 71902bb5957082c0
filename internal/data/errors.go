package data

import (
	"github.com/pkg/errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// newID returns a fresh store-assigned identifier.
// ObjectIDs sort by creation time, which keeps _id usable as a tiebreaker.
func newID() string {
	return bson.NewObjectID().Hex()
}

// translate maps driver errors onto the package sentinels and wraps
// everything else with the failing operation.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return errors.Wrap(err, op)
	}
}

// matched turns an update that hit nothing into ErrNotFound.
func matched(res *mongo.UpdateResult, err error, op string) error {
	if err != nil {
		return translate(err, op)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
