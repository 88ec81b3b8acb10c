// internal/app/store/meta/metastore.go
package metastore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// keyWeeklyReset is the singleton document holding the last completed weekly
// reset boundary.
const keyWeeklyReset = "weekly_reset"

type markerDoc struct {
	Key             string    `bson:"key"`
	LastWeeklyReset time.Time `bson:"last_weekly_reset"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// Store provides access to the meta collection, a small bag of singleton
// system markers.
type Store struct {
	c *mongo.Collection
}

// New creates a new meta store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("meta")}
}

// EnsureIndexes creates the unique key index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetName("idx_meta_key").SetUnique(true),
	})
	return err
}

// LastWeeklyReset returns the week boundary of the last completed reset, or
// the zero time when no reset has ever run.
func (s *Store) LastWeeklyReset(ctx context.Context) (time.Time, error) {
	var doc markerDoc
	err := s.c.FindOne(ctx, bson.M{"key": keyWeeklyReset}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return doc.LastWeeklyReset, nil
}

// SetLastWeeklyReset records the week boundary a reset just completed for.
func (s *Store) SetLastWeeklyReset(ctx context.Context, boundary time.Time) error {
	update := bson.M{"$set": bson.M{
		"last_weekly_reset": boundary,
		"updated_at":        time.Now().UTC(),
	}}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{"key": keyWeeklyReset}, update, opts)
	return err
}
