// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mongang/mongang/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// resetBatchSize bounds the bulk writes issued by the weekly reset sweep.
const resetBatchSize = 100

// Store provides access to the users collection. Each document embeds the
// user's full gang ledger, so most mutations are whole-document replaces.
type Store struct {
	c *mongo.Collection
}

// New creates a new user store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the indexes the API and engine query against.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "discord_id", Value: 1}},
			Options: options.Index().SetName("idx_users_discord_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "current_gang_id", Value: 1}},
			Options: options.Index().SetName("idx_users_current_gang"),
		},
		{
			Keys:    bson.D{{Key: "points", Value: -1}},
			Options: options.Index().SetName("idx_users_points"),
		},
		{
			Keys:    bson.D{{Key: "weekly_points", Value: -1}},
			Options: options.Index().SetName("idx_users_weekly_points"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByDiscordID returns the user with the given Discord snowflake.
func (s *Store) GetByDiscordID(ctx context.Context, discordID string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"discord_id": discordID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, fmt.Errorf("users: %s: %w", discordID, models.ErrUserNotFound)
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Create inserts a new user document.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Save replaces the stored document for the user. The ledger is embedded,
// so this persists ledger mutations in one write.
func (s *Store) Save(ctx context.Context, u models.User) error {
	res, err := s.c.ReplaceOne(ctx, bson.M{"discord_id": u.DiscordID}, u)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("users: save %s: %w", u.DiscordID, models.ErrUserNotFound)
	}
	return nil
}

// UpsertProfile refreshes display metadata from the membership source,
// creating the user on first sight. Point fields are never touched here.
func (s *Store) UpsertProfile(ctx context.Context, discordID, username, avatar string) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"username":   username,
			"avatar":     avatar,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":           primitive.NewObjectID(),
			"discord_id":    discordID,
			"points":        0,
			"weekly_points": 0,
			"created_at":    now,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{"discord_id": discordID}, update, opts)
	return err
}

// ListByCurrentGang returns all current members of a gang, highest points
// first.
func (s *Store) ListByCurrentGang(ctx context.Context, gangID string) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "points", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"current_gang_id": gangID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CountByCurrentGang returns the number of current members of a gang.
func (s *Store) CountByCurrentGang(ctx context.Context, gangID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"current_gang_id": gangID})
}

// List returns users sorted by all-time points with limit/skip paging.
func (s *Store) List(ctx context.Context, limit, skip int64) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "points", Value: -1}}).
		SetLimit(limit).
		SetSkip(skip)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// TopByPoints returns the highest-ranked users by all-time or weekly points.
func (s *Store) TopByPoints(ctx context.Context, limit int64, weekly bool) ([]models.User, error) {
	field := "points"
	if weekly {
		field = "weekly_points"
	}
	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ResetWeekly sweeps every user document, zeroing the weekly scope on the
// top-level totals and on each embedded ledger entry. The ledger is an
// embedded map, so the sweep decodes each document, resets it in memory,
// and writes it back in batches. Re-running the sweep is a no-op.
func (s *Store) ResetWeekly(ctx context.Context, now time.Time) (int64, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var (
		total int64
		batch []mongo.WriteModel
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := s.c.BulkWrite(ctx, batch); err != nil {
			return err
		}
		total += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return total, err
		}
		u.ResetWeekly(now)
		batch = append(batch, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": u.ID}).
			SetReplacement(u))
		if len(batch) >= resetBatchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := cur.Err(); err != nil {
		return total, err
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}
