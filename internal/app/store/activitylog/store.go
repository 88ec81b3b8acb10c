// internal/app/store/activitylog/store.go
package activitylog

import (
	"context"
	"time"

	"github.com/mongang/mongang/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit caps history queries when the caller does not supply one.
const DefaultLimit = 50

// Store provides access to the append-only activity log collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new activity log store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activity_log")}
}

// EnsureIndexes creates the activity log indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "target_type", Value: 1},
				{Key: "target_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_activity_target"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_activity_created"),
		},
		{
			Keys:    bson.D{{Key: "action", Value: 1}},
			Options: options.Index().SetName("idx_activity_action"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Append writes one entry. Entries are immutable after this point.
func (s *Store) Append(ctx context.Context, e models.ActivityLogEntry) error {
	e.ID = primitive.NewObjectID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// RecordPointChange appends an award or deduct entry for a user. The action
// is derived from the sign of the delta.
func (s *Store) RecordPointChange(ctx context.Context, user models.User, delta int, category models.Category, reason, awardedBy, awardedByUsername string) error {
	action := models.ActionAward
	if delta < 0 {
		action = models.ActionDeduct
	}
	return s.Append(ctx, models.ActivityLogEntry{
		TargetType:        models.TargetUser,
		TargetID:          user.DiscordID,
		TargetName:        user.Username,
		Action:            action,
		Points:            delta,
		Category:          category,
		Reason:            reason,
		AwardedBy:         awardedBy,
		AwardedByUsername: awardedByUsername,
	})
}

// RecordMembership appends a join or leave entry for a user and gang.
func (s *Store) RecordMembership(ctx context.Context, action string, user models.User, gangID, gangName string) error {
	return s.Append(ctx, models.ActivityLogEntry{
		TargetType: models.TargetUser,
		TargetID:   user.DiscordID,
		TargetName: user.Username,
		Action:     action,
		Reason:     gangName,
		AwardedBy:  gangID,
	})
}

// RecordSystem appends a system entry, such as a weekly reset summary.
func (s *Store) RecordSystem(ctx context.Context, targetType, targetID, reason string) error {
	return s.Append(ctx, models.ActivityLogEntry{
		TargetType: targetType,
		TargetID:   targetID,
		Action:     models.ActionSystem,
		Reason:     reason,
	})
}

// ListRecent returns the newest entries across all targets.
func (s *Store) ListRecent(ctx context.Context, limit int64) ([]models.ActivityLogEntry, error) {
	return s.find(ctx, bson.M{}, limit)
}

// ListByTarget returns the newest entries for one user or gang.
func (s *Store) ListByTarget(ctx context.Context, targetType, targetID string, limit int64) ([]models.ActivityLogEntry, error) {
	return s.find(ctx, bson.M{"target_type": targetType, "target_id": targetID}, limit)
}

// ListForGang returns the newest entries involving the gang itself or any of
// the given member IDs.
func (s *Store) ListForGang(ctx context.Context, gangID string, memberIDs []string, limit int64) ([]models.ActivityLogEntry, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"target_type": models.TargetGang, "target_id": gangID},
		bson.M{"target_type": models.TargetUser, "target_id": bson.M{"$in": memberIDs}},
	}}
	return s.find(ctx, filter, limit)
}

func (s *Store) find(ctx context.Context, filter bson.M, limit int64) ([]models.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.ActivityLogEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
