// internal/app/store/gangs/gangstore.go
package gangstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/mongang/mongang/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the gangs collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new gang store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("gangs")}
}

// EnsureIndexes creates the gang collection indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "gang_id", Value: 1}},
			Options: options.Index().SetName("idx_gangs_gang_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_gangs_name_ci"),
		},
		{
			Keys:    bson.D{{Key: "total_member_points", Value: -1}},
			Options: options.Index().SetName("idx_gangs_total_points"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByGangID returns the gang with the given stable key.
func (s *Store) GetByGangID(ctx context.Context, gangID string) (models.Gang, error) {
	var g models.Gang
	err := s.c.FindOne(ctx, bson.M{"gang_id": gangID}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Gang{}, fmt.Errorf("gangs: %s: %w", gangID, models.ErrGangNotFound)
	}
	if err != nil {
		return models.Gang{}, err
	}
	return g, nil
}

// GetByName looks a gang up by case-insensitive name.
func (s *Store) GetByName(ctx context.Context, name string) (models.Gang, error) {
	var g models.Gang
	err := s.c.FindOne(ctx, bson.M{"name_ci": text.Fold(name)}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Gang{}, fmt.Errorf("gangs: %q: %w", name, models.ErrGangNotFound)
	}
	if err != nil {
		return models.Gang{}, err
	}
	return g, nil
}

// List returns all gangs, highest total member points first.
func (s *Store) List(ctx context.Context) ([]models.Gang, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "total_member_points", Value: -1},
		{Key: "name_ci", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var gangs []models.Gang
	if err := cur.All(ctx, &gangs); err != nil {
		return nil, err
	}
	return gangs, nil
}

// Create inserts a new gang document.
func (s *Store) Create(ctx context.Context, g models.Gang) (models.Gang, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Gang{}, err
	}
	return g, nil
}

// Upsert creates or refreshes a gang from the role sync. Only identity and
// display fields are written; rollup fields belong to the points engine and
// are left alone on existing documents.
func (s *Store) Upsert(ctx context.Context, gangID, name, roleID, color string) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":            name,
			"name_ci":         text.Fold(name),
			"discord_role_id": roleID,
			"color":           color,
			"updated_at":      now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"gang_id":    gangID,
			"created_at": now,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{"gang_id": gangID}, update, opts)
	return err
}

// SaveRollup overwrites the gang's aggregate fields with a freshly computed
// rollup.
func (s *Store) SaveRollup(ctx context.Context, gangID string, r models.GangRollup) error {
	update := bson.M{"$set": bson.M{
		"total_member_points":     r.TotalMemberPoints,
		"weekly_member_points":    r.WeeklyMemberPoints,
		"points_breakdown":        r.PointsBreakdown,
		"weekly_points_breakdown": r.WeeklyPointsBreakdown,
		"member_count":            r.MemberCount,
		"updated_at":              time.Now().UTC(),
	}}
	res, err := s.c.UpdateOne(ctx, bson.M{"gang_id": gangID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("gangs: rollup %s: %w", gangID, models.ErrGangNotFound)
	}
	return nil
}

// IncMessageCounts bumps the gang-level raw message counters. These are
// display counters only and never feed the points breakdown.
func (s *Store) IncMessageCounts(ctx context.Context, gangID string, n int) error {
	update := bson.M{
		"$inc": bson.M{
			"message_count":        n,
			"weekly_message_count": n,
		},
		"$set": bson.M{"last_active": time.Now().UTC()},
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"gang_id": gangID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("gangs: inc messages %s: %w", gangID, models.ErrGangNotFound)
	}
	return nil
}

// ResetWeekly zeroes the weekly aggregate on every gang in one update.
func (s *Store) ResetWeekly(ctx context.Context, now time.Time) (int64, error) {
	update := bson.M{"$set": bson.M{
		"weekly_member_points":    0,
		"weekly_points_breakdown": models.PointsBreakdown{},
		"weekly_message_count":    0,
		"last_weekly_reset":       now,
		"updated_at":              now,
	}}
	res, err := s.c.UpdateMany(ctx, bson.M{}, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
