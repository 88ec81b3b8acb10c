package testutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/mongang/mongang/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateGang creates a test gang with the given stable id and name.
func (f *Fixtures) CreateGang(ctx context.Context, gangID, name string) models.Gang {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Gang{
		ID:        primitive.NewObjectID(),
		GangID:    gangID,
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("gangs").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test gang: %v", err)
	}
	return g
}

// CreateUser creates a test user with no gang and no points.
func (f *Fixtures) CreateUser(ctx context.Context, discordID, username string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		DiscordID: discordID,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateMember creates a test user who currently belongs to the gang and
// holds the given points there, all in the message activity category.
func (f *Fixtures) CreateMember(ctx context.Context, discordID, username string, gang models.Gang, points int) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:              primitive.NewObjectID(),
		DiscordID:       discordID,
		Username:        username,
		CurrentGangID:   gang.GangID,
		CurrentGangName: gang.Name,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	entry := u.EnsureLedgerEntry(gang.GangID, gang.Name)
	entry.Apply(models.CategoryMessageActivity, points)
	u.RecalcTotals()

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return u
}

// CreateActivityEntries appends n award entries for the user, oldest first.
func (f *Fixtures) CreateActivityEntries(ctx context.Context, u models.User, n int) {
	f.t.Helper()

	base := time.Now().UTC().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		e := models.ActivityLogEntry{
			ID:         primitive.NewObjectID(),
			TargetType: models.TargetUser,
			TargetID:   u.DiscordID,
			TargetName: u.Username,
			Action:     models.ActionAward,
			Points:     1,
			Category:   models.CategoryMessageActivity,
			Reason:     fmt.Sprintf("test entry %d", i),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if _, err := f.db.Collection("activity_log").InsertOne(ctx, e); err != nil {
			f.t.Fatalf("failed to create test activity entry: %v", err)
		}
	}
}
