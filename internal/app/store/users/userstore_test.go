package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/mongang/mongang/internal/app/store/users"
	"github.com/mongang/mongang/internal/domain/models"
	"github.com/mongang/mongang/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_And_GetByDiscordID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		DiscordID: "100",
		Username:  "alice",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := store.GetByDiscordID(ctx, "100")
	if err != nil {
		t.Fatalf("GetByDiscordID failed: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("username: got %q, want %q", got.Username, "alice")
	}
}

func TestStore_GetByDiscordID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByDiscordID(ctx, "missing")
	if !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStore_Save_RoundTripsLedger(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gang := fixtures.CreateGang(ctx, "crimson", "Crimson")
	u := fixtures.CreateUser(ctx, "100", "alice")

	u.CurrentGangID = gang.GangID
	u.CurrentGangName = gang.Name
	entry := u.EnsureLedgerEntry(gang.GangID, gang.Name)
	entry.Apply(models.CategoryGamer, 7)
	entry.Apply(models.CategoryOther, 2)
	u.RecalcTotals()

	if err := store.Save(ctx, u); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.GetByDiscordID(ctx, "100")
	if err != nil {
		t.Fatalf("GetByDiscordID failed: %v", err)
	}
	loaded := got.LedgerEntry(gang.GangID)
	if loaded == nil {
		t.Fatal("expected ledger entry to survive the round trip")
	}
	if loaded.Points != 9 || loaded.PointsBreakdown.Gamer != 7 || loaded.PointsBreakdown.Other != 2 {
		t.Errorf("ledger entry: got %+v", loaded)
	}
	if got.Points != 9 {
		t.Errorf("points: got %d, want 9", got.Points)
	}
	if err := got.CheckInvariants(); err != nil {
		t.Errorf("invariants after round trip: %v", err)
	}
}

func TestStore_Save_MissingUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Save(ctx, models.User{DiscordID: "ghost"})
	if !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStore_UpsertProfile_PreservesPoints(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gang := fixtures.CreateGang(ctx, "crimson", "Crimson")
	fixtures.CreateMember(ctx, "100", "alice", gang, 12)

	if err := store.UpsertProfile(ctx, "100", "alice-renamed", "avatar-hash"); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}

	got, err := store.GetByDiscordID(ctx, "100")
	if err != nil {
		t.Fatalf("GetByDiscordID failed: %v", err)
	}
	if got.Username != "alice-renamed" {
		t.Errorf("username: got %q, want %q", got.Username, "alice-renamed")
	}
	if got.Points != 12 {
		t.Errorf("points: got %d, want 12 (profile sync must not touch points)", got.Points)
	}
}

func TestStore_UpsertProfile_CreatesNewUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.UpsertProfile(ctx, "200", "bob", ""); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}

	got, err := store.GetByDiscordID(ctx, "200")
	if err != nil {
		t.Fatalf("GetByDiscordID failed: %v", err)
	}
	if got.Points != 0 || got.WeeklyPoints != 0 {
		t.Errorf("new user should start at zero points, got %d/%d", got.Points, got.WeeklyPoints)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected created_at to be set on insert")
	}
}

func TestStore_ListByCurrentGang(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	crimson := fixtures.CreateGang(ctx, "crimson", "Crimson")
	azure := fixtures.CreateGang(ctx, "azure", "Azure")
	fixtures.CreateMember(ctx, "100", "alice", crimson, 5)
	fixtures.CreateMember(ctx, "200", "bob", crimson, 9)
	fixtures.CreateMember(ctx, "300", "carol", azure, 20)

	members, err := store.ListByCurrentGang(ctx, "crimson")
	if err != nil {
		t.Fatalf("ListByCurrentGang failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].DiscordID != "200" || members[1].DiscordID != "100" {
		t.Errorf("expected members sorted by points desc, got %s then %s",
			members[0].DiscordID, members[1].DiscordID)
	}

	count, err := store.CountByCurrentGang(ctx, "crimson")
	if err != nil {
		t.Fatalf("CountByCurrentGang failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count: got %d, want 2", count)
	}
}

func TestStore_TopByPoints(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gang := fixtures.CreateGang(ctx, "crimson", "Crimson")
	fixtures.CreateMember(ctx, "100", "alice", gang, 5)
	fixtures.CreateMember(ctx, "200", "bob", gang, 9)
	fixtures.CreateMember(ctx, "300", "carol", gang, 1)

	top, err := store.TopByPoints(ctx, 2, false)
	if err != nil {
		t.Fatalf("TopByPoints failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 users, got %d", len(top))
	}
	if top[0].DiscordID != "200" {
		t.Errorf("expected bob first, got %s", top[0].DiscordID)
	}
}

func TestStore_ResetWeekly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gang := fixtures.CreateGang(ctx, "crimson", "Crimson")
	fixtures.CreateMember(ctx, "100", "alice", gang, 5)
	fixtures.CreateMember(ctx, "200", "bob", gang, 9)

	now := time.Now().UTC().Truncate(time.Second)
	n, err := store.ResetWeekly(ctx, now)
	if err != nil {
		t.Fatalf("ResetWeekly failed: %v", err)
	}
	if n != 2 {
		t.Errorf("reset count: got %d, want 2", n)
	}

	got, err := store.GetByDiscordID(ctx, "100")
	if err != nil {
		t.Fatalf("GetByDiscordID failed: %v", err)
	}
	if got.WeeklyPoints != 0 {
		t.Errorf("weekly points: got %d, want 0", got.WeeklyPoints)
	}
	if got.Points != 5 {
		t.Errorf("all-time points must survive the reset, got %d", got.Points)
	}
	entry := got.LedgerEntry("crimson")
	if entry == nil || entry.WeeklyPoints != 0 || entry.Points != 5 {
		t.Errorf("ledger entry after reset: %+v", entry)
	}

	// Running it again changes nothing.
	if _, err := store.ResetWeekly(ctx, now.Add(time.Minute)); err != nil {
		t.Fatalf("second ResetWeekly failed: %v", err)
	}
	again, err := store.GetByDiscordID(ctx, "100")
	if err != nil {
		t.Fatalf("GetByDiscordID failed: %v", err)
	}
	if again.Points != 5 || again.WeeklyPoints != 0 {
		t.Errorf("second reset must be a no-op, got %d/%d", again.Points, again.WeeklyPoints)
	}
}
