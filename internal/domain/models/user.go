// internal/domain/models/user.go
package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store lookup sentinels. Store implementations map their native not-found
// errors to these so the points engine stays storage-agnostic.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrGangNotFound = errors.New("gang not found")
)

// GangLedgerEntry is one user's point record within one gang. An entry is
// created lazily the first time the user earns points in (or switches into)
// a gang and is never deleted: entries for gangs the user has left are kept
// for gang-history display but no longer feed that gang's live rollup.
type GangLedgerEntry struct {
	GangID                string          `bson:"gang_id" json:"gangId"`
	GangName              string          `bson:"gang_name" json:"gangName"`
	Points                int             `bson:"points" json:"points"`
	WeeklyPoints          int             `bson:"weekly_points" json:"weeklyPoints"`
	PointsBreakdown       PointsBreakdown `bson:"points_breakdown" json:"pointsBreakdown"`
	WeeklyPointsBreakdown PointsBreakdown `bson:"weekly_points_breakdown" json:"weeklyPointsBreakdown"`
}

// Apply adds a signed delta to one category, keeping the scalar totals and
// both breakdown scopes in step.
func (e *GangLedgerEntry) Apply(c Category, delta int) {
	e.PointsBreakdown.Add(c, delta)
	e.WeeklyPointsBreakdown.Add(c, delta)
	e.Points += delta
	e.WeeklyPoints += delta
}

// ResetWeekly zeroes the entry's weekly scope. All-time fields are untouched.
func (e *GangLedgerEntry) ResetWeekly() {
	e.WeeklyPoints = 0
	e.WeeklyPointsBreakdown.Zero()
}

// User is one Discord member. Points and WeeklyPoints are denormalized
// totals that must always equal the sum over Ledger; RecalcTotals restores
// that invariant after any ledger mutation.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	DiscordID       string             `bson:"discord_id" json:"id"`
	Username        string             `bson:"username" json:"username"`
	Avatar          string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CurrentGangID   string             `bson:"current_gang_id,omitempty" json:"currentGangId,omitempty"`
	CurrentGangName string             `bson:"current_gang_name,omitempty" json:"currentGangName,omitempty"`
	Points          int                `bson:"points" json:"points"`
	WeeklyPoints    int                `bson:"weekly_points" json:"weeklyPoints"`

	// Ledger maps gang id to that gang's entry. The map key makes the
	// one-entry-per-gang invariant structural.
	Ledger map[string]*GangLedgerEntry `bson:"ledger,omitempty" json:"ledger,omitempty"`

	LastActive      time.Time `bson:"last_active,omitempty" json:"lastActive,omitempty"`
	LastWeeklyReset time.Time `bson:"last_weekly_reset,omitempty" json:"lastWeeklyReset,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updatedAt"`
}

// LedgerEntry returns the entry for gangID, or nil if the user has never
// held points there.
func (u *User) LedgerEntry(gangID string) *GangLedgerEntry {
	if u.Ledger == nil {
		return nil
	}
	return u.Ledger[gangID]
}

// EnsureLedgerEntry returns the entry for gangID, creating a zeroed one on
// the user's first contact with the gang.
func (u *User) EnsureLedgerEntry(gangID, gangName string) *GangLedgerEntry {
	if u.Ledger == nil {
		u.Ledger = make(map[string]*GangLedgerEntry)
	}
	if e, ok := u.Ledger[gangID]; ok {
		return e
	}
	e := &GangLedgerEntry{GangID: gangID, GangName: gangName}
	u.Ledger[gangID] = e
	return e
}

// RecalcTotals recomputes the denormalized top-level totals as the sum over
// every ledger entry, current gang or not. Historical entries keep counting
// toward the lifetime total.
func (u *User) RecalcTotals() {
	u.Points = 0
	u.WeeklyPoints = 0
	for _, e := range u.Ledger {
		u.Points += e.Points
		u.WeeklyPoints += e.WeeklyPoints
	}
}

// ResetWeekly zeroes the user's weekly scope: the top-level weekly total and
// the weekly fields of every ledger entry. A second call in a row is a no-op.
func (u *User) ResetWeekly(now time.Time) {
	u.WeeklyPoints = 0
	for _, e := range u.Ledger {
		e.ResetWeekly()
	}
	u.LastWeeklyReset = now
}

// CheckInvariants verifies the sum invariants: each entry's scalar totals
// equal its breakdown sums, and the user totals equal the sum over entries.
// Violations are reported, not repaired.
func (u *User) CheckInvariants() error {
	points, weekly := 0, 0
	for gangID, e := range u.Ledger {
		if e.Points != e.PointsBreakdown.Total() {
			return fmt.Errorf("user %s gang %s: points %d != breakdown total %d",
				u.DiscordID, gangID, e.Points, e.PointsBreakdown.Total())
		}
		if e.WeeklyPoints != e.WeeklyPointsBreakdown.Total() {
			return fmt.Errorf("user %s gang %s: weekly points %d != weekly breakdown total %d",
				u.DiscordID, gangID, e.WeeklyPoints, e.WeeklyPointsBreakdown.Total())
		}
		points += e.Points
		weekly += e.WeeklyPoints
	}
	if u.Points != points {
		return fmt.Errorf("user %s: points %d != ledger sum %d", u.DiscordID, u.Points, points)
	}
	if u.WeeklyPoints != weekly {
		return fmt.Errorf("user %s: weekly points %d != ledger sum %d", u.DiscordID, u.WeeklyPoints, weekly)
	}
	return nil
}

// Clone returns a deep copy. The ledger map holds pointers, so a plain
// struct copy would alias entries between copies.
func (u User) Clone() User {
	c := u
	if u.Ledger != nil {
		c.Ledger = make(map[string]*GangLedgerEntry, len(u.Ledger))
		for id, e := range u.Ledger {
			entry := *e
			c.Ledger[id] = &entry
		}
	}
	return c
}
