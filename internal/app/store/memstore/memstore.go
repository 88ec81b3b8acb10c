// internal/app/store/memstore/memstore.go

// Package memstore provides in-memory store implementations mirroring the
// Mongo-backed stores. They back the points engine in tests and let the
// service run without a database in development.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mongang/mongang/internal/domain/models"
)

// UserStore is an in-memory user store keyed by Discord id.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]models.User)}
}

// Put inserts or replaces a user. Intended for seeding.
func (s *UserStore) Put(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.DiscordID] = u.Clone()
}

// GetByDiscordID returns a deep copy of the user, or models.ErrUserNotFound.
func (s *UserStore) GetByDiscordID(ctx context.Context, discordID string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[discordID]
	if !ok {
		return models.User{}, fmt.Errorf("memstore: %s: %w", discordID, models.ErrUserNotFound)
	}
	return u.Clone(), nil
}

// Save replaces the stored user document.
func (s *UserStore) Save(ctx context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.DiscordID]; !ok {
		return fmt.Errorf("memstore: save %s: %w", u.DiscordID, models.ErrUserNotFound)
	}
	s.users[u.DiscordID] = u.Clone()
	return nil
}

// ListByCurrentGang returns all users whose current gang is gangID.
func (s *UserStore) ListByCurrentGang(ctx context.Context, gangID string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.User
	for _, u := range s.users {
		if u.CurrentGangID == gangID {
			out = append(out, u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out, nil
}

// ResetWeekly zeroes the weekly scope on every stored user.
func (s *UserStore) ResetWeekly(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, u := range s.users {
		c := u.Clone()
		c.ResetWeekly(now)
		s.users[id] = c
		n++
	}
	return n, nil
}

// All returns every stored user. Test helper.
func (s *UserStore) All() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	return out
}

// GangStore is an in-memory gang store keyed by gang id.
type GangStore struct {
	mu    sync.RWMutex
	gangs map[string]models.Gang
}

// NewGangStore creates an empty in-memory gang store.
func NewGangStore() *GangStore {
	return &GangStore{gangs: make(map[string]models.Gang)}
}

// Put inserts or replaces a gang. Intended for seeding.
func (s *GangStore) Put(g models.Gang) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gangs[g.GangID] = g
}

// GetByGangID returns the gang, or models.ErrGangNotFound.
func (s *GangStore) GetByGangID(ctx context.Context, gangID string) (models.Gang, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.gangs[gangID]
	if !ok {
		return models.Gang{}, fmt.Errorf("memstore: %s: %w", gangID, models.ErrGangNotFound)
	}
	return g, nil
}

// SaveRollup writes a freshly computed aggregate onto the gang.
func (s *GangStore) SaveRollup(ctx context.Context, gangID string, roll models.GangRollup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gangs[gangID]
	if !ok {
		return fmt.Errorf("memstore: rollup %s: %w", gangID, models.ErrGangNotFound)
	}
	g.TotalMemberPoints = roll.TotalMemberPoints
	g.WeeklyMemberPoints = roll.WeeklyMemberPoints
	g.PointsBreakdown = roll.PointsBreakdown
	g.WeeklyPointsBreakdown = roll.WeeklyPointsBreakdown
	g.MemberCount = roll.MemberCount
	g.UpdatedAt = roll.ComputedAt
	s.gangs[gangID] = g
	return nil
}

// IncMessageCounts bumps the gang's raw message counters.
func (s *GangStore) IncMessageCounts(ctx context.Context, gangID string, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gangs[gangID]
	if !ok {
		return fmt.Errorf("memstore: inc messages %s: %w", gangID, models.ErrGangNotFound)
	}
	g.MessageCount += n
	g.WeeklyMessageCount += n
	g.LastActive = time.Now().UTC()
	s.gangs[gangID] = g
	return nil
}

// ResetWeekly zeroes the weekly scope on every stored gang.
func (s *GangStore) ResetWeekly(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, g := range s.gangs {
		g.WeeklyMemberPoints = 0
		g.WeeklyMessageCount = 0
		g.WeeklyPointsBreakdown.Zero()
		g.LastWeeklyReset = now
		s.gangs[id] = g
		n++
	}
	return n, nil
}

// All returns every stored gang. Test helper.
func (s *GangStore) All() []models.Gang {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Gang, 0, len(s.gangs))
	for _, g := range s.gangs {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalMemberPoints > out[j].TotalMemberPoints })
	return out
}

// ActivityStore is an in-memory append-only activity log.
type ActivityStore struct {
	mu      sync.RWMutex
	entries []models.ActivityLogEntry
}

// NewActivityStore creates an empty in-memory activity log.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{}
}

// Append records an entry.
func (s *ActivityStore) Append(ctx context.Context, e models.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.entries = append(s.entries, e)
	return nil
}

// ListRecent returns up to limit entries, newest first.
func (s *ActivityStore) ListRecent(ctx context.Context, limit int64) ([]models.ActivityLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.entries)
	out := make([]models.ActivityLogEntry, 0, n)
	for i := n - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}
