// internal/app/points/service.go

// Package points implements the points aggregation and consistency engine:
// applying signed point deltas to user ledgers, recomputing gang rollups,
// handling gang switches, and the system-wide weekly reset.
package points

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mongang/mongang/internal/domain/models"
	"go.uber.org/zap"
)

// Engine-level failure sentinels. Not-found conditions reuse the shared
// models sentinels so callers have one error to check regardless of which
// layer produced it.
var (
	ErrUserNotFound    = models.ErrUserNotFound
	ErrGangNotFound    = models.ErrGangNotFound
	ErrNoCurrentGang   = errors.New("user has no current gang")
	ErrInvalidCategory = models.ErrInvalidCategory
)

// UserStore is the user persistence the engine needs. Implementations must
// return an error satisfying errors.Is(err, models.ErrUserNotFound) when a
// lookup misses.
type UserStore interface {
	GetByDiscordID(ctx context.Context, discordID string) (models.User, error)
	Save(ctx context.Context, u models.User) error
	ListByCurrentGang(ctx context.Context, gangID string) ([]models.User, error)
	ResetWeekly(ctx context.Context, now time.Time) (int64, error)
}

// GangStore is the gang persistence the engine needs. GetByGangID misses
// must satisfy errors.Is(err, models.ErrGangNotFound).
type GangStore interface {
	GetByGangID(ctx context.Context, gangID string) (models.Gang, error)
	SaveRollup(ctx context.Context, gangID string, roll models.GangRollup) error
	ResetWeekly(ctx context.Context, now time.Time) (int64, error)
}

// Service is the points engine. It owns no state beyond per-gang rollup
// locks; every operation is a short-lived unit of work against the stores.
type Service struct {
	users UserStore
	gangs GangStore
	log   *zap.Logger

	mu        sync.Mutex
	gangLocks map[string]*sync.Mutex
}

// New creates a points engine over the given stores.
func New(users UserStore, gangs GangStore, logger *zap.Logger) *Service {
	return &Service{
		users:     users,
		gangs:     gangs,
		log:       logger,
		gangLocks: make(map[string]*sync.Mutex),
	}
}

// gangLock returns the mutex serializing rollups for one gang. Rollups are
// idempotent full recomputations, so this lock only narrows the window in
// which a slow rollup can overwrite a newer one with stale totals.
func (s *Service) gangLock(gangID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.gangLocks[gangID]
	if !ok {
		l = &sync.Mutex{}
		s.gangLocks[gangID] = l
	}
	return l
}

// ApplyPoints adds a signed delta, in the given category, to the user's
// ledger entry for their current gang, recomputes the user's denormalized
// totals, persists the user, and then recomputes the gang rollup so the
// rollup observes the just-written entry.
//
// The delta may be negative; totals are not floored at zero (moderation
// deductions may exceed prior awards).
//
// ApplyPoints writes no activity log entry; callers that want an audit
// trail append one separately.
func (s *Service) ApplyPoints(ctx context.Context, discordID string, category models.Category, delta int) (models.User, error) {
	if !category.Valid() {
		return models.User{}, fmt.Errorf("apply points: %w: %q", ErrInvalidCategory, category)
	}

	u, err := s.users.GetByDiscordID(ctx, discordID)
	if err != nil {
		return models.User{}, fmt.Errorf("apply points: %w", err)
	}
	if u.CurrentGangID == "" {
		return models.User{}, fmt.Errorf("apply points: user %s: %w", discordID, ErrNoCurrentGang)
	}

	now := time.Now().UTC()
	entry := u.EnsureLedgerEntry(u.CurrentGangID, u.CurrentGangName)
	entry.Apply(category, delta)
	u.RecalcTotals()
	u.LastActive = now
	u.UpdatedAt = now

	if err := s.users.Save(ctx, u); err != nil {
		return models.User{}, fmt.Errorf("apply points: save user %s: %w", discordID, err)
	}

	// Ledger write first, rollup second: the rollup must observe the
	// entry that triggered it.
	if err := s.RecomputeGang(ctx, u.CurrentGangID); err != nil {
		return models.User{}, fmt.Errorf("apply points: rollup gang %s: %w", u.CurrentGangID, err)
	}

	return u, nil
}

// SwitchGang moves the user's current-gang pointer to newGangID, creating a
// zeroed ledger entry there if the user has never visited that gang, then
// recomputes the rollups of both the old and the new gang. The user's
// lifetime totals are conserved: the old entry is retained unmodified, it
// just stops feeding the old gang's live aggregate.
//
// Switching to the gang the user is already in is a guaranteed no-op, not
// an error.
func (s *Service) SwitchGang(ctx context.Context, discordID, newGangID string) (models.User, error) {
	u, err := s.users.GetByDiscordID(ctx, discordID)
	if err != nil {
		return models.User{}, fmt.Errorf("switch gang: %w", err)
	}
	if u.CurrentGangID == newGangID {
		return u, nil
	}

	gang, err := s.gangs.GetByGangID(ctx, newGangID)
	if err != nil {
		return models.User{}, fmt.Errorf("switch gang: %w", err)
	}

	oldGangID := u.CurrentGangID
	now := time.Now().UTC()
	u.CurrentGangID = gang.GangID
	u.CurrentGangName = gang.Name
	u.EnsureLedgerEntry(gang.GangID, gang.Name)
	u.RecalcTotals()
	u.UpdatedAt = now

	if err := s.users.Save(ctx, u); err != nil {
		return models.User{}, fmt.Errorf("switch gang: save user %s: %w", discordID, err)
	}

	// Pointer write first, then both rollups; their order relative to
	// each other does not matter.
	if oldGangID != "" {
		if err := s.RecomputeGang(ctx, oldGangID); err != nil {
			return models.User{}, fmt.Errorf("switch gang: rollup old gang %s: %w", oldGangID, err)
		}
	}
	if err := s.RecomputeGang(ctx, gang.GangID); err != nil {
		return models.User{}, fmt.Errorf("switch gang: rollup new gang %s: %w", gang.GangID, err)
	}

	return u, nil
}

// LeaveGang clears the user's current-gang pointer and recomputes the gang
// they left. The ledger entry for the old gang is retained, so the user's
// lifetime totals do not change. Leaving while in no gang is a no-op.
func (s *Service) LeaveGang(ctx context.Context, discordID string) (models.User, error) {
	u, err := s.users.GetByDiscordID(ctx, discordID)
	if err != nil {
		return models.User{}, fmt.Errorf("leave gang: %w", err)
	}
	if u.CurrentGangID == "" {
		return u, nil
	}

	oldGangID := u.CurrentGangID
	u.CurrentGangID = ""
	u.CurrentGangName = ""
	u.UpdatedAt = time.Now().UTC()

	if err := s.users.Save(ctx, u); err != nil {
		return models.User{}, fmt.Errorf("leave gang: save user %s: %w", discordID, err)
	}
	if err := s.RecomputeGang(ctx, oldGangID); err != nil {
		return models.User{}, fmt.Errorf("leave gang: rollup gang %s: %w", oldGangID, err)
	}
	return u, nil
}
