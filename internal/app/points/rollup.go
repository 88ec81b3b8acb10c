// internal/app/points/rollup.go
package points

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mongang/mongang/internal/domain/models"
	"go.uber.org/zap"
)

// RecomputeGang rebuilds the gang's denormalized aggregate from scratch:
// it fetches every user whose current gang is gangID, sums their ledger
// entries for that gang (a member with no entry yet contributes zero), and
// persists the result. It is a full recomputation rather than an
// incremental delta, so any prior inconsistency is repaired on the next
// call.
//
// An unknown gang is a logged no-op, not an error: rollups may be triggered
// speculatively for gangs that no longer exist.
func (s *Service) RecomputeGang(ctx context.Context, gangID string) error {
	l := s.gangLock(gangID)
	l.Lock()
	defer l.Unlock()

	members, err := s.users.ListByCurrentGang(ctx, gangID)
	if err != nil {
		return fmt.Errorf("recompute gang %s: list members: %w", gangID, err)
	}

	roll := models.GangRollup{
		MemberCount: len(members),
		ComputedAt:  time.Now().UTC(),
	}
	for i := range members {
		m := &members[i]
		if err := m.CheckInvariants(); err != nil {
			// Inconsistency is logged, never fatal; this very rollup
			// repairs the gang-level aggregate.
			s.log.Warn("ledger invariant violation during rollup",
				zap.String("gang_id", gangID),
				zap.Error(err))
		}
		e := m.LedgerEntry(gangID)
		if e == nil {
			continue
		}
		roll.TotalMemberPoints += e.Points
		roll.WeeklyMemberPoints += e.WeeklyPoints
		roll.PointsBreakdown.AddAll(e.PointsBreakdown)
		roll.WeeklyPointsBreakdown.AddAll(e.WeeklyPointsBreakdown)
	}

	if err := s.gangs.SaveRollup(ctx, gangID, roll); err != nil {
		if errors.Is(err, models.ErrGangNotFound) {
			s.log.Warn("rollup for unknown gang skipped", zap.String("gang_id", gangID))
			return nil
		}
		return fmt.Errorf("recompute gang %s: save rollup: %w", gangID, err)
	}

	s.log.Debug("gang rollup recomputed",
		zap.String("gang_id", gangID),
		zap.Int("member_count", roll.MemberCount),
		zap.Int("total_member_points", roll.TotalMemberPoints),
		zap.Int("weekly_member_points", roll.WeeklyMemberPoints))
	return nil
}
