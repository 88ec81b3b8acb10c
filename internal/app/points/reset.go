// internal/app/points/reset.go
package points

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ResetCounts reports how many records a weekly reset sweep touched.
type ResetCounts struct {
	Users int64
	Gangs int64
}

// ResetAllWeeklyPoints zeroes every weekly-scoped counter system-wide: each
// user's weekly total and the weekly fields of every ledger entry, and each
// gang's weekly rollup and weekly message counter. All-time totals are
// untouched.
//
// The sweep is idempotent: a second run finds every weekly field already
// zero and changes nothing, which also makes it safe to re-run after a
// crash mid-sweep.
func (s *Service) ResetAllWeeklyPoints(ctx context.Context) (ResetCounts, error) {
	now := time.Now().UTC()

	users, err := s.users.ResetWeekly(ctx, now)
	if err != nil {
		return ResetCounts{}, fmt.Errorf("weekly reset: users: %w", err)
	}
	gangs, err := s.gangs.ResetWeekly(ctx, now)
	if err != nil {
		return ResetCounts{Users: users}, fmt.Errorf("weekly reset: gangs: %w", err)
	}

	counts := ResetCounts{Users: users, Gangs: gangs}
	s.log.Info("weekly points reset completed",
		zap.Int64("users_reset", counts.Users),
		zap.Int64("gangs_reset", counts.Gangs))
	return counts, nil
}
