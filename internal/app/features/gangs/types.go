// internal/app/features/gangs/types.go
package gangs

import (
	"time"

	"github.com/mongang/mongang/internal/domain/models"
)

// memberView is one member row in the members endpoint. The points shown
// are the member's points within this gang, not their lifetime totals.
type memberView struct {
	DiscordID    string `json:"id"`
	Username     string `json:"username"`
	Avatar       string `json:"avatar,omitempty"`
	Points       int    `json:"points"`
	WeeklyPoints int    `json:"weeklyPoints"`
}

// statsView is the stats endpoint body.
type statsView struct {
	GangID                string                 `json:"id"`
	Name                  string                 `json:"name"`
	TotalMemberPoints     int                    `json:"totalMemberPoints"`
	WeeklyMemberPoints    int                    `json:"weeklyMemberPoints"`
	PointsBreakdown       models.PointsBreakdown `json:"pointsBreakdown"`
	WeeklyPointsBreakdown models.PointsBreakdown `json:"weeklyPointsBreakdown"`
	MemberCount           int                    `json:"memberCount"`
	MessageCount          int                    `json:"messageCount"`
	WeeklyMessageCount    int                    `json:"weeklyMessageCount"`
	LastActive            *time.Time             `json:"lastActive,omitempty"`
}
