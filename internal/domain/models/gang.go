// internal/domain/models/gang.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gang is a named sub-community mapped from a Discord role. Users belong to
// at most one gang at a time.
//
// The rollup fields (TotalMemberPoints, WeeklyMemberPoints, both breakdowns,
// MemberCount) are a denormalized aggregate over the current members' ledger
// entries. They are recomputed in full by the points engine, never
// incremented in place, so a stale value self-heals on the next rollup.
type Gang struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	GangID        string             `bson:"gang_id" json:"id"`
	Name          string             `bson:"name" json:"name"`
	NameCI        string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Icon          string             `bson:"icon,omitempty" json:"icon,omitempty"`
	Color         string             `bson:"color,omitempty" json:"color,omitempty"`
	DiscordRoleID string             `bson:"discord_role_id,omitempty" json:"discordRoleId,omitempty"`

	TotalMemberPoints     int             `bson:"total_member_points" json:"totalMemberPoints"`
	WeeklyMemberPoints    int             `bson:"weekly_member_points" json:"weeklyMemberPoints"`
	PointsBreakdown       PointsBreakdown `bson:"points_breakdown" json:"pointsBreakdown"`
	WeeklyPointsBreakdown PointsBreakdown `bson:"weekly_points_breakdown" json:"weeklyPointsBreakdown"`
	MemberCount           int             `bson:"member_count" json:"memberCount"`

	// Raw message-volume counters, tracked at the gang level for display.
	// They are deliberately not folded into the points breakdown: the
	// per-user ledger entries are the single source of truth for points.
	MessageCount       int `bson:"message_count" json:"messageCount"`
	WeeklyMessageCount int `bson:"weekly_message_count" json:"weeklyMessageCount"`

	LastActive      time.Time `bson:"last_active,omitempty" json:"lastActive,omitempty"`
	LastWeeklyReset time.Time `bson:"last_weekly_reset,omitempty" json:"lastWeeklyReset,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updatedAt"`
}

// GangRollup is the aggregate the points engine computes from the current
// members' ledger entries and persists onto the gang document.
type GangRollup struct {
	TotalMemberPoints     int             `bson:"total_member_points" json:"totalMemberPoints"`
	WeeklyMemberPoints    int             `bson:"weekly_member_points" json:"weeklyMemberPoints"`
	PointsBreakdown       PointsBreakdown `bson:"points_breakdown" json:"pointsBreakdown"`
	WeeklyPointsBreakdown PointsBreakdown `bson:"weekly_points_breakdown" json:"weeklyPointsBreakdown"`
	MemberCount           int             `bson:"member_count" json:"memberCount"`
	ComputedAt            time.Time       `bson:"computed_at" json:"computedAt"`
}
