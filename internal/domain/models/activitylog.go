// internal/domain/models/activitylog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actions recorded in the activity log.
const (
	ActionAward  = "award"
	ActionDeduct = "deduct"
	ActionJoin   = "join"
	ActionLeave  = "leave"
	ActionSystem = "system"
)

// Target types for activity log entries.
const (
	TargetUser = "user"
	TargetGang = "gang"
)

// MaxReasonLength caps caller-supplied reasons before they are stored.
const MaxReasonLength = 200

// ClampReason truncates a reason to MaxReasonLength runes. Counting runes
// rather than bytes keeps multi-byte input valid UTF-8 after the cut.
func ClampReason(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxReasonLength {
		return s
	}
	return string(runes[:MaxReasonLength])
}

// ActivityLogEntry is one append-only audit record of a point-affecting
// event. Entries are immutable once written and are only ever read by
// display and history endpoints; the points engine never consults them when
// computing totals.
type ActivityLogEntry struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TargetType        string             `bson:"target_type" json:"targetType"` // user | gang
	TargetID          string             `bson:"target_id" json:"targetId"`
	TargetName        string             `bson:"target_name,omitempty" json:"targetName,omitempty"`
	Action            string             `bson:"action" json:"action"` // award | deduct | join | leave | system
	Points            int                `bson:"points,omitempty" json:"points,omitempty"`
	Category          Category           `bson:"category,omitempty" json:"category,omitempty"`
	Reason            string             `bson:"reason,omitempty" json:"reason,omitempty"`
	AwardedBy         string             `bson:"awarded_by,omitempty" json:"awardedBy,omitempty"`
	AwardedByUsername string             `bson:"awarded_by_username,omitempty" json:"awardedByUsername,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
}
