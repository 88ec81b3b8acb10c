// internal/app/features/users/types.go
package users

import "github.com/mongang/mongang/internal/domain/models"

// awardRequest is the body of POST /api/users/{discordID}/points.
type awardRequest struct {
	Points            int    `json:"points"`
	Category          string `json:"category"`
	Reason            string `json:"reason,omitempty"`
	AwardedBy         string `json:"awardedBy,omitempty"`
	AwardedByUsername string `json:"awardedByUsername,omitempty"`
}

// switchRequest is the body of POST /api/users/{discordID}/gang.
type switchRequest struct {
	GangID string `json:"gangId"`
}

// listResponse wraps the paged user list.
type listResponse struct {
	Users   []models.User `json:"users"`
	Limit   int64         `json:"limit"`
	Skip    int64         `json:"skip"`
	HasMore bool          `json:"hasMore"`
}
