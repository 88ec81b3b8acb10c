// internal/app/features/gangs/detail.go
package gangs

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mongang/mongang/internal/app/features/shared/respond"
	"github.com/mongang/mongang/internal/app/store/activitylog"
	"github.com/mongang/mongang/internal/app/system/timeouts"
	"github.com/mongang/mongang/internal/domain/models"
	"go.uber.org/zap"
)

// ServeMembers handles GET /api/gangs/{gangID}/members. Each row shows the
// member's points within this gang, taken from their ledger entry.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	gangID := chi.URLParam(r, "gangID")
	if _, err := h.Gangs.GetByGangID(ctx, gangID); err != nil {
		if errors.Is(err, models.ErrGangNotFound) {
			respond.Error(w, http.StatusNotFound, "gang not found")
			return
		}
		h.Log.Error("gangs: members lookup failed", zap.String("gang_id", gangID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load gang")
		return
	}

	users, err := h.Users.ListByCurrentGang(ctx, gangID)
	if err != nil {
		h.Log.Error("gangs: member list failed", zap.String("gang_id", gangID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	members := make([]memberView, 0, len(users))
	for _, u := range users {
		mv := memberView{
			DiscordID: u.DiscordID,
			Username:  u.Username,
			Avatar:    u.Avatar,
		}
		if e := u.LedgerEntry(gangID); e != nil {
			mv.Points = e.Points
			mv.WeeklyPoints = e.WeeklyPoints
		}
		members = append(members, mv)
	}
	respond.JSON(w, http.StatusOK, members)
}

// ServeStats handles GET /api/gangs/{gangID}/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	gangID := chi.URLParam(r, "gangID")
	gang, err := h.Gangs.GetByGangID(ctx, gangID)
	if errors.Is(err, models.ErrGangNotFound) {
		respond.Error(w, http.StatusNotFound, "gang not found")
		return
	}
	if err != nil {
		h.Log.Error("gangs: stats failed", zap.String("gang_id", gangID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load gang")
		return
	}

	// The rollup's member count lags between recomputes; count current
	// members directly so stats reflect switches that just happened.
	memberCount := int64(gang.MemberCount)
	if n, err := h.Users.CountByCurrentGang(ctx, gangID); err == nil {
		memberCount = n
	} else {
		h.Log.Warn("gangs: member count failed", zap.String("gang_id", gangID), zap.Error(err))
	}

	sv := statsView{
		GangID:                gang.GangID,
		Name:                  gang.Name,
		TotalMemberPoints:     gang.TotalMemberPoints,
		WeeklyMemberPoints:    gang.WeeklyMemberPoints,
		PointsBreakdown:       gang.PointsBreakdown,
		WeeklyPointsBreakdown: gang.WeeklyPointsBreakdown,
		MemberCount:           int(memberCount),
		MessageCount:          gang.MessageCount,
		WeeklyMessageCount:    gang.WeeklyMessageCount,
	}
	if !gang.LastActive.IsZero() {
		sv.LastActive = &gang.LastActive
	}
	respond.JSON(w, http.StatusOK, sv)
}

// ServeActivity handles GET /api/gangs/{gangID}/activity: the newest log
// entries for the gang itself and its current members.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	gangID := chi.URLParam(r, "gangID")
	if _, err := h.Gangs.GetByGangID(ctx, gangID); err != nil {
		if errors.Is(err, models.ErrGangNotFound) {
			respond.Error(w, http.StatusNotFound, "gang not found")
			return
		}
		h.Log.Error("gangs: activity lookup failed", zap.String("gang_id", gangID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load gang")
		return
	}

	members, err := h.Users.ListByCurrentGang(ctx, gangID)
	if err != nil {
		h.Log.Error("gangs: member list failed", zap.String("gang_id", gangID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.DiscordID)
	}

	limit := parseLimit(r.URL.Query().Get("limit"))
	entries, err := h.Activity.ListForGang(ctx, gangID, memberIDs, limit)
	if err != nil {
		h.Log.Error("gangs: activity list failed", zap.String("gang_id", gangID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to list activity")
		return
	}
	respond.JSON(w, http.StatusOK, entries)
}

func parseLimit(s string) int64 {
	if s == "" {
		return activitylog.DefaultLimit
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 || n > 500 {
		return activitylog.DefaultLimit
	}
	return n
}
