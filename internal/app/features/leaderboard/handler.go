// internal/app/features/leaderboard/handler.go
package leaderboard

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/mongang/mongang/internal/app/features/shared/respond"
	gangstore "github.com/mongang/mongang/internal/app/store/gangs"
	userstore "github.com/mongang/mongang/internal/app/store/users"
	"github.com/mongang/mongang/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	defaultTop = 25
	maxTop     = 100
)

// Handler owns the leaderboard endpoints.
type Handler struct {
	Users *userstore.Store
	Gangs *gangstore.Store
	Log   *zap.Logger
}

// NewHandler creates a new leaderboard Handler.
func NewHandler(users *userstore.Store, gangs *gangstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Gangs: gangs, Log: logger}
}

// userRow is one leaderboard row.
type userRow struct {
	Rank         int    `json:"rank"`
	DiscordID    string `json:"id"`
	Username     string `json:"username"`
	Avatar       string `json:"avatar,omitempty"`
	GangName     string `json:"gangName,omitempty"`
	Points       int    `json:"points"`
	WeeklyPoints int    `json:"weeklyPoints"`
}

// gangRow is one gang leaderboard row.
type gangRow struct {
	Rank               int    `json:"rank"`
	GangID             string `json:"id"`
	Name               string `json:"name"`
	TotalMemberPoints  int    `json:"totalMemberPoints"`
	WeeklyMemberPoints int    `json:"weeklyMemberPoints"`
	MemberCount        int    `json:"memberCount"`
}

// ServeUsers handles GET /api/leaderboard/users?period=weekly|alltime.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	weekly := r.URL.Query().Get("period") == "weekly"
	limit := parseTop(r.URL.Query().Get("limit"))

	users, err := h.Users.TopByPoints(ctx, limit, weekly)
	if err != nil {
		h.Log.Error("leaderboard: user query failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	rows := make([]userRow, 0, len(users))
	for i, u := range users {
		rows = append(rows, userRow{
			Rank:         i + 1,
			DiscordID:    u.DiscordID,
			Username:     u.Username,
			Avatar:       u.Avatar,
			GangName:     u.CurrentGangName,
			Points:       u.Points,
			WeeklyPoints: u.WeeklyPoints,
		})
	}
	respond.JSON(w, http.StatusOK, rows)
}

// ServeGangs handles GET /api/leaderboard/gangs?period=weekly|alltime.
func (h *Handler) ServeGangs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	weekly := r.URL.Query().Get("period") == "weekly"

	gangs, err := h.Gangs.List(ctx)
	if err != nil {
		h.Log.Error("leaderboard: gang query failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	// The store sorts by all-time totals; re-rank in memory for the weekly
	// view. Gang counts are small.
	if weekly {
		sort.SliceStable(gangs, func(i, j int) bool {
			return gangs[i].WeeklyMemberPoints > gangs[j].WeeklyMemberPoints
		})
	}

	rows := make([]gangRow, 0, len(gangs))
	for i, g := range gangs {
		rows = append(rows, gangRow{
			Rank:               i + 1,
			GangID:             g.GangID,
			Name:               g.Name,
			TotalMemberPoints:  g.TotalMemberPoints,
			WeeklyMemberPoints: g.WeeklyMemberPoints,
			MemberCount:        g.MemberCount,
		})
	}
	respond.JSON(w, http.StatusOK, rows)
}

func parseTop(s string) int64 {
	if s == "" {
		return defaultTop
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 || n > maxTop {
		return defaultTop
	}
	return n
}
