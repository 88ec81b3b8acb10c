// internal/app/features/users/list.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mongang/mongang/internal/app/features/shared/respond"
	"github.com/mongang/mongang/internal/app/system/timeouts"
	"github.com/mongang/mongang/internal/domain/models"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ServeList handles GET /api/users: users sorted by lifetime points,
// paged with look-ahead so hasMore is accurate without a count query.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	limit := parseQueryInt(r.URL.Query().Get("limit"), defaultPageSize, maxPageSize)
	skip := parseQueryInt(r.URL.Query().Get("skip"), 0, 1<<31)

	users, err := h.Users.List(ctx, limit+1, skip)
	if err != nil {
		h.Log.Error("users: list failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	hasMore := int64(len(users)) > limit
	if hasMore {
		users = users[:limit]
	}
	respond.JSON(w, http.StatusOK, listResponse{
		Users:   users,
		Limit:   limit,
		Skip:    skip,
		HasMore: hasMore,
	})
}

// ServeDetail handles GET /api/users/{discordID}: the user's denormalized
// totals plus their full gang ledger.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	discordID := chi.URLParam(r, "discordID")
	user, err := h.Users.GetByDiscordID(ctx, discordID)
	if errors.Is(err, models.ErrUserNotFound) {
		respond.Error(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.Log.Error("users: detail failed", zap.String("discord_id", discordID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// ServeActivity handles GET /api/users/{discordID}/activity.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	discordID := chi.URLParam(r, "discordID")
	if _, err := h.Users.GetByDiscordID(ctx, discordID); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("users: activity lookup failed", zap.String("discord_id", discordID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	limit := parseQueryInt(r.URL.Query().Get("limit"), 50, 500)
	entries, err := h.Activity.ListByTarget(ctx, models.TargetUser, discordID, limit)
	if err != nil {
		h.Log.Error("users: activity list failed", zap.String("discord_id", discordID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to list activity")
		return
	}
	respond.JSON(w, http.StatusOK, entries)
}

// parseQueryInt falls back to def for missing, malformed, nonpositive, or
// oversized values. Zero is treated as unset so ?limit=0 cannot request an
// empty page; skip call sites pass def=0, which keeps skip=0 meaning zero.
func parseQueryInt(s string, def, max int64) int64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 || n > max {
		return def
	}
	return n
}
