// internal/app/features/users/mutate.go
package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mongang/mongang/internal/app/features/shared/respond"
	"github.com/mongang/mongang/internal/app/points"
	"github.com/mongang/mongang/internal/app/system/timeouts"
	"github.com/mongang/mongang/internal/domain/models"
	"go.uber.org/zap"
)

// ServeAwardPoints handles POST /api/users/{discordID}/points: a manual
// award or deduction in the user's current gang.
func (h *Handler) ServeAwardPoints(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	discordID := chi.URLParam(r, "discordID")

	var req awardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Points == 0 {
		respond.Error(w, http.StatusBadRequest, "points must be nonzero")
		return
	}
	category, err := models.ParseCategory(req.Category)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid category")
		return
	}

	reason := models.ClampReason(strings.TrimSpace(h.sanitizer.Sanitize(req.Reason)))

	user, err := h.Engine.ApplyPoints(ctx, discordID, category, req.Points)
	switch {
	case errors.Is(err, points.ErrUserNotFound):
		respond.Error(w, http.StatusNotFound, "user not found")
		return
	case errors.Is(err, points.ErrNoCurrentGang):
		respond.Error(w, http.StatusConflict, "user has no current gang")
		return
	case err != nil:
		h.Log.Error("users: award failed", zap.String("discord_id", discordID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to apply points")
		return
	}

	if err := h.Activity.RecordPointChange(ctx, user, req.Points, category, reason, req.AwardedBy, req.AwardedByUsername); err != nil {
		h.Log.Warn("users: award log failed", zap.String("discord_id", discordID), zap.Error(err))
	}

	respond.JSON(w, http.StatusOK, user)
}

// ServeSwitchGang handles POST /api/users/{discordID}/gang: moves the user
// to another gang. The user's lifetime totals are unchanged by the move.
func (h *Handler) ServeSwitchGang(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	discordID := chi.URLParam(r, "discordID")

	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GangID == "" {
		respond.Error(w, http.StatusBadRequest, "gangId is required")
		return
	}

	before, err := h.Users.GetByDiscordID(ctx, discordID)
	if errors.Is(err, models.ErrUserNotFound) {
		respond.Error(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.Log.Error("users: switch lookup failed", zap.String("discord_id", discordID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	user, err := h.Engine.SwitchGang(ctx, discordID, req.GangID)
	switch {
	case errors.Is(err, points.ErrGangNotFound):
		respond.Error(w, http.StatusNotFound, "gang not found")
		return
	case err != nil:
		h.Log.Error("users: switch failed", zap.String("discord_id", discordID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to switch gang")
		return
	}

	if before.CurrentGangID != user.CurrentGangID {
		if before.CurrentGangID != "" {
			if err := h.Activity.RecordMembership(ctx, models.ActionLeave, user, before.CurrentGangID, before.CurrentGangName); err != nil {
				h.Log.Warn("users: leave log failed", zap.Error(err))
			}
		}
		if err := h.Activity.RecordMembership(ctx, models.ActionJoin, user, user.CurrentGangID, user.CurrentGangName); err != nil {
			h.Log.Warn("users: join log failed", zap.Error(err))
		}
	}

	respond.JSON(w, http.StatusOK, user)
}
