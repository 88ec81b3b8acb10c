// internal/app/features/gangs/list.go
package gangs

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mongang/mongang/internal/app/features/shared/respond"
	"github.com/mongang/mongang/internal/app/system/timeouts"
	"github.com/mongang/mongang/internal/domain/models"
	"go.uber.org/zap"
)

// ServeList handles GET /api/gangs: every gang, highest total points first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	gangs, err := h.Gangs.List(ctx)
	if err != nil {
		h.Log.Error("gangs: list failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to list gangs")
		return
	}
	respond.JSON(w, http.StatusOK, gangs)
}

// ServeDetail handles GET /api/gangs/{gangID}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	gangID := chi.URLParam(r, "gangID")

	// Refresh the rollup before serving so the detail view reflects any
	// ledger writes that raced the last recompute. Failure is not fatal;
	// the stored rollup is still served.
	if err := h.Engine.RecomputeGang(ctx, gangID); err != nil {
		h.Log.Warn("gangs: detail rollup refresh failed", zap.String("gang_id", gangID), zap.Error(err))
	}

	gang, err := h.Gangs.GetByGangID(ctx, gangID)
	if errors.Is(err, models.ErrGangNotFound) {
		respond.Error(w, http.StatusNotFound, "gang not found")
		return
	}
	if err != nil {
		h.Log.Error("gangs: detail failed", zap.String("gang_id", gangID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load gang")
		return
	}
	respond.JSON(w, http.StatusOK, gang)
}
