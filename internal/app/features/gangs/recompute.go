// internal/app/features/gangs/recompute.go
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

// ServeRecompute handles POST /api/gangs/{gangID}/recompute: an on-demand
// full rollup. Safe to call at any time; a rollup is a pure function of the
// current members' ledgers.
func (h *Handler) ServeRecompute(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	gangID := chi.URLParam(r, "gangID")
	if _, err := h.Gangs.GetByGangID(ctx, gangID); err != nil {
		if errors.Is(err, models.ErrGangNotFound) {
			respond.Error(w, http.StatusNotFound, "gang not found")
			return
		}
		h.Log.Error("gangs: recompute lookup failed", zap.String("gang_id", gangID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load gang")
		return
	}

	if err := h.Engine.RecomputeGang(ctx, gangID); err != nil {
		h.Log.Error("gangs: recompute failed", zap.String("gang_id", gangID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to recompute rollup")
		return
	}

	gang, err := h.Gangs.GetByGangID(ctx, gangID)
	if err != nil {
		h.Log.Error("gangs: reload after recompute failed", zap.String("gang_id", gangID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load gang")
		return
	}
	respond.JSON(w, http.StatusOK, gang)
}
