// internal/app/features/activity/handler.go
package activity

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mongang/mongang/internal/app/features/shared/respond"
	"github.com/mongang/mongang/internal/app/store/activitylog"
	"github.com/mongang/mongang/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler owns the activity feed endpoint.
type Handler struct {
	Activity *activitylog.Store
	Log      *zap.Logger
}

// NewHandler creates a new activity Handler.
func NewHandler(activity *activitylog.Store, logger *zap.Logger) *Handler {
	return &Handler{Activity: activity, Log: logger}
}

// ServeRecent handles GET /api/activity: the newest log entries across all
// targets, newest first.
func (h *Handler) ServeRecent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	limit := int64(activitylog.DefaultLimit)
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := h.Activity.ListRecent(ctx, limit)
	if err != nil {
		h.Log.Error("activity: list failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to list activity")
		return
	}
	respond.JSON(w, http.StatusOK, entries)
}
