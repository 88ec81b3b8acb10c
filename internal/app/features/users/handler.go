// internal/app/features/users/handler.go
package users

import (
	"github.com/microcosm-cc/bluemonday"
	"github.com/mongang/mongang/internal/app/points"
	"github.com/mongang/mongang/internal/app/store/activitylog"
	userstore "github.com/mongang/mongang/internal/app/store/users"
	"go.uber.org/zap"
)

// Handler owns the user API endpoints.
type Handler struct {
	Engine   *points.Service
	Users    *userstore.Store
	Activity *activitylog.Store
	Log      *zap.Logger

	sanitizer *bluemonday.Policy
}

// NewHandler creates a new users Handler.
func NewHandler(engine *points.Service, users *userstore.Store, activity *activitylog.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:    engine,
		Users:     users,
		Activity:  activity,
		Log:       logger,
		sanitizer: bluemonday.StrictPolicy(),
	}
}
