// internal/app/features/gangs/handler.go
package gangs

import (
	"github.com/mongang/mongang/internal/app/points"
	"github.com/mongang/mongang/internal/app/store/activitylog"
	gangstore "github.com/mongang/mongang/internal/app/store/gangs"
	userstore "github.com/mongang/mongang/internal/app/store/users"
	"go.uber.org/zap"
)

// Handler owns the gang API endpoints.
type Handler struct {
	Engine   *points.Service
	Gangs    *gangstore.Store
	Users    *userstore.Store
	Activity *activitylog.Store
	Log      *zap.Logger
}

// NewHandler creates a new gangs Handler.
func NewHandler(engine *points.Service, gangs *gangstore.Store, users *userstore.Store, activity *activitylog.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:   engine,
		Gangs:    gangs,
		Users:    users,
		Activity: activity,
		Log:      logger,
	}
}
