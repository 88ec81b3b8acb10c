// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	activityfeature "github.com/mongang/mongang/internal/app/features/activity"
	gangsfeature "github.com/mongang/mongang/internal/app/features/gangs"
	healthfeature "github.com/mongang/mongang/internal/app/features/health"
	homefeature "github.com/mongang/mongang/internal/app/features/home"
	leaderboardfeature "github.com/mongang/mongang/internal/app/features/leaderboard"
	usersfeature "github.com/mongang/mongang/internal/app/features/users"
	"github.com/mongang/mongang/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// apiRequestsPerMinute caps API calls per client IP.
const apiRequestsPerMinute = 120

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed, so the stores and engine built in
// Startup are available here.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Get("/health", healthHandler.Serve)

	// Root service banner
	homeHandler := homefeature.NewHandler(appCfg.Version)
	r.Get("/", homeHandler.Serve)

	// JSON API; rate limited per client IP so a misbehaving integration
	// cannot flood point awards or recomputes
	limiter := ratelimit.New(apiRequestsPerMinute, time.Minute)
	r.Route("/api", func(api chi.Router) {
		api.Use(limiter.Middleware)

		gangsHandler := gangsfeature.NewHandler(app.engine, app.gangs, app.users, app.activity, logger)
		api.Mount("/gangs", gangsfeature.Routes(gangsHandler))

		usersHandler := usersfeature.NewHandler(app.engine, app.users, app.activity, logger)
		api.Mount("/users", usersfeature.Routes(usersHandler))

		leaderboardHandler := leaderboardfeature.NewHandler(app.users, app.gangs, logger)
		api.Mount("/leaderboard", leaderboardfeature.Routes(leaderboardHandler))

		activityHandler := activityfeature.NewHandler(app.activity, logger)
		api.Get("/activity", activityHandler.ServeRecent)
	})

	return r, nil
}
