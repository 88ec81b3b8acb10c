// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/mongang/mongang/internal/app/discord"
	"github.com/mongang/mongang/internal/app/points"
	"github.com/mongang/mongang/internal/app/store/activitylog"
	gangstore "github.com/mongang/mongang/internal/app/store/gangs"
	metastore "github.com/mongang/mongang/internal/app/store/meta"
	userstore "github.com/mongang/mongang/internal/app/store/users"
	"github.com/mongang/mongang/internal/app/system/workers"
	"go.uber.org/zap"
)

// services holds the long-lived application objects built during Startup
// and shared by BuildHandler and Shutdown.
type services struct {
	users    *userstore.Store
	gangs    *gangstore.Store
	activity *activitylog.Store
	meta     *metastore.Store

	engine      *points.Service
	resetWorker *workers.WeeklyReset
	bot         *discord.Bot
}

var app services

// Startup builds the points engine and starts the background pieces: the
// weekly reset worker always, and the Discord bot when a token is
// configured. It runs after DB connections and schema setup are complete,
// but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	app.users = userstore.New(db)
	app.gangs = gangstore.New(db)
	app.activity = activitylog.New(db)
	app.meta = metastore.New(db)

	app.engine = points.New(app.users, app.gangs, logger)

	app.resetWorker = workers.NewWeeklyReset(app.engine, app.meta, app.activity, logger, appCfg.ResetCheckInterval)
	app.resetWorker.Start()

	if appCfg.DiscordBotToken == "" {
		logger.Info("discord bot token not configured, running API-only")
		return nil
	}

	app.bot = discord.New(discord.Config{
		Token:        appCfg.DiscordBotToken,
		GuildID:      appCfg.DiscordGuildID,
		RolePrefix:   appCfg.GangRolePrefix,
		SyncInterval: appCfg.DiscordSyncInterval,
	}, app.engine, app.users, app.gangs, app.activity, logger)

	if err := app.bot.Start(ctx); err != nil {
		app.resetWorker.Stop()
		return err
	}
	return nil
}
