// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for mongang.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, discord_bot_token, etc.
//   - Environment variables: MONGANG_MONGO_URI, MONGANG_DISCORD_BOT_TOKEN, etc.
//   - Command-line flags: --mongo_uri, --discord_bot_token, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "mongang", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	// Discord gateway configuration
	{Name: "discord_bot_token", Default: "", Desc: "Discord bot token (blank disables the bot)"},
	{Name: "discord_guild_id", Default: "", Desc: "Discord guild (server) ID to operate in"},
	{Name: "gang_role_prefix", Default: "Gang:", Desc: "Role name prefix that marks gang roles"},
	{Name: "discord_sync_interval", Default: "10m", Desc: "How often the guild sync runs (e.g., 10m, 1h)"},

	// Weekly reset worker
	{Name: "reset_check_interval", Default: "5m", Desc: "How often the weekly reset guard is checked"},

	{Name: "version", Default: "dev", Desc: "Service version shown in the root banner"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific to
// this app. config.LoadWithAppConfig merges .env files, config files,
// MONGANG_* environment variables, and command-line flags with the usual
// precedence: flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MONGANG", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		DiscordBotToken:     appValues.String("discord_bot_token"),
		DiscordGuildID:      appValues.String("discord_guild_id"),
		GangRolePrefix:      appValues.String("gang_role_prefix"),
		DiscordSyncInterval: appValues.Duration("discord_sync_interval", 10*time.Minute),

		ResetCheckInterval: appValues.Duration("reset_check_interval", 5*time.Minute),

		Version: appValues.String("version"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// mongang validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and checks that a guild ID is
// present whenever a bot token is configured.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.DiscordBotToken != "" && appCfg.DiscordGuildID == "" {
		return fmt.Errorf("discord_bot_token is set but discord_guild_id is blank")
	}
	if appCfg.ResetCheckInterval <= 0 {
		return fmt.Errorf("reset_check_interval must be positive")
	}
	if appCfg.DiscordSyncInterval <= 0 {
		return fmt.Errorf("discord_sync_interval must be positive")
	}

	return nil
}
