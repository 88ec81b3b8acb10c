// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP ports,
// TLS, logging level, and request limits. AppConfig is where everything
// specific to mongang lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Discord gateway configuration. When DiscordBotToken is blank the bot
	// is not started and the service runs API-only.
	DiscordBotToken     string
	DiscordGuildID      string
	GangRolePrefix      string        // role name prefix marking gang roles (default "Gang:")
	DiscordSyncInterval time.Duration // how often the guild sync reconciles roles and members

	// Weekly reset worker configuration.
	ResetCheckInterval time.Duration // how often the reset guard is checked

	// Service metadata shown in the root banner.
	Version string
}
