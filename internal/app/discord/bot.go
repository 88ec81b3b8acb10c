// Package discord runs the gateway side of mongang: it scores message
// activity, mirrors gang roles into the database, and serves the slash
// commands.
package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mongang/mongang/internal/app/points"
	"github.com/mongang/mongang/internal/app/store/activitylog"
	gangstore "github.com/mongang/mongang/internal/app/store/gangs"
	userstore "github.com/mongang/mongang/internal/app/store/users"
	"go.uber.org/zap"
)

// Config holds the gateway settings.
type Config struct {
	Token        string
	GuildID      string
	RolePrefix   string // e.g. "Gang:"
	SyncInterval time.Duration
}

// Bot owns the Discord session and the background guild sync loop.
type Bot struct {
	cfg      Config
	engine   *points.Service
	users    *userstore.Store
	gangs    *gangstore.Store
	activity *activitylog.Store
	log      *zap.Logger

	session    *discordgo.Session
	registered []*discordgo.ApplicationCommand
	sanitizer  *bluemonday.Policy

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a bot. The session is not opened until Start.
func New(cfg Config, engine *points.Service, users *userstore.Store, gangs *gangstore.Store, activity *activitylog.Store, logger *zap.Logger) *Bot {
	if cfg.RolePrefix == "" {
		cfg.RolePrefix = "Gang:"
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = 10 * time.Minute
	}
	return &Bot{
		cfg:       cfg,
		engine:    engine,
		users:     users,
		gangs:     gangs,
		activity:  activity,
		log:       logger,
		sanitizer: bluemonday.StrictPolicy(),
		stopCh:    make(chan struct{}),
	}
}

// Start opens the gateway session, registers handlers and slash commands,
// runs an initial guild sync, and starts the periodic sync loop.
func (b *Bot) Start(ctx context.Context) error {
	session, err := discordgo.New("Bot " + b.cfg.Token)
	if err != nil {
		return fmt.Errorf("discord: create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.Info("discord gateway ready", zap.String("user", r.User.Username))
	})
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onGuildMemberUpdate)
	session.AddHandler(b.onInteractionCreate)

	if err := session.Open(); err != nil {
		return fmt.Errorf("discord: open session: %w", err)
	}
	b.session = session

	if err := b.registerCommands(); err != nil {
		_ = session.Close()
		return err
	}

	if err := b.SyncGuild(ctx); err != nil {
		b.log.Error("initial guild sync failed", zap.Error(err))
	}

	b.wg.Add(1)
	go b.syncLoop()

	b.log.Info("discord bot started",
		zap.String("guild_id", b.cfg.GuildID),
		zap.String("role_prefix", b.cfg.RolePrefix),
		zap.Duration("sync_interval", b.cfg.SyncInterval))
	return nil
}

// Stop unregisters the slash commands, stops the sync loop, and closes the
// session.
func (b *Bot) Stop() {
	close(b.stopCh)
	b.wg.Wait()

	if b.session == nil {
		return
	}
	for _, cmd := range b.registered {
		if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.cfg.GuildID, cmd.ID); err != nil {
			b.log.Warn("failed to delete command", zap.String("command", cmd.Name), zap.Error(err))
		}
	}
	if err := b.session.Close(); err != nil {
		b.log.Warn("failed to close discord session", zap.Error(err))
	}
	b.log.Info("discord bot stopped")
}

func (b *Bot) syncLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if err := b.SyncGuild(ctx); err != nil {
				b.log.Error("guild sync failed", zap.Error(err))
			}
			cancel()
		}
	}
}
