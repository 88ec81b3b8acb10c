// internal/app/discord/messages.go
package discord

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mongang/mongang/internal/app/points"
	"github.com/mongang/mongang/internal/domain/models"
	"go.uber.org/zap"
)

// Message scoring thresholds, by content length in bytes.
const (
	minScoredLength  = 5
	mediumMsgLength  = 50
	longMsgLength    = 100
	basePoints       = 1
	mediumMsgPoints  = 2
	longMsgPoints    = 3
	msgAwardedReason = "message activity"
)

// MessagePoints returns the points a message earns from its content, or 0
// when the message is too short to score.
func MessagePoints(content string) int {
	n := len(content)
	switch {
	case n <= minScoredLength:
		return 0
	case n > longMsgLength:
		return longMsgPoints
	case n > mediumMsgLength:
		return mediumMsgPoints
	default:
		return basePoints
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if b.cfg.GuildID != "" && m.GuildID != b.cfg.GuildID {
		return
	}

	pts := MessagePoints(m.Content)
	if pts == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	user, err := b.engine.ApplyPoints(ctx, m.Author.ID, models.CategoryMessageActivity, pts)
	switch {
	case errors.Is(err, points.ErrUserNotFound), errors.Is(err, points.ErrNoCurrentGang):
		// Not synced yet, or not in a gang. Nothing to score against.
		return
	case err != nil:
		b.log.Error("failed to apply message points",
			zap.String("discord_id", m.Author.ID), zap.Error(err))
		return
	}

	if err := b.gangs.IncMessageCounts(ctx, user.CurrentGangID, 1); err != nil {
		b.log.Warn("failed to bump gang message count",
			zap.String("gang_id", user.CurrentGangID), zap.Error(err))
	}
	if err := b.activity.RecordPointChange(ctx, user, pts, models.CategoryMessageActivity, msgAwardedReason, "", ""); err != nil {
		b.log.Warn("failed to log message award", zap.Error(err))
	}
}
