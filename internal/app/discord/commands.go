// internal/app/discord/commands.go
package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mongang/mongang/internal/app/points"
	"github.com/mongang/mongang/internal/domain/models"
	"go.uber.org/zap"
)

func commandDefinitions() []*discordgo.ApplicationCommand {
	categoryChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 4)
	for _, c := range models.Categories() {
		categoryChoices = append(categoryChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  string(c),
			Value: string(c),
		})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "award",
			Description: "Award (or deduct) points to a member in their current gang.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The member to award points to.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "points",
					Description: "Points to award. Negative values deduct.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "category",
					Description: "The points category.",
					Required:    true,
					Choices:     categoryChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why the points are awarded.",
					Required:    false,
				},
			},
		},
		{
			Name:        "ganginfo",
			Description: "Show a gang's standings.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "gang",
					Description: "Gang name. Defaults to your current gang.",
					Required:    false,
				},
			},
		},
	}
}

func (b *Bot) registerCommands() error {
	for _, cmd := range commandDefinitions() {
		created, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.cfg.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("discord: register %s: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
	}
	return nil
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var reply string
	switch i.ApplicationCommandData().Name {
	case "award":
		reply = b.handleAward(ctx, i)
	case "ganginfo":
		reply = b.handleGangInfo(ctx, i)
	default:
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: reply},
	})
	if err != nil {
		b.log.Error("failed to respond to interaction",
			zap.String("command", i.ApplicationCommandData().Name), zap.Error(err))
	}
}

func (b *Bot) handleAward(ctx context.Context, i *discordgo.InteractionCreate) string {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionManageServer == 0 {
		return "You need the Manage Server permission to award points."
	}

	var (
		target   *discordgo.User
		delta    int
		category models.Category
		reason   string
	)
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			target = opt.UserValue(b.session)
		case "points":
			delta = int(opt.IntValue())
		case "category":
			category = models.Category(opt.StringValue())
		case "reason":
			reason = opt.StringValue()
		}
	}
	if target == nil {
		return "No target user given."
	}
	if delta == 0 {
		return "Zero points is not much of an award."
	}

	reason = models.ClampReason(strings.TrimSpace(b.sanitizer.Sanitize(reason)))

	user, err := b.engine.ApplyPoints(ctx, target.ID, category, delta)
	switch {
	case errors.Is(err, points.ErrUserNotFound):
		return fmt.Sprintf("%s isn't in my records yet. They need to be synced first.", target.Username)
	case errors.Is(err, points.ErrNoCurrentGang):
		return fmt.Sprintf("%s isn't in a gang, so there's nowhere to put the points.", target.Username)
	case errors.Is(err, points.ErrInvalidCategory):
		return fmt.Sprintf("%q is not a valid category.", category)
	case err != nil:
		b.log.Error("award failed", zap.String("discord_id", target.ID), zap.Error(err))
		return "Something went wrong recording the award."
	}

	awardedBy, awardedByName := "", ""
	if i.Member != nil && i.Member.User != nil {
		awardedBy = i.Member.User.ID
		awardedByName = i.Member.User.Username
	}
	if err := b.activity.RecordPointChange(ctx, user, delta, category, reason, awardedBy, awardedByName); err != nil {
		b.log.Warn("failed to log award", zap.Error(err))
	}

	verb := "Awarded"
	shown := delta
	if delta < 0 {
		verb = "Deducted"
		shown = -delta
	}
	return fmt.Sprintf("%s %d %s point(s) %s %s. They now have %d total (%d this week).",
		verb, shown, category, directionWord(delta), user.Username, user.Points, user.WeeklyPoints)
}

func directionWord(delta int) string {
	if delta < 0 {
		return "from"
	}
	return "to"
}

func (b *Bot) handleGangInfo(ctx context.Context, i *discordgo.InteractionCreate) string {
	var gang models.Gang
	var err error

	if opts := i.ApplicationCommandData().Options; len(opts) > 0 && opts[0].Name == "gang" {
		name := opts[0].StringValue()
		gang, err = b.gangs.GetByName(ctx, name)
		if errors.Is(err, models.ErrGangNotFound) {
			return fmt.Sprintf("I don't know a gang called %q.", name)
		}
	} else {
		if i.Member == nil || i.Member.User == nil {
			return "Tell me which gang you want to know about."
		}
		u, uerr := b.users.GetByDiscordID(ctx, i.Member.User.ID)
		if uerr != nil || u.CurrentGangID == "" {
			return "You're not in a gang. Name one instead."
		}
		gang, err = b.gangs.GetByGangID(ctx, u.CurrentGangID)
	}
	if err != nil {
		b.log.Error("ganginfo lookup failed", zap.Error(err))
		return "Something went wrong looking that gang up."
	}

	return fmt.Sprintf(
		"**%s** has %d member(s) holding %d point(s) (%d this week).\n"+
			"Breakdown: %d message, %d gamer, %d art & memes, %d other.",
		gang.Name, gang.MemberCount, gang.TotalMemberPoints, gang.WeeklyMemberPoints,
		gang.PointsBreakdown.MessageActivity, gang.PointsBreakdown.Gamer,
		gang.PointsBreakdown.ArtAndMemes, gang.PointsBreakdown.Other)
}
