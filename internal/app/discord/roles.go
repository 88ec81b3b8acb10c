// internal/app/discord/roles.go
package discord

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/mongang/mongang/internal/app/points"
	"github.com/mongang/mongang/internal/domain/models"
	"go.uber.org/zap"
)

// GangRole holds the gang identity parsed from one Discord role.
type GangRole struct {
	GangID string
	Name   string
	RoleID string
	Color  string
}

// ParseGangRole extracts the gang identity from a role name with the given
// prefix, e.g. "Gang: Crimson Tide". The second return is false when the
// role is not a gang role or the name after the prefix is empty.
func ParseGangRole(role *discordgo.Role, prefix string) (GangRole, bool) {
	if role == nil || !strings.HasPrefix(role.Name, prefix) {
		return GangRole{}, false
	}
	name := strings.TrimSpace(strings.TrimPrefix(role.Name, prefix))
	if name == "" {
		return GangRole{}, false
	}
	return GangRole{
		GangID: GangIDFromName(name),
		Name:   name,
		RoleID: role.ID,
		Color:  hexColor(role.Color),
	}, true
}

// GangIDFromName derives the stable gang key from a display name: folded
// for case and diacritics, with spaces collapsed to hyphens. The key stays
// stable when a role is merely recased or reaccented.
func GangIDFromName(name string) string {
	return strings.Join(strings.Fields(text.Fold(name)), "-")
}

func hexColor(c int) string {
	if c == 0 {
		return ""
	}
	const hexdigits = "0123456789abcdef"
	b := make([]byte, 7)
	b[0] = '#'
	for i := 6; i >= 1; i-- {
		b[i] = hexdigits[c&0xf]
		c >>= 4
	}
	return string(b)
}

// memberGangRole finds the member's gang role, if any, given the guild's
// role set. The first matching role wins, mirroring how the membership is
// displayed in Discord.
func (b *Bot) memberGangRole(memberRoleIDs []string, guildRoles []*discordgo.Role) (GangRole, bool) {
	byID := make(map[string]*discordgo.Role, len(guildRoles))
	for _, r := range guildRoles {
		byID[r.ID] = r
	}
	for _, id := range memberRoleIDs {
		if gr, ok := ParseGangRole(byID[id], b.cfg.RolePrefix); ok {
			return gr, true
		}
	}
	return GangRole{}, false
}

func (b *Bot) onGuildMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if b.cfg.GuildID != "" && m.GuildID != b.cfg.GuildID {
		return
	}
	if m.User == nil || m.User.Bot {
		return
	}

	guildRoles, err := s.GuildRoles(m.GuildID)
	if err != nil {
		b.log.Error("failed to load guild roles", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gr, has := b.memberGangRole(m.Roles, guildRoles)
	if err := b.applyMembership(ctx, m.User, gr, has); err != nil {
		b.log.Error("failed to apply membership change",
			zap.String("discord_id", m.User.ID), zap.Error(err))
	}
}

// applyMembership reconciles one user's stored gang with the gang role they
// currently hold, switching, joining, or leaving as needed, and writes the
// matching activity entries.
func (b *Bot) applyMembership(ctx context.Context, du *discordgo.User, gr GangRole, hasGang bool) error {
	if err := b.users.UpsertProfile(ctx, du.ID, du.Username, du.Avatar); err != nil {
		return err
	}

	u, err := b.users.GetByDiscordID(ctx, du.ID)
	if err != nil {
		return err
	}

	if !hasGang {
		if u.CurrentGangID == "" {
			return nil
		}
		oldID, oldName := u.CurrentGangID, u.CurrentGangName
		left, err := b.engine.LeaveGang(ctx, du.ID)
		if err != nil {
			return err
		}
		if err := b.activity.RecordMembership(ctx, models.ActionLeave, left, oldID, oldName); err != nil {
			b.log.Warn("failed to log leave", zap.Error(err))
		}
		return nil
	}

	// Make sure the gang exists before switching into it. A role seen here
	// before the periodic sync ran is created on the spot.
	if err := b.gangs.Upsert(ctx, gr.GangID, gr.Name, gr.RoleID, gr.Color); err != nil {
		return err
	}
	if u.CurrentGangID == gr.GangID {
		return nil
	}

	oldID, oldName := u.CurrentGangID, u.CurrentGangName
	switched, err := b.engine.SwitchGang(ctx, du.ID, gr.GangID)
	if err != nil {
		if errors.Is(err, points.ErrGangNotFound) {
			return nil
		}
		return err
	}
	if oldID != "" {
		if err := b.activity.RecordMembership(ctx, models.ActionLeave, switched, oldID, oldName); err != nil {
			b.log.Warn("failed to log leave", zap.Error(err))
		}
	}
	if err := b.activity.RecordMembership(ctx, models.ActionJoin, switched, gr.GangID, gr.Name); err != nil {
		b.log.Warn("failed to log join", zap.Error(err))
	}
	return nil
}
