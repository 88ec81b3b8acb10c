// internal/app/discord/sync.go
package discord

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const memberPageSize = 1000

// SyncGuild reconciles the database with the guild: every gang role becomes
// a gang document and every member's stored gang is aligned with the gang
// role they hold. Point totals are never touched by the sync; only identity
// and membership move.
func (b *Bot) SyncGuild(ctx context.Context) error {
	runID := uuid.NewString()
	log := b.log.With(zap.String("sync_run", runID))

	roles, err := b.session.GuildRoles(b.cfg.GuildID)
	if err != nil {
		return fmt.Errorf("guild sync: roles: %w", err)
	}

	var gangCount int
	for _, role := range roles {
		gr, ok := ParseGangRole(role, b.cfg.RolePrefix)
		if !ok {
			continue
		}
		if err := b.gangs.Upsert(ctx, gr.GangID, gr.Name, gr.RoleID, gr.Color); err != nil {
			return fmt.Errorf("guild sync: upsert gang %s: %w", gr.GangID, err)
		}
		gangCount++
	}

	var memberCount int
	after := ""
	for {
		members, err := b.session.GuildMembers(b.cfg.GuildID, after, memberPageSize)
		if err != nil {
			return fmt.Errorf("guild sync: members after %q: %w", after, err)
		}
		if len(members) == 0 {
			break
		}
		for _, m := range members {
			if m.User == nil || m.User.Bot {
				continue
			}
			gr, has := b.memberGangRole(m.Roles, roles)
			if err := b.applyMembership(ctx, m.User, gr, has); err != nil {
				log.Warn("sync: member reconcile failed",
					zap.String("discord_id", m.User.ID), zap.Error(err))
				continue
			}
			memberCount++
		}
		if len(members) < memberPageSize {
			break
		}
		after = members[len(members)-1].User.ID
	}

	log.Info("guild sync completed",
		zap.Int("gangs", gangCount),
		zap.Int("members", memberCount))
	return nil
}
