package social

import (
	"context"
	"log/slog"

	"github.com/pixil98/go-realm/internal/display"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/rules"
)

// ChangeLeader hands the actor's group to targetId. In guilds the old
// leader takes the new leader's previous role.
func (c *Coordinator) ChangeLeader(ctx context.Context, kind GroupKind, actorId, targetId string) error {
	kn := notifications[kind]

	var members []string
	var demoted, promoted Member
	var groupId int
	err := c.withGroup(kind, actorId, func(g *Group) error {
		if g.LeaderId != actorId {
			return game.NewUserError(kn.notLeader)
		}
		t := g.member(targetId)
		if t < 0 {
			return game.NewUserError(game.UIErrorNotMember)
		}
		if targetId == actorId {
			return nil
		}
		a := g.member(actorId)

		g.LeaderId = targetId
		if kind == KindGuild {
			g.Members[a].Role, g.Members[t].Role = g.Members[t].Role, 0
		}
		demoted, promoted = g.Members[a], g.Members[t]
		members = g.memberIds()
		groupId = g.Id
		c.persist(ctx, g)
		return nil
	})
	if err != nil || members == nil {
		return err
	}

	c.notify(ctx, members, game.Notification{Kind: kn.leader, Payload: LeaderPayload{GroupId: groupId, LeaderId: targetId}})
	if kind == KindGuild {
		c.setMembership(ctx, kind, demoted.CharacterId, groupId, demoted.Role)
		c.setMembership(ctx, kind, promoted.CharacterId, groupId, promoted.Role)
		c.notify(ctx, members, game.Notification{Kind: game.NotifySetGuildRole, Payload: MemberPayload{GroupId: groupId, Member: demoted}})
		c.notify(ctx, members, game.Notification{Kind: game.NotifySetGuildRole, Payload: MemberPayload{GroupId: groupId, Member: promoted}})
	}
	return nil
}

// KickMember removes targetId from the actor's group. Guild officers may
// only kick members ranked below them; in parties only the leader kicks.
func (c *Coordinator) KickMember(ctx context.Context, kind GroupKind, actorId, targetId string) error {
	kn := notifications[kind]

	var remaining []string
	var kicked Member
	var groupId int
	err := c.withGroup(kind, actorId, func(g *Group) error {
		if actorId == targetId {
			return game.NewUserError(game.UIErrorCannotKickSelf)
		}
		t := g.member(targetId)
		if t < 0 {
			return game.NewUserError(game.UIErrorNotMember)
		}
		if g.LeaderId == targetId {
			return game.NewUserError(game.UIErrorCannotKickLeader)
		}

		actor := g.Members[g.member(actorId)]
		if kind == KindGuild {
			role, ok := g.role(actor.Role)
			if !ok || !role.CanKick {
				return game.NewUserError(game.UIErrorCannotKick)
			}
			if actor.Role >= g.Members[t].Role {
				return game.NewUserError(game.UIErrorCannotKickHigher)
			}
		} else if g.LeaderId != actorId {
			return game.NewUserError(kn.notLeader)
		}

		kicked = g.Members[t]
		c.removeMember(g, t)
		remaining = g.memberIds()
		groupId = g.Id
		c.persist(ctx, g)
		return nil
	})
	if err != nil {
		return err
	}

	c.setMembership(ctx, kind, targetId, 0, 0)
	c.notify(ctx, remaining, game.Notification{Kind: kn.remove, Payload: MemberPayload{GroupId: groupId, Member: kicked}})
	c.notify(ctx, []string{targetId}, game.Notification{Kind: kn.clear, Payload: GroupRef{GroupId: groupId}})
	return nil
}

// Leave removes the actor from their group. A leaving leader disbands the
// group unless it is a party configured to promote the next member.
func (c *Coordinator) Leave(ctx context.Context, kind GroupKind, actorId string) error {
	kn := notifications[kind]

	var remaining, cleared []string
	var left Member
	var groupId int
	var newLeader string
	err := c.withGroup(kind, actorId, func(g *Group) error {
		a := g.member(actorId)
		groupId = g.Id
		left = g.Members[a]

		if g.LeaderId == actorId {
			promote := kind == KindParty && c.rules.PartyLeaderLeavePromotes && len(g.Members) > 1
			if !promote {
				cleared = g.memberIds()
				c.disband(ctx, g)
				return nil
			}
		}

		c.removeMember(g, a)
		if g.LeaderId == actorId {
			g.LeaderId = g.Members[0].CharacterId
			newLeader = g.LeaderId
		}
		remaining = g.memberIds()
		c.persist(ctx, g)
		return nil
	})
	if err != nil {
		return err
	}

	if cleared != nil {
		for _, id := range cleared {
			c.setMembership(ctx, kind, id, 0, 0)
		}
		c.notify(ctx, cleared, game.Notification{Kind: kn.clear, Payload: GroupRef{GroupId: groupId}})
		slog.InfoContext(ctx, "group disbanded", "kind", kind, "group", groupId, "leader", actorId)
		return nil
	}

	c.setMembership(ctx, kind, actorId, 0, 0)
	c.notify(ctx, remaining, game.Notification{Kind: kn.remove, Payload: MemberPayload{GroupId: groupId, Member: left}})
	if newLeader != "" {
		c.notify(ctx, remaining, game.Notification{Kind: kn.leader, Payload: LeaderPayload{GroupId: groupId, LeaderId: newLeader}})
	}
	c.notify(ctx, []string{actorId}, game.Notification{Kind: kn.clear, Payload: GroupRef{GroupId: groupId}})
	return nil
}

// removeMember drops the roster entry at index i. The caller holds g.mu.
func (c *Coordinator) removeMember(g *Group, i int) {
	id := g.Members[i].CharacterId
	g.Members = append(g.Members[:i], g.Members[i+1:]...)
	c.set(g.Kind).members.Delete(id)
}

// disband removes the group and every reference to it. The caller holds g.mu.
func (c *Coordinator) disband(ctx context.Context, g *Group) {
	set := c.set(g.Kind)
	for _, m := range g.Members {
		set.members.Delete(m.CharacterId)
	}
	set.invites.DeleteFunc(func(_ string, id int) bool { return id == g.Id })
	set.groups.Delete(g.Id)
	if g.Kind == KindGuild {
		c.names.Delete(c.foldName(g.Name))
	}
	g.disbanded = true
	g.Members = nil
	g.Invitations = nil
	c.unpersist(ctx, g)
}

// ChangeRole assigns a guild role to targetId. Only the leader may do this
// and the leader's own role cannot be handed out.
func (c *Coordinator) ChangeRole(ctx context.Context, actorId, targetId string, role int) error {
	var members []string
	var changed Member
	var groupId int
	err := c.withGroup(KindGuild, actorId, func(g *Group) error {
		if g.LeaderId != actorId {
			return game.NewUserError(game.UIErrorNotGuildLeader)
		}
		if _, ok := g.role(role); !ok || role == 0 {
			return game.NewUserError(game.UIErrorInvalidGuildRole)
		}
		t := g.member(targetId)
		if t < 0 {
			return game.NewUserError(game.UIErrorNotMember)
		}
		if targetId == g.LeaderId {
			return game.NewUserError(game.UIErrorInvalidGuildRole)
		}

		g.Members[t].Role = role
		changed = g.Members[t]
		members = g.memberIds()
		groupId = g.Id
		c.persist(ctx, g)
		return nil
	})
	if err != nil {
		return err
	}

	c.setMembership(ctx, KindGuild, targetId, groupId, role)
	c.notify(ctx, members, game.Notification{Kind: game.NotifySetGuildRole, Payload: MemberPayload{GroupId: groupId, Member: changed}})
	return nil
}

// ChangeGuildRoleSetting redefines one of the guild's roles.
func (c *Coordinator) ChangeGuildRoleSetting(ctx context.Context, actorId string, index int, role rules.GuildRole) error {
	if role.ShareExpPercent < 0 || role.ShareExpPercent > c.rules.MaxShareExpPercent || role.Name == "" {
		return game.NewUserError(game.UIErrorInvalidGuildRole)
	}

	var members []string
	var snap *Group
	err := c.withGroup(KindGuild, actorId, func(g *Group) error {
		if g.LeaderId != actorId {
			return game.NewUserError(game.UIErrorNotGuildLeader)
		}
		if _, ok := g.role(index); !ok {
			return game.NewUserError(game.UIErrorInvalidGuildRole)
		}
		g.Roles[index] = role
		members = g.memberIds()
		snap = g.snapshot()
		c.persist(ctx, g)
		return nil
	})
	if err != nil {
		return err
	}

	c.notify(ctx, members, game.Notification{Kind: game.NotifySetFullGuildData, Payload: snap})
	return nil
}

// ChangeGuildMessage sets the guild message, cut to the configured length.
func (c *Coordinator) ChangeGuildMessage(ctx context.Context, actorId, message string) error {
	var members []string
	var payload SettingsPayload
	err := c.withGroup(KindGuild, actorId, func(g *Group) error {
		if g.LeaderId != actorId {
			return game.NewUserError(game.UIErrorNotGuildLeader)
		}
		g.Settings.Message = display.Truncate(message, c.rules.MaxGuildMessageLength)
		members = g.memberIds()
		payload = SettingsPayload{GroupId: g.Id, Settings: g.Settings}
		c.persist(ctx, g)
		return nil
	})
	if err != nil {
		return err
	}

	c.notify(ctx, members, game.Notification{Kind: game.NotifySetGuildMessage, Payload: payload})
	return nil
}

// ChangePartySetting sets the party's sharing rules.
func (c *Coordinator) ChangePartySetting(ctx context.Context, actorId string, shareExp, shareItem bool) error {
	var members []string
	var payload SettingsPayload
	err := c.withGroup(KindParty, actorId, func(g *Group) error {
		if g.LeaderId != actorId {
			return game.NewUserError(game.UIErrorNotPartyLeader)
		}
		g.Settings.ShareExp = shareExp
		g.Settings.ShareItem = shareItem
		members = g.memberIds()
		payload = SettingsPayload{GroupId: g.Id, Settings: g.Settings}
		return nil
	})
	if err != nil {
		return err
	}

	c.notify(ctx, members, game.Notification{Kind: game.NotifySetPartySetting, Payload: payload})
	return nil
}

// AdjustGuildGold adds delta to the guild bank and returns the new balance.
// A withdrawal larger than the balance fails without change.
func (c *Coordinator) AdjustGuildGold(ctx context.Context, guildId int, delta int64) (int64, error) {
	var members []string
	var balance int64
	err := c.withGroupId(KindGuild, guildId, func(g *Group) error {
		if g.Gold+delta < 0 {
			return game.NewUserError(game.UIErrorNotEnoughGoldWd)
		}
		g.Gold += delta
		balance = g.Gold
		members = g.memberIds()
		c.persist(ctx, g)
		return nil
	})
	if err != nil {
		return 0, err
	}

	c.notify(ctx, members, game.Notification{Kind: game.NotifySetGuildGold, Payload: GoldPayload{GroupId: guildId, Gold: balance}})
	return balance, nil
}
