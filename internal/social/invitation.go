package social

import (
	"context"
	"errors"
	"math"

	"github.com/pixil98/go-realm/internal/display"
	"github.com/pixil98/go-realm/internal/game"
)

// Invite records an invitation from inviterId into their group and notifies
// the invitee. A newer invitation replaces any older one for the invitee.
func (c *Coordinator) Invite(ctx context.Context, kind GroupKind, inviterId, inviteeId string) error {
	set := c.set(kind)
	kn := notifications[kind]

	if inviterId == inviteeId {
		return game.NewUserError(game.UIErrorCannotInvite)
	}
	if _, online := c.roster.Connection(inviteeId); !online {
		return game.NewUserError(game.UIErrorCharacterNotFound)
	}
	if _, joined := set.members.Get(inviteeId); joined {
		return game.NewUserError(kn.joinedAnother)
	}

	var payload InvitationPayload
	var groupId int
	err := c.withGroup(kind, inviterId, func(g *Group) error {
		i := g.member(inviterId)
		if kind == KindGuild {
			role, ok := g.role(g.Members[i].Role)
			if !ok || !role.CanInvite {
				return game.NewUserError(game.UIErrorCannotInvite)
			}
		} else if g.LeaderId != inviterId {
			return game.NewUserError(game.UIErrorCannotInvite)
		}
		if len(g.Members) >= c.maxMembers(kind) {
			return game.NewUserError(game.UIErrorGroupFull)
		}

		g.dropInvitations(inviteeId)
		g.Invitations = append(g.Invitations, Invitation{InviteeId: inviteeId, InviterId: inviterId})
		c.persist(ctx, g)

		groupId = g.Id
		payload = InvitationPayload{
			GroupId:     g.Id,
			GroupName:   g.Name,
			InviterId:   inviterId,
			InviterName: g.Members[i].Name,
		}
		return nil
	})
	if err != nil {
		return err
	}

	if prev, had := set.invites.Swap(inviteeId, groupId); had && prev != groupId {
		_ = c.withGroupId(kind, prev, func(g *Group) error {
			g.dropInvitations(inviteeId)
			c.persist(ctx, g)
			return nil
		})
	}

	c.notify(ctx, []string{inviteeId}, game.Notification{Kind: kn.invitation, Payload: payload})
	return nil
}

// AcceptInvitation joins the invitee to the group. The invitee receives the
// full group, existing members the new member and the inviter a courtesy
// message.
func (c *Coordinator) AcceptInvitation(ctx context.Context, kind GroupKind, inviteeId string, groupId int, inviterId string) error {
	set := c.set(kind)
	kn := notifications[kind]

	var snap *Group
	var member Member
	var existing []string
	var inviter string
	err := c.withGroupId(kind, groupId, func(g *Group) error {
		i := g.invitation(inviteeId, inviterId)
		if i < 0 {
			return game.NewUserError(game.UIErrorInvitationNotFound)
		}
		if len(g.Members) >= c.maxMembers(kind) {
			return game.NewUserError(game.UIErrorGroupFull)
		}

		name := inviteeId
		err := c.roster.UpdateCharacter(inviteeId, func(rec *game.CharacterRecord) error {
			if _, loaded := set.members.LoadOrStore(inviteeId, func() int { return g.Id }); loaded {
				return game.NewUserError(kn.joinedAnother)
			}
			name = rec.Name
			c.applyMembership(kind, rec, g.Id, c.rules.MemberRole())
			return nil
		})
		if err != nil {
			return loginError(err)
		}

		inviter = g.Invitations[i].InviterId
		g.dropInvitations(inviteeId)
		existing = g.memberIds()

		member = Member{CharacterId: inviteeId, Name: name}
		if kind == KindGuild {
			member.Role = c.rules.MemberRole()
		}
		g.Members = append(g.Members, member)
		c.persist(ctx, g)
		snap = g.snapshot()
		return nil
	})
	if err != nil {
		return invitationError(kind, err)
	}
	set.invites.Delete(inviteeId)

	c.notify(ctx, []string{inviteeId}, game.Notification{Kind: kn.full, Payload: snap})
	c.notify(ctx, existing, game.Notification{Kind: kn.add, Payload: MemberPayload{GroupId: groupId, Member: member}})
	c.notify(ctx, []string{inviter}, game.Notification{
		Kind: game.NotifyGameMessage,
		Code: kn.accepted,
		Text: c.catalog.Render(kn.accepted, display.InviteText{Name: member.Name, Group: snap.Name}),
	})
	return nil
}

// DeclineInvitation drops the invitation and tells the inviter.
func (c *Coordinator) DeclineInvitation(ctx context.Context, kind GroupKind, inviteeId string, groupId int, inviterId string) error {
	set := c.set(kind)
	kn := notifications[kind]

	var inviter, groupName string
	err := c.withGroupId(kind, groupId, func(g *Group) error {
		i := g.invitation(inviteeId, inviterId)
		if i < 0 {
			return game.NewUserError(game.UIErrorInvitationNotFound)
		}
		inviter = g.Invitations[i].InviterId
		groupName = g.Name
		g.dropInvitations(inviteeId)
		c.persist(ctx, g)
		return nil
	})
	if err != nil {
		return invitationError(kind, err)
	}
	set.invites.Delete(inviteeId)

	name := inviteeId
	_ = c.roster.UpdateCharacter(inviteeId, func(rec *game.CharacterRecord) error {
		name = rec.Name
		return nil
	})
	c.notify(ctx, []string{inviter}, game.Notification{
		Kind: game.NotifyGameMessage,
		Code: kn.declined,
		Text: c.catalog.Render(kn.declined, display.InviteText{Name: name, Group: groupName}),
	})
	return nil
}

func (c *Coordinator) maxMembers(kind GroupKind) int {
	n := c.rules.MaxGuildMembers
	if kind == KindParty {
		n = c.rules.MaxPartyMembers
	}
	if n <= 0 {
		return math.MaxInt
	}
	return n
}

func (c *Coordinator) applyMembership(kind GroupKind, rec *game.CharacterRecord, groupId, role int) {
	if kind == KindParty {
		rec.PartyId = groupId
		return
	}
	rec.GuildId = groupId
	rec.GuildRole = role
}

// invitationError reports a vanished group as a missing invitation.
func invitationError(kind GroupKind, err error) error {
	if code, ok := game.CodeOf(err); ok && code == notifications[kind].notJoined {
		return game.NewUserError(game.UIErrorInvitationNotFound)
	}
	return err
}

func loginError(err error) error {
	if errors.Is(err, game.ErrPlayerNotFound) {
		return game.NewUserError(game.UIErrorNotLoggedIn)
	}
	return err
}
