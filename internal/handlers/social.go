package handlers

import (
	"context"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/rules"
	"github.com/pixil98/go-realm/internal/social"
)

type CreateGuildRequest struct {
	Name string `json:"name"`
}

type PartySettingRequest struct {
	ShareExp  bool `json:"share_exp"`
	ShareItem bool `json:"share_item"`
}

type MemberRequest struct {
	CharacterId string `json:"character_id"`
}

type InvitationReply struct {
	GroupId   int    `json:"group_id"`
	InviterId string `json:"inviter_id"`
}

type RoleRequest struct {
	CharacterId string `json:"character_id"`
	Role        int    `json:"role"`
}

type RoleSettingRequest struct {
	Index int             `json:"index"`
	Role  rules.GuildRole `json:"role"`
}

type MessageRequest struct {
	Message string `json:"message"`
}

type FindGuildsRequest struct {
	Name string `json:"name"`
}

type JoinGuildRequest struct {
	GuildId int `json:"guild_id"`
}

// actor wraps fn with the lookup of the requesting character.
func actor[P any](h *Handlers, fn func(ctx context.Context, characterId string, p P) (any, error)) func(context.Context, game.ConnectionId, P) (any, error) {
	return func(ctx context.Context, conn game.ConnectionId, p P) (any, error) {
		id, err := h.characterId(conn)
		if err != nil {
			return nil, err
		}
		return fn(ctx, id, p)
	}
}

func (h *Handlers) createGuild(ctx context.Context, conn game.ConnectionId, req CreateGuildRequest) (any, error) {
	id, err := h.characterId(conn)
	if err != nil {
		return nil, err
	}
	g, err := h.social.CreateGuild(ctx, id, req.Name)
	if err != nil {
		return nil, err
	}
	return social.GroupRef{GroupId: g.Id}, nil
}

func (h *Handlers) createParty(ctx context.Context, conn game.ConnectionId, req PartySettingRequest) (any, error) {
	id, err := h.characterId(conn)
	if err != nil {
		return nil, err
	}
	g, err := h.social.CreateParty(ctx, id, req.ShareExp, req.ShareItem)
	if err != nil {
		return nil, err
	}
	return social.GroupRef{GroupId: g.Id}, nil
}

func (h *Handlers) invite(kind social.GroupKind) func(context.Context, game.ConnectionId, MemberRequest) (any, error) {
	return actor(h, func(ctx context.Context, id string, req MemberRequest) (any, error) {
		return nil, h.social.Invite(ctx, kind, id, req.CharacterId)
	})
}

func (h *Handlers) acceptInvitation(kind social.GroupKind) func(context.Context, game.ConnectionId, InvitationReply) (any, error) {
	return actor(h, func(ctx context.Context, id string, req InvitationReply) (any, error) {
		return nil, h.social.AcceptInvitation(ctx, kind, id, req.GroupId, req.InviterId)
	})
}

func (h *Handlers) declineInvitation(kind social.GroupKind) func(context.Context, game.ConnectionId, InvitationReply) (any, error) {
	return actor(h, func(ctx context.Context, id string, req InvitationReply) (any, error) {
		return nil, h.social.DeclineInvitation(ctx, kind, id, req.GroupId, req.InviterId)
	})
}

func (h *Handlers) changeLeader(kind social.GroupKind) func(context.Context, game.ConnectionId, MemberRequest) (any, error) {
	return actor(h, func(ctx context.Context, id string, req MemberRequest) (any, error) {
		return nil, h.social.ChangeLeader(ctx, kind, id, req.CharacterId)
	})
}

func (h *Handlers) kickMember(kind social.GroupKind) func(context.Context, game.ConnectionId, MemberRequest) (any, error) {
	return actor(h, func(ctx context.Context, id string, req MemberRequest) (any, error) {
		return nil, h.social.KickMember(ctx, kind, id, req.CharacterId)
	})
}

func (h *Handlers) leave(kind social.GroupKind) func(context.Context, game.ConnectionId, struct{}) (any, error) {
	return actor(h, func(ctx context.Context, id string, _ struct{}) (any, error) {
		return nil, h.social.Leave(ctx, kind, id)
	})
}

func (h *Handlers) changeMemberGuildRole(ctx context.Context, conn game.ConnectionId, req RoleRequest) (any, error) {
	id, err := h.characterId(conn)
	if err != nil {
		return nil, err
	}
	return nil, h.social.ChangeRole(ctx, id, req.CharacterId, req.Role)
}

func (h *Handlers) changeGuildRoleSetting(ctx context.Context, conn game.ConnectionId, req RoleSettingRequest) (any, error) {
	id, err := h.characterId(conn)
	if err != nil {
		return nil, err
	}
	return nil, h.social.ChangeGuildRoleSetting(ctx, id, req.Index, req.Role)
}

func (h *Handlers) changeGuildMessage(ctx context.Context, conn game.ConnectionId, req MessageRequest) (any, error) {
	id, err := h.characterId(conn)
	if err != nil {
		return nil, err
	}
	return nil, h.social.ChangeGuildMessage(ctx, id, req.Message)
}

func (h *Handlers) changePartySetting(ctx context.Context, conn game.ConnectionId, req PartySettingRequest) (any, error) {
	id, err := h.characterId(conn)
	if err != nil {
		return nil, err
	}
	return nil, h.social.ChangePartySetting(ctx, id, req.ShareExp, req.ShareItem)
}

func (h *Handlers) findGuilds(ctx context.Context, conn game.ConnectionId, req FindGuildsRequest) (any, error) {
	if _, err := h.characterId(conn); err != nil {
		return nil, err
	}
	return h.social.FindGuilds(ctx, req.Name)
}

func (h *Handlers) requestJoinGuild(ctx context.Context, conn game.ConnectionId, req JoinGuildRequest) (any, error) {
	id, err := h.characterId(conn)
	if err != nil {
		return nil, err
	}
	return nil, h.social.RequestJoinGuild(ctx, id, req.GuildId)
}
