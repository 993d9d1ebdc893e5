package handlers

import (
	"context"
	"errors"

	"github.com/pixil98/go-realm/internal/containers"
	"github.com/pixil98/go-realm/internal/dispatch"
	"github.com/pixil98/go-realm/internal/economy"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/session"
	"github.com/pixil98/go-realm/internal/social"
)

// Handlers serves client requests against the session, storage, social and
// economy services.
type Handlers struct {
	sessions *session.Manager
	storages *containers.Controller
	social   *social.Coordinator
	bank     *economy.Bank
}

func New(sessions *session.Manager, storages *containers.Controller, coord *social.Coordinator, bank *economy.Bank) *Handlers {
	return &Handlers{
		sessions: sessions,
		storages: storages,
		social:   coord,
		bank:     bank,
	}
}

// Register binds every request kind to its handler.
func (h *Handlers) Register(d *dispatch.Dispatcher) {
	dispatch.Register(d, dispatch.KindOpenStorage, h.openStorage)
	dispatch.Register(d, dispatch.KindCloseStorage, h.closeStorage)
	dispatch.Register(d, dispatch.KindMoveItemToStorage, h.moveItemToStorage)
	dispatch.Register(d, dispatch.KindMoveItemFromStorage, h.moveItemFromStorage)
	dispatch.Register(d, dispatch.KindSwapOrMergeStorageItem, h.swapOrMergeStorageItem)

	dispatch.Register(d, dispatch.KindCreateGuild, h.createGuild)
	dispatch.Register(d, dispatch.KindCreateParty, h.createParty)
	dispatch.Register(d, dispatch.KindSendGuildInvitation, h.invite(social.KindGuild))
	dispatch.Register(d, dispatch.KindSendPartyInvitation, h.invite(social.KindParty))
	dispatch.Register(d, dispatch.KindAcceptGuildInvitation, h.acceptInvitation(social.KindGuild))
	dispatch.Register(d, dispatch.KindAcceptPartyInvitation, h.acceptInvitation(social.KindParty))
	dispatch.Register(d, dispatch.KindDeclineGuildInvitation, h.declineInvitation(social.KindGuild))
	dispatch.Register(d, dispatch.KindDeclinePartyInvitation, h.declineInvitation(social.KindParty))
	dispatch.Register(d, dispatch.KindChangeGuildLeader, h.changeLeader(social.KindGuild))
	dispatch.Register(d, dispatch.KindChangePartyLeader, h.changeLeader(social.KindParty))
	dispatch.Register(d, dispatch.KindKickMemberFromGuild, h.kickMember(social.KindGuild))
	dispatch.Register(d, dispatch.KindKickMemberFromParty, h.kickMember(social.KindParty))
	dispatch.Register(d, dispatch.KindLeaveGuild, h.leave(social.KindGuild))
	dispatch.Register(d, dispatch.KindLeaveParty, h.leave(social.KindParty))
	dispatch.Register(d, dispatch.KindChangeMemberGuildRole, h.changeMemberGuildRole)
	dispatch.Register(d, dispatch.KindChangeGuildRoleSetting, h.changeGuildRoleSetting)
	dispatch.Register(d, dispatch.KindChangeGuildMessage, h.changeGuildMessage)
	dispatch.Register(d, dispatch.KindChangePartySetting, h.changePartySetting)
	dispatch.Register(d, dispatch.KindFindGuilds, h.findGuilds)
	dispatch.Register(d, dispatch.KindRequestJoinGuild, h.requestJoinGuild)

	dispatch.Register(d, dispatch.KindDepositUserGold, h.gold(h.bank.DepositUserGold))
	dispatch.Register(d, dispatch.KindWithdrawUserGold, h.gold(h.bank.WithdrawUserGold))
	dispatch.Register(d, dispatch.KindDepositGuildGold, h.gold(h.bank.DepositGuildGold))
	dispatch.Register(d, dispatch.KindWithdrawGuildGold, h.gold(h.bank.WithdrawGuildGold))
	dispatch.Register(d, dispatch.KindCashShopBuy, h.cashShopBuy)
	dispatch.Register(d, dispatch.KindCashPackageBuyValidation, h.cashPackageBuyValidation)

	dispatch.Register(d, dispatch.KindConfirmTeleport, h.confirmTeleport, dispatch.AfterTick())
}

// characterId resolves the character playing on conn.
func (h *Handlers) characterId(conn game.ConnectionId) (string, error) {
	id, ok := h.sessions.CharacterId(conn)
	if !ok {
		return "", game.NewUserError(game.UIErrorNotLoggedIn)
	}
	return id, nil
}

// withCharacter runs fn with the connection's character locked. Social
// operations must not run inside fn.
func (h *Handlers) withCharacter(conn game.ConnectionId, fn func(rec *game.CharacterRecord, handle game.EntityHandle) error) error {
	err := h.sessions.WithCharacter(conn, fn)
	if errors.Is(err, session.ErrNotSpawned) {
		return game.NewUserError(game.UIErrorNotLoggedIn)
	}
	return err
}

func (h *Handlers) confirmTeleport(ctx context.Context, conn game.ConnectionId, _ struct{}) (any, error) {
	confirmed, err := h.sessions.ConfirmTeleport(ctx, conn)
	if errors.Is(err, session.ErrNotSpawned) {
		return nil, game.NewUserError(game.UIErrorNotLoggedIn)
	}
	return confirmed, err
}
