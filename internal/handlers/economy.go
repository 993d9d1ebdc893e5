package handlers

import (
	"context"

	"github.com/pixil98/go-realm/internal/economy"
	"github.com/pixil98/go-realm/internal/game"
)

type GoldRequest struct {
	Amount int64 `json:"amount"`
}

type CashShopRequest struct {
	ItemId string `json:"item_id"`
	Amount int    `json:"amount"`
}

type CashPackageRequest struct {
	PackageId string `json:"package_id"`
	Receipt   string `json:"receipt"`
}

type goldOp func(ctx context.Context, characterId string, amount int64) (economy.Balance, error)

func (h *Handlers) gold(op goldOp) func(context.Context, game.ConnectionId, GoldRequest) (any, error) {
	return actor(h, func(ctx context.Context, id string, req GoldRequest) (any, error) {
		bal, err := op(ctx, id, req.Amount)
		if err != nil {
			return nil, err
		}
		return bal, nil
	})
}

func (h *Handlers) cashShopBuy(ctx context.Context, conn game.ConnectionId, req CashShopRequest) (any, error) {
	id, err := h.characterId(conn)
	if err != nil {
		return nil, err
	}
	acct, err := h.bank.CashShopBuy(ctx, id, req.ItemId, req.Amount)
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func (h *Handlers) cashPackageBuyValidation(ctx context.Context, conn game.ConnectionId, req CashPackageRequest) (any, error) {
	rec, ok := h.sessions.Character(conn)
	if !ok {
		return nil, game.NewUserError(game.UIErrorNotLoggedIn)
	}
	acct, err := h.bank.CashPackageBuyValidation(ctx, rec.UserId, req.PackageId, req.Receipt)
	if err != nil {
		return nil, err
	}
	return acct, nil
}
