package handlers

import (
	"context"

	"github.com/pixil98/go-realm/internal/containers"
	"github.com/pixil98/go-realm/internal/game"
)

type StorageRequest struct {
	Storage game.StorageId    `json:"storage"`
	Entity  game.EntityHandle `json:"entity"`
}

type MoveItemRequest struct {
	Storage        game.StorageId `json:"storage"`
	InventoryIndex int            `json:"inventory_index"`
	StorageIndex   int            `json:"storage_index"`
	Amount         int            `json:"amount"`
}

type SwapItemRequest struct {
	Storage   game.StorageId `json:"storage"`
	FromIndex int            `json:"from_index"`
	ToIndex   int            `json:"to_index"`
}

func (h *Handlers) openStorage(ctx context.Context, conn game.ConnectionId, req StorageRequest) (any, error) {
	return nil, h.withCharacter(conn, func(rec *game.CharacterRecord, handle game.EntityHandle) error {
		v := containers.Viewer{Conn: conn, Character: rec, Entity: handle}
		return h.storages.Open(ctx, v, req.Entity, req.Storage)
	})
}

func (h *Handlers) closeStorage(ctx context.Context, conn game.ConnectionId, req StorageRequest) (any, error) {
	h.storages.Close(ctx, conn, req.Storage)
	return nil, nil
}

func (h *Handlers) moveItemToStorage(ctx context.Context, conn game.ConnectionId, req MoveItemRequest) (any, error) {
	return nil, h.withCharacter(conn, func(rec *game.CharacterRecord, _ game.EntityHandle) error {
		return h.storages.MoveItemToStorage(ctx, conn, rec, req.Storage, req.InventoryIndex, req.Amount, req.StorageIndex)
	})
}

func (h *Handlers) moveItemFromStorage(ctx context.Context, conn game.ConnectionId, req MoveItemRequest) (any, error) {
	return nil, h.withCharacter(conn, func(rec *game.CharacterRecord, _ game.EntityHandle) error {
		return h.storages.MoveItemFromStorage(ctx, conn, rec, req.Storage, req.StorageIndex, req.Amount, req.InventoryIndex)
	})
}

func (h *Handlers) swapOrMergeStorageItem(ctx context.Context, conn game.ConnectionId, req SwapItemRequest) (any, error) {
	return nil, h.withCharacter(conn, func(rec *game.CharacterRecord, _ game.EntityHandle) error {
		return h.storages.SwapOrMergeItem(ctx, conn, rec, req.Storage, req.FromIndex, req.ToIndex)
	})
}
