package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pixil98/go-realm/internal/containers"
	"github.com/pixil98/go-realm/internal/dispatch"
	"github.com/pixil98/go-realm/internal/economy"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/game/gametest"
	"github.com/pixil98/go-realm/internal/rules"
	"github.com/pixil98/go-realm/internal/session"
	"github.com/pixil98/go-realm/internal/social"
	"github.com/pixil98/go-testutil"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const chestHandle game.EntityHandle = 1

var guildChest = game.StorageId{Kind: game.StorageKindGuild, OwnerId: "1"}

type nopHost struct{}

func (nopHost) ServeMap(context.Context, string) error { return nil }

func (nopHost) WorldSnapshot(_ context.Context, mapName string) (*game.WorldSnapshot, error) {
	return &game.WorldSnapshot{MapName: mapName}, nil
}

type nopTicker struct{}

func (nopTicker) WaitTick(context.Context) error { return nil }

type fixture struct {
	d        *dispatch.Dispatcher
	sessions *session.Manager
	ctrl     *containers.Controller
	coord    *social.Coordinator
	pub      *gametest.RecordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	r := rules.Default()
	r.CreateGuildGold = 0
	r.GuildStorage = rules.StorageLimits{SlotLimit: 4}

	entities := gametest.NewEntities()
	entities.Storages[chestHandle] = game.StorageEntity{
		Handle:   chestHandle,
		Storage:  guildChest,
		Position: game.Vector3{X: 1},
		Radius:   3,
	}
	pub := &gametest.RecordingPublisher{}

	ctrl := containers.NewController(r, entities, pub)
	sessions := session.NewManager(entities, nopHost{}, ctrl,
		session.WithStartMap("town"),
		session.WithMapEntry(game.EnterGameLocation{MapName: "town"}),
	)
	coord, err := social.NewCoordinator(r, sessions, pub)
	if err != nil {
		t.Fatalf("creating coordinator: %v", err)
	}
	sessions.SetMembershipSync(coord)
	bank := economy.NewBank(r, sessions, coord)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	d, err := dispatch.New(nopTicker{}, dispatch.WithMeterProvider(mp))
	if err != nil {
		t.Fatalf("creating dispatcher: %v", err)
	}
	New(sessions, ctrl, coord, bank).Register(d)

	return &fixture{d: d, sessions: sessions, ctrl: ctrl, coord: coord, pub: pub}
}

func (f *fixture) login(t *testing.T, conn game.ConnectionId, id string, gold int64) {
	t.Helper()
	rec := &game.CharacterRecord{
		Id:                 id,
		UserId:             "user-" + id,
		Name:               id,
		EntityId:           1,
		Gold:               gold,
		InventorySlotLimit: 4,
		Inventory: []game.ItemStack{
			{ItemId: "potion", Amount: 5, MaxStack: 10},
			{}, {}, {},
		},
	}
	if err := f.sessions.OnClientReady(context.Background(), conn, session.ReadyData{Character: rec}); err != nil {
		t.Fatalf("ready: %v", err)
	}
}

func (f *fixture) send(t *testing.T, conn game.ConnectionId, kind dispatch.Kind, payload any) dispatch.Response {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encoding payload: %v", err)
		}
		raw = b
	}
	return f.d.Dispatch(context.Background(), dispatch.Request{Conn: conn, Kind: kind, Payload: raw})
}

func TestHandlers_RegistersEveryKind(t *testing.T) {
	f := newFixture(t)
	for _, k := range dispatch.Kinds {
		testutil.AssertEqual(t, string(k), f.d.HasHandler(k), true)
	}
}

func TestHandlers_RequiresSpawnedCharacter(t *testing.T) {
	tests := map[string]struct {
		kind    dispatch.Kind
		payload any
	}{
		"open storage": {
			kind:    dispatch.KindOpenStorage,
			payload: StorageRequest{Storage: guildChest, Entity: chestHandle},
		},
		"create guild": {
			kind:    dispatch.KindCreateGuild,
			payload: CreateGuildRequest{Name: "Falcons"},
		},
		"leave party": {
			kind:    dispatch.KindLeaveParty,
			payload: struct{}{},
		},
		"deposit gold": {
			kind:    dispatch.KindDepositUserGold,
			payload: GoldRequest{Amount: 10},
		},
		"cash package": {
			kind:    dispatch.KindCashPackageBuyValidation,
			payload: CashPackageRequest{PackageId: "small", Receipt: "r"},
		},
		"confirm teleport": {
			kind:    dispatch.KindConfirmTeleport,
			payload: struct{}{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			resp := f.send(t, 9, tt.kind, tt.payload)
			testutil.AssertEqual(t, "ok", resp.Ok, false)
			testutil.AssertEqual(t, "code", resp.Code, game.UIErrorNotLoggedIn)
		})
	}
}

func TestHandlers_GuildStorageRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.login(t, 1, "xavier", 500)

	resp := f.send(t, 1, dispatch.KindCreateGuild, CreateGuildRequest{Name: "Falcons"})
	testutil.AssertEqual(t, "create ok", resp.Ok, true)
	testutil.AssertEqual(t, "create payload", resp.Payload, any(social.GroupRef{GroupId: 1}))

	rec, _ := f.sessions.Character(1)
	testutil.AssertEqual(t, "guild mirrored", rec.GuildId, 1)

	resp = f.send(t, 1, dispatch.KindOpenStorage, StorageRequest{Storage: guildChest, Entity: chestHandle})
	testutil.AssertEqual(t, "open ok", resp.Ok, true)
	testutil.AssertEqual(t, "viewing", f.ctrl.IsViewing(1, guildChest), true)

	resp = f.send(t, 1, dispatch.KindMoveItemToStorage, MoveItemRequest{Storage: guildChest, InventoryIndex: 0, Amount: 2})
	testutil.AssertEqual(t, "move ok", resp.Ok, true)
	items := f.ctrl.Items(guildChest)
	testutil.AssertEqual(t, "stored item", items[0].ItemId, "potion")
	testutil.AssertEqual(t, "stored amount", items[0].Amount, 2)
	rec, _ = f.sessions.Character(1)
	testutil.AssertEqual(t, "inventory left", rec.Inventory[0].Amount, 3)

	resp = f.send(t, 1, dispatch.KindMoveItemFromStorage, MoveItemRequest{Storage: guildChest, StorageIndex: 0, Amount: 5, InventoryIndex: 1})
	testutil.AssertEqual(t, "overdraw rejected", resp.Code, game.UIErrorInvalidAmount)

	resp = f.send(t, 1, dispatch.KindCloseStorage, StorageRequest{Storage: guildChest})
	testutil.AssertEqual(t, "close ok", resp.Ok, true)
	testutil.AssertEqual(t, "closed", f.ctrl.IsViewing(1, guildChest), false)
}

func TestHandlers_GuildGold(t *testing.T) {
	f := newFixture(t)
	f.login(t, 1, "xavier", 500)

	if resp := f.send(t, 1, dispatch.KindCreateGuild, CreateGuildRequest{Name: "Falcons"}); !resp.Ok {
		t.Fatalf("create guild: %s", resp.Code)
	}

	resp := f.send(t, 1, dispatch.KindDepositGuildGold, GoldRequest{Amount: 100})
	testutil.AssertEqual(t, "deposit ok", resp.Ok, true)
	testutil.AssertEqual(t, "balance", resp.Payload, any(economy.Balance{CharacterGold: 400, BankGold: 100}))

	resp = f.send(t, 1, dispatch.KindWithdrawGuildGold, GoldRequest{Amount: 1000})
	testutil.AssertEqual(t, "overdraw", resp.Code, game.UIErrorNotEnoughGoldWd)

	g, _ := f.coord.TryGetGuild(1)
	testutil.AssertEqual(t, "guild gold", g.Gold, int64(100))
}

func TestHandlers_Responses(t *testing.T) {
	tests := map[string]struct {
		kind     dispatch.Kind
		payload  json.RawMessage
		expOk    bool
		expCode  game.UIMessage
		expUnimp bool
	}{
		"find guilds is unsupported": {
			kind:     dispatch.KindFindGuilds,
			payload:  json.RawMessage(`{"name":"fal"}`),
			expUnimp: true,
		},
		"join request is unsupported": {
			kind:     dispatch.KindRequestJoinGuild,
			payload:  json.RawMessage(`{"guild_id":1}`),
			expUnimp: true,
		},
		"malformed payload": {
			kind:    dispatch.KindCreateGuild,
			payload: json.RawMessage(`{"name":`),
			expCode: game.UIErrorInvalidData,
		},
		"nothing to confirm": {
			kind:    dispatch.KindConfirmTeleport,
			payload: json.RawMessage(`{}`),
			expOk:   true,
		},
		"party without members": {
			kind:    dispatch.KindLeaveParty,
			payload: json.RawMessage(`{}`),
			expCode: game.UIErrorNotJoinedParty,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.login(t, 1, "xavier", 500)

			resp := f.d.Dispatch(context.Background(), dispatch.Request{Conn: 1, Kind: tt.kind, Payload: tt.payload})
			testutil.AssertEqual(t, "ok", resp.Ok, tt.expOk)
			testutil.AssertEqual(t, "code", resp.Code, tt.expCode)
			testutil.AssertEqual(t, "unimplemented", resp.Unimplemented, tt.expUnimp)
		})
	}
}
