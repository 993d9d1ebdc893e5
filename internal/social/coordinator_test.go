package social

import (
	"context"
	"strings"
	"testing"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/game/gametest"
	"github.com/pixil98/go-realm/internal/rules"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-testutil"
)

type fixture struct {
	coord  *Coordinator
	roster *gametest.Roster
	pub    *gametest.RecordingPublisher
	rules  *rules.Rules
}

func newFixture(t *testing.T, opts ...CoordinatorOpt) *fixture {
	t.Helper()

	r := rules.Default()
	roster := gametest.NewRoster()
	pub := &gametest.RecordingPublisher{}
	coord, err := NewCoordinator(r, roster, pub, opts...)
	if err != nil {
		t.Fatalf("creating coordinator: %v", err)
	}
	return &fixture{coord: coord, roster: roster, pub: pub, rules: r}
}

// join brings a character with plenty of gold online.
func (f *fixture) join(conn game.ConnectionId, id string) *game.CharacterRecord {
	rec := &game.CharacterRecord{Id: id, Name: strings.ToUpper(id[:1]) + id[1:], Gold: 5000}
	f.roster.Join(conn, rec)
	return rec
}

func code(err error) game.UIMessage {
	c, _ := game.CodeOf(err)
	return c
}

func TestCoordinator_GuildInvitationFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.join(1, "xavier")
	y := f.join(2, "yara")

	g, err := f.coord.CreateGuild(ctx, "xavier", "Falcons")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	testutil.AssertEqual(t, "leader", g.LeaderId, "xavier")
	testutil.AssertEqual(t, "members", len(g.Members), 1)
	testutil.AssertEqual(t, "founder guild", x.GuildId, g.Id)
	testutil.AssertEqual(t, "charged", x.Gold, int64(5000)-f.rules.CreateGuildGold)
	testutil.AssertEqual(t, "founder notified", f.pub.Kinds(1), []game.NotificationKind{game.NotifySetFullGuildData})

	if err := f.coord.Invite(ctx, KindGuild, "xavier", "yara"); err != nil {
		t.Fatalf("invite: %v", err)
	}
	n, ok := f.pub.Last(2, game.NotifyGuildInvitation)
	if !ok {
		t.Fatalf("invitee got no invitation")
	}
	inv := n.Payload.(InvitationPayload)
	testutil.AssertEqual(t, "invitation group", inv.GroupId, g.Id)
	testutil.AssertEqual(t, "invitation inviter", inv.InviterName, "Xavier")

	f.pub.Reset()
	if err := f.coord.AcceptInvitation(ctx, KindGuild, "yara", g.Id, "xavier"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	got, ok := f.coord.TryGetGuild(g.Id)
	if !ok {
		t.Fatalf("guild missing")
	}
	testutil.AssertEqual(t, "members", len(got.Members), 2)
	testutil.AssertEqual(t, "invitations", len(got.Invitations), 0)
	testutil.AssertEqual(t, "member guild", y.GuildId, g.Id)
	testutil.AssertEqual(t, "member role", y.GuildRole, f.rules.MemberRole())

	msg, ok := f.pub.Last(1, game.NotifyGameMessage)
	if !ok {
		t.Fatalf("inviter got no courtesy message")
	}
	testutil.AssertEqual(t, "courtesy code", msg.Code, game.UIGuildInvitationAccepted)
	testutil.AssertEqual(t, "courtesy text", msg.Text, "Yara accepted your invitation to Falcons.")

	_, added := f.pub.Last(1, game.NotifyAddGuildMember)
	testutil.AssertEqual(t, "existing member told", added, true)

	full, ok := f.pub.Last(2, game.NotifySetFullGuildData)
	if !ok {
		t.Fatalf("invitee got no guild data")
	}
	testutil.AssertEqual(t, "full data guild", full.Payload.(*Group).Id, g.Id)
}

func TestCoordinator_SoleLeaderLeaveDisbands(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore[*Group]()
	f := newFixture(t, WithGuildStore(store))
	x := f.join(1, "xavier")

	g, err := f.coord.CreateGuild(ctx, "xavier", "Falcons")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	testutil.AssertEqual(t, "stored", len(store.GetAll()), 1)

	if err := f.coord.Leave(ctx, KindGuild, "xavier"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	_, ok := f.coord.TryGetGuild(g.Id)
	testutil.AssertEqual(t, "guild exists", ok, false)
	testutil.AssertEqual(t, "character cleared", x.GuildId, 0)
	testutil.AssertEqual(t, "store cleared", len(store.GetAll()), 0)
	_, cleared := f.pub.Last(1, game.NotifyClearGuildData)
	testutil.AssertEqual(t, "clear sent", cleared, true)

	if _, err := f.coord.CreateGuild(ctx, "xavier", "falcons"); err != nil {
		t.Fatalf("name should be free again: %v", err)
	}
}

func TestCoordinator_GuildLeaderLeaveDisbandsForEveryone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join(1, "xavier")
	y := f.join(2, "yara")

	g, _ := f.coord.CreateGuild(ctx, "xavier", "Falcons")
	_ = f.coord.Invite(ctx, KindGuild, "xavier", "yara")
	_ = f.coord.AcceptInvitation(ctx, KindGuild, "yara", g.Id, "xavier")

	if err := f.coord.Leave(ctx, KindGuild, "xavier"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	_, ok := f.coord.TryGetGuild(g.Id)
	testutil.AssertEqual(t, "guild exists", ok, false)
	testutil.AssertEqual(t, "member cleared", y.GuildId, 0)
	_, ok = f.coord.GroupOf(KindGuild, "yara")
	testutil.AssertEqual(t, "member index cleared", ok, false)
}

func TestCoordinator_CreateGuildValidation(t *testing.T) {
	tests := map[string]struct {
		gold    int64
		name    string
		setup   func(ctx context.Context, f *fixture)
		expCode game.UIMessage
	}{
		"too short": {
			gold:    5000,
			name:    "F",
			expCode: game.UIErrorGuildNameInvalid,
		},
		"bad characters": {
			gold:    5000,
			name:    "Fal<cons>",
			expCode: game.UIErrorGuildNameInvalid,
		},
		"not enough gold": {
			gold:    10,
			name:    "Falcons",
			expCode: game.UIErrorNotEnoughGoldGuild,
		},
		"name taken ignoring case": {
			gold: 5000,
			name: "FALCONS",
			setup: func(ctx context.Context, f *fixture) {
				f.join(9, "other")
				if _, err := f.coord.CreateGuild(ctx, "other", "Falcons"); err != nil {
					panic(err)
				}
			},
			expCode: game.UIErrorGuildNameTaken,
		},
		"already in a guild": {
			gold: 5000,
			name: "Hawks",
			setup: func(ctx context.Context, f *fixture) {
				if _, err := f.coord.CreateGuild(ctx, "xavier", "Falcons"); err != nil {
					panic(err)
				}
			},
			expCode: game.UIErrorJoinedAnotherGuild,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			x := f.join(1, "xavier")
			if tt.setup != nil {
				tt.setup(ctx, f)
			}
			x.Gold = tt.gold

			_, err := f.coord.CreateGuild(ctx, "xavier", tt.name)
			testutil.AssertEqual(t, "code", code(err), tt.expCode)
			testutil.AssertEqual(t, "gold untouched", x.Gold, tt.gold)
		})
	}
}

func TestCoordinator_CreateGuildOffline(t *testing.T) {
	f := newFixture(t)
	_, err := f.coord.CreateGuild(context.Background(), "ghost", "Falcons")
	testutil.AssertEqual(t, "code", code(err), game.UIErrorNotLoggedIn)

	f.join(1, "xavier")
	if _, err := f.coord.CreateGuild(context.Background(), "xavier", "Falcons"); err != nil {
		t.Fatalf("name was not released: %v", err)
	}
}

func TestCoordinator_InviteValidation(t *testing.T) {
	tests := map[string]struct {
		inviter string
		invitee string
		setup   func(ctx context.Context, f *fixture)
		expCode game.UIMessage
	}{
		"not in a guild": {
			inviter: "yara",
			invitee: "zed",
			expCode: game.UIErrorNotJoinedGuild,
		},
		"invitee offline": {
			inviter: "xavier",
			invitee: "ghost",
			expCode: game.UIErrorCharacterNotFound,
		},
		"invite self": {
			inviter: "xavier",
			invitee: "xavier",
			expCode: game.UIErrorCannotInvite,
		},
		"invitee already in a guild": {
			inviter: "xavier",
			invitee: "zed",
			setup: func(ctx context.Context, f *fixture) {
				if _, err := f.coord.CreateGuild(ctx, "zed", "Hawks"); err != nil {
					panic(err)
				}
			},
			expCode: game.UIErrorJoinedAnotherGuild,
		},
		"role cannot invite": {
			inviter: "yara",
			invitee: "zed",
			setup: func(ctx context.Context, f *fixture) {
				_ = f.coord.Invite(ctx, KindGuild, "xavier", "yara")
				_ = f.coord.AcceptInvitation(ctx, KindGuild, "yara", 1, "xavier")
			},
			expCode: game.UIErrorCannotInvite,
		},
		"guild full": {
			inviter: "xavier",
			invitee: "zed",
			setup: func(ctx context.Context, f *fixture) {
				f.rules.MaxGuildMembers = 1
			},
			expCode: game.UIErrorGroupFull,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			f.join(1, "xavier")
			f.join(2, "yara")
			f.join(3, "zed")
			if _, err := f.coord.CreateGuild(ctx, "xavier", "Falcons"); err != nil {
				t.Fatalf("create: %v", err)
			}
			if tt.setup != nil {
				tt.setup(ctx, f)
			}
			f.pub.Reset()

			err := f.coord.Invite(ctx, KindGuild, tt.inviter, tt.invitee)
			testutil.AssertEqual(t, "code", code(err), tt.expCode)
			_, invited := f.pub.Last(3, game.NotifyGuildInvitation)
			testutil.AssertEqual(t, "invitation sent", invited, false)
		})
	}
}

func TestCoordinator_NewInvitationReplacesOld(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join(1, "xavier")
	f.join(2, "yara")
	f.join(3, "zed")

	falcons, _ := f.coord.CreateGuild(ctx, "xavier", "Falcons")
	hawks, _ := f.coord.CreateGuild(ctx, "yara", "Hawks")

	if err := f.coord.Invite(ctx, KindGuild, "xavier", "zed"); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if err := f.coord.Invite(ctx, KindGuild, "yara", "zed"); err != nil {
		t.Fatalf("invite: %v", err)
	}

	err := f.coord.AcceptInvitation(ctx, KindGuild, "zed", falcons.Id, "xavier")
	testutil.AssertEqual(t, "expired", code(err), game.UIErrorInvitationNotFound)

	if err := f.coord.AcceptInvitation(ctx, KindGuild, "zed", hawks.Id, "yara"); err != nil {
		t.Fatalf("accept: %v", err)
	}
}

func TestCoordinator_DeclineInvitation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join(1, "xavier")
	y := f.join(2, "yara")

	g, _ := f.coord.CreateGuild(ctx, "xavier", "Falcons")
	_ = f.coord.Invite(ctx, KindGuild, "xavier", "yara")

	if err := f.coord.DeclineInvitation(ctx, KindGuild, "yara", g.Id, "xavier"); err != nil {
		t.Fatalf("decline: %v", err)
	}
	got, _ := f.coord.TryGetGuild(g.Id)
	testutil.AssertEqual(t, "members", len(got.Members), 1)
	testutil.AssertEqual(t, "invitations", len(got.Invitations), 0)
	testutil.AssertEqual(t, "invitee guild", y.GuildId, 0)

	msg, _ := f.pub.Last(1, game.NotifyGameMessage)
	testutil.AssertEqual(t, "declined code", msg.Code, game.UIGuildInvitationDeclined)

	err := f.coord.DeclineInvitation(ctx, KindGuild, "yara", g.Id, "xavier")
	testutil.AssertEqual(t, "second decline", code(err), game.UIErrorInvitationNotFound)
}

// guildOfThree builds Falcons led by xavier with officer yara and member zed.
func guildOfThree(t *testing.T, f *fixture) *Group {
	t.Helper()
	ctx := context.Background()
	f.join(1, "xavier")
	f.join(2, "yara")
	f.join(3, "zed")

	g, err := f.coord.CreateGuild(ctx, "xavier", "Falcons")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, id := range []string{"yara", "zed"} {
		if err := f.coord.Invite(ctx, KindGuild, "xavier", id); err != nil {
			t.Fatalf("invite %s: %v", id, err)
		}
		if err := f.coord.AcceptInvitation(ctx, KindGuild, id, g.Id, "xavier"); err != nil {
			t.Fatalf("accept %s: %v", id, err)
		}
	}
	if err := f.coord.ChangeRole(ctx, "xavier", "yara", 1); err != nil {
		t.Fatalf("change role: %v", err)
	}
	f.pub.Reset()
	return g
}

func TestCoordinator_KickMember(t *testing.T) {
	tests := map[string]struct {
		actor   string
		target  string
		expCode game.UIMessage
	}{
		"leader kicks member":   {actor: "xavier", target: "zed"},
		"officer kicks member":  {actor: "yara", target: "zed"},
		"member cannot kick":    {actor: "zed", target: "yara", expCode: game.UIErrorCannotKick},
		"officer kicks leader":  {actor: "yara", target: "xavier", expCode: game.UIErrorCannotKickLeader},
		"kick self":             {actor: "yara", target: "yara", expCode: game.UIErrorCannotKickSelf},
		"kick stranger":         {actor: "xavier", target: "nobody", expCode: game.UIErrorNotMember},
		"leader kicks officer":  {actor: "xavier", target: "yara"},
		"non member cannot act": {actor: "nobody", target: "zed", expCode: game.UIErrorNotJoinedGuild},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			g := guildOfThree(t, f)

			err := f.coord.KickMember(ctx, KindGuild, tt.actor, tt.target)
			testutil.AssertEqual(t, "code", code(err), tt.expCode)

			got, _ := f.coord.TryGetGuild(g.Id)
			expMembers := 3
			if tt.expCode == "" {
				expMembers = 2
				testutil.AssertEqual(t, "target cleared", f.roster.Record(tt.target).GuildId, 0)
				_, cleared := f.pub.Last(f.connOf(tt.target), game.NotifyClearGuildData)
				testutil.AssertEqual(t, "clear sent", cleared, true)
			}
			testutil.AssertEqual(t, "members", len(got.Members), expMembers)
		})
	}
}

func (f *fixture) connOf(id string) game.ConnectionId {
	c, _ := f.roster.Connection(id)
	return c
}

func TestCoordinator_ChangeLeader(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := guildOfThree(t, f)

	err := f.coord.ChangeLeader(ctx, KindGuild, "yara", "zed")
	testutil.AssertEqual(t, "non leader", code(err), game.UIErrorNotGuildLeader)

	if err := f.coord.ChangeLeader(ctx, KindGuild, "xavier", "zed"); err != nil {
		t.Fatalf("change leader: %v", err)
	}
	got, _ := f.coord.TryGetGuild(g.Id)
	testutil.AssertEqual(t, "leader", got.LeaderId, "zed")
	testutil.AssertEqual(t, "new leader role", f.roster.Record("zed").GuildRole, 0)
	testutil.AssertEqual(t, "old leader role", f.roster.Record("xavier").GuildRole, f.rules.MemberRole())

	_, told := f.pub.Last(2, game.NotifySetGuildLeader)
	testutil.AssertEqual(t, "members told", told, true)
}

func TestCoordinator_ChangeRole(t *testing.T) {
	tests := map[string]struct {
		actor   string
		target  string
		role    int
		expCode game.UIMessage
	}{
		"promote":           {actor: "xavier", target: "zed", role: 1},
		"not leader":        {actor: "yara", target: "zed", role: 1, expCode: game.UIErrorNotGuildLeader},
		"leader role":       {actor: "xavier", target: "zed", role: 0, expCode: game.UIErrorInvalidGuildRole},
		"unknown role":      {actor: "xavier", target: "zed", role: 7, expCode: game.UIErrorInvalidGuildRole},
		"target not member": {actor: "xavier", target: "nobody", role: 1, expCode: game.UIErrorNotMember},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			guildOfThree(t, f)

			err := f.coord.ChangeRole(context.Background(), tt.actor, tt.target, tt.role)
			testutil.AssertEqual(t, "code", code(err), tt.expCode)
			if tt.expCode == "" {
				testutil.AssertEqual(t, "record role", f.roster.Record(tt.target).GuildRole, tt.role)
			}
		})
	}
}

func TestCoordinator_ChangeGuildRoleSetting(t *testing.T) {
	f := newFixture(t)
	g := guildOfThree(t, f)
	ctx := context.Background()

	err := f.coord.ChangeGuildRoleSetting(ctx, "xavier", 2, rules.GuildRole{Name: "Member", ShareExpPercent: 50})
	testutil.AssertEqual(t, "share too high", code(err), game.UIErrorInvalidGuildRole)

	if err := f.coord.ChangeGuildRoleSetting(ctx, "xavier", 2, rules.GuildRole{Name: "Recruit", CanInvite: true, ShareExpPercent: 10}); err != nil {
		t.Fatalf("change role setting: %v", err)
	}
	got, _ := f.coord.TryGetGuild(g.Id)
	testutil.AssertEqual(t, "role name", got.Roles[2].Name, "Recruit")
	testutil.AssertEqual(t, "defaults untouched", f.rules.GuildRoles[2].Name, "Member")

	f.join(4, "walt")
	if err := f.coord.Invite(ctx, KindGuild, "zed", "walt"); err != nil {
		t.Errorf("recruit role should be allowed to invite: %v", err)
	}
}

func TestCoordinator_ChangeGuildMessageTruncates(t *testing.T) {
	f := newFixture(t)
	f.rules.MaxGuildMessageLength = 10
	g := guildOfThree(t, f)

	if err := f.coord.ChangeGuildMessage(context.Background(), "xavier", "Welcome to the Falcons"); err != nil {
		t.Fatalf("change message: %v", err)
	}
	got, _ := f.coord.TryGetGuild(g.Id)
	testutil.AssertEqual(t, "message", got.Settings.Message, "Welcome to")

	n, ok := f.pub.Last(3, game.NotifySetGuildMessage)
	if !ok {
		t.Fatalf("member not told")
	}
	testutil.AssertEqual(t, "payload", n.Payload.(SettingsPayload).Settings.Message, "Welcome to")
}

func TestCoordinator_AdjustGuildGold(t *testing.T) {
	f := newFixture(t)
	g := guildOfThree(t, f)
	ctx := context.Background()

	balance, err := f.coord.AdjustGuildGold(ctx, g.Id, 100)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	testutil.AssertEqual(t, "balance", balance, int64(100))

	_, err = f.coord.AdjustGuildGold(ctx, g.Id, -101)
	testutil.AssertEqual(t, "overdraw", code(err), game.UIErrorNotEnoughGoldWd)

	n, ok := f.pub.Last(2, game.NotifySetGuildGold)
	if !ok {
		t.Fatalf("member not told")
	}
	testutil.AssertEqual(t, "gold payload", n.Payload.(GoldPayload).Gold, int64(100))
}

func TestCoordinator_PartyLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join(1, "xavier")
	y := f.join(2, "yara")
	f.join(3, "zed")

	p, err := f.coord.CreateParty(ctx, "xavier", true, false)
	if err != nil {
		t.Fatalf("create party: %v", err)
	}
	for _, id := range []string{"yara", "zed"} {
		if err := f.coord.Invite(ctx, KindParty, "xavier", id); err != nil {
			t.Fatalf("invite %s: %v", id, err)
		}
		if err := f.coord.AcceptInvitation(ctx, KindParty, id, p.Id, ""); err != nil {
			t.Fatalf("accept %s: %v", id, err)
		}
	}
	testutil.AssertEqual(t, "party id", y.PartyId, p.Id)

	f.join(4, "walt")
	err = f.coord.Invite(ctx, KindParty, "yara", "walt")
	testutil.AssertEqual(t, "member cannot invite", code(err), game.UIErrorCannotInvite)

	err = f.coord.ChangePartySetting(ctx, "yara", false, true)
	testutil.AssertEqual(t, "member cannot change settings", code(err), game.UIErrorNotPartyLeader)
	if err := f.coord.ChangePartySetting(ctx, "xavier", false, true); err != nil {
		t.Fatalf("change setting: %v", err)
	}

	if err := f.coord.Leave(ctx, KindParty, "xavier"); err != nil {
		t.Fatalf("leader leave: %v", err)
	}
	got, ok := f.coord.TryGetParty(p.Id)
	if !ok {
		t.Fatalf("party should survive its leader leaving")
	}
	testutil.AssertEqual(t, "promoted", got.LeaderId, "yara")
	testutil.AssertEqual(t, "members", len(got.Members), 2)
	testutil.AssertEqual(t, "settings", got.Settings, Settings{ShareItem: true})

	_, told := f.pub.Last(3, game.NotifySetPartyLeader)
	testutil.AssertEqual(t, "leader change told", told, true)

	if err := f.coord.KickMember(ctx, KindParty, "yara", "zed"); err != nil {
		t.Fatalf("kick: %v", err)
	}
	if err := f.coord.Leave(ctx, KindParty, "yara"); err != nil {
		t.Fatalf("last leave: %v", err)
	}
	_, ok = f.coord.TryGetParty(p.Id)
	testutil.AssertEqual(t, "party exists", ok, false)
	testutil.AssertEqual(t, "cleared", y.PartyId, 0)
}

func TestCoordinator_PartyLeaderLeaveDisbandsWithoutPromotion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.rules.PartyLeaderLeavePromotes = false
	f.join(1, "xavier")
	y := f.join(2, "yara")

	p, _ := f.coord.CreateParty(ctx, "xavier", false, false)
	_ = f.coord.Invite(ctx, KindParty, "xavier", "yara")
	_ = f.coord.AcceptInvitation(ctx, KindParty, "yara", p.Id, "xavier")

	if err := f.coord.Leave(ctx, KindParty, "xavier"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	_, ok := f.coord.TryGetParty(p.Id)
	testutil.AssertEqual(t, "party exists", ok, false)
	testutil.AssertEqual(t, "member cleared", y.PartyId, 0)
}

func TestCoordinator_RestoresGuildsFromStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore[*Group]()
	f := newFixture(t, WithGuildStore(store))
	f.join(1, "xavier")
	g, _ := f.coord.CreateGuild(ctx, "xavier", "Falcons")

	restored := newFixture(t, WithGuildStore(store))
	got, ok := restored.coord.TryGetGuild(g.Id)
	if !ok {
		t.Fatalf("guild not restored")
	}
	testutil.AssertEqual(t, "name", got.Name, "Falcons")

	rec := &game.CharacterRecord{Id: "xavier"}
	restored.coord.SyncCharacter(rec)
	testutil.AssertEqual(t, "synced guild", rec.GuildId, g.Id)

	restored.join(2, "yara")
	_, err := restored.coord.CreateGuild(ctx, "yara", "falcons")
	testutil.AssertEqual(t, "name still taken", code(err), game.UIErrorGuildNameTaken)

	next, err := restored.coord.CreateGuild(ctx, "yara", "Hawks")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if next.Id <= g.Id {
		t.Errorf("expected ids to keep increasing, got %d after %d", next.Id, g.Id)
	}
}

func TestCoordinator_Unimplemented(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.FindGuilds(context.Background(), "fal")
	testutil.AssertErrorContains(t, err, "unimplemented")

	err = f.coord.RequestJoinGuild(context.Background(), "xavier", 1)
	testutil.AssertErrorContains(t, err, "unimplemented")
}

func TestCoordinator_Reset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join(1, "xavier")
	g, _ := f.coord.CreateGuild(ctx, "xavier", "Falcons")

	f.coord.Reset()
	_, ok := f.coord.TryGetGuild(g.Id)
	testutil.AssertEqual(t, "guild exists", ok, false)
}
