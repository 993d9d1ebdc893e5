package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/pixil98/go-realm/internal/display"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/registry"
	"github.com/pixil98/go-realm/internal/rules"
	"github.com/pixil98/go-realm/internal/storage"
)

// Roster resolves online characters. Record changes go through
// UpdateCharacter so they are serialized with the owning session.
type Roster interface {
	Connection(characterId string) (game.ConnectionId, bool)
	UpdateCharacter(characterId string, fn func(*game.CharacterRecord) error) error
}

type groupSet struct {
	kind    GroupKind
	groups  *registry.Map[int, *Group]
	members *registry.Map[string, int]
	invites *registry.Map[string, int]
	nextId  atomic.Int64
}

func newGroupSet(kind GroupKind) *groupSet {
	return &groupSet{
		kind:    kind,
		groups:  registry.NewMap[int, *Group](),
		members: registry.NewMap[string, int](),
		invites: registry.NewMap[string, int](),
	}
}

// Coordinator owns every guild and party and replicates their changes to
// the affected connections.
type Coordinator struct {
	rules   *rules.Rules
	roster  Roster
	pub     game.Publisher
	store   storage.Storer[*Group]
	catalog *display.Catalog

	guilds  *groupSet
	parties *groupSet
	names   *registry.Map[string, int]
}

// NewCoordinator creates a coordinator, restoring guilds from the store when
// one is configured.
func NewCoordinator(r *rules.Rules, roster Roster, pub game.Publisher, opts ...CoordinatorOpt) (*Coordinator, error) {
	c := &Coordinator{
		rules:   r,
		roster:  roster,
		pub:     pub,
		guilds:  newGroupSet(KindGuild),
		parties: newGroupSet(KindParty),
		names:   registry.NewMap[string, int](),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.catalog == nil {
		catalog, err := display.NewCatalog(display.DefaultTexts())
		if err != nil {
			return nil, err
		}
		c.catalog = catalog
	}

	if err := c.load(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Coordinator) load() error {
	if c.store == nil {
		return nil
	}
	var maxId int64
	for key, g := range c.store.GetAll() {
		if g.Kind != KindGuild {
			return fmt.Errorf("loading guild %s: unexpected group kind %s", key, g.Kind)
		}
		c.guilds.groups.Set(g.Id, g)
		c.names.Set(c.foldName(g.Name), g.Id)
		for _, m := range g.Members {
			c.guilds.members.Set(m.CharacterId, g.Id)
		}
		for _, inv := range g.Invitations {
			c.guilds.invites.Set(inv.InviteeId, g.Id)
		}
		maxId = max(maxId, int64(g.Id))
	}
	c.guilds.nextId.Store(maxId)
	return nil
}

func (c *Coordinator) set(kind GroupKind) *groupSet {
	if kind == KindParty {
		return c.parties
	}
	return c.guilds
}

// foldName is the case-insensitive identity of a guild name. A Caser keeps
// state, so each call gets its own.
func (c *Coordinator) foldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// CreateGuild founds a guild led by founderId, charging the creation cost.
func (c *Coordinator) CreateGuild(ctx context.Context, founderId, name string) (*Group, error) {
	name = strings.TrimSpace(name)
	if err := c.validateGuildName(name); err != nil {
		return nil, err
	}
	if _, ok := c.guilds.members.Get(founderId); ok {
		return nil, game.NewUserError(game.UIErrorJoinedAnotherGuild)
	}

	id := int(c.guilds.nextId.Add(1))
	folded := c.foldName(name)
	if _, taken := c.names.LoadOrStore(folded, func() int { return id }); taken {
		return nil, game.NewUserError(game.UIErrorGuildNameTaken)
	}

	g := &Group{
		Id:    id,
		Kind:  KindGuild,
		Name:  name,
		Roles: append([]rules.GuildRole(nil), c.rules.GuildRoles...),
	}

	err := c.roster.UpdateCharacter(founderId, func(rec *game.CharacterRecord) error {
		if rec.GuildId != 0 {
			return game.NewUserError(game.UIErrorJoinedAnotherGuild)
		}
		if rec.Gold < c.rules.CreateGuildGold {
			return game.NewUserError(game.UIErrorNotEnoughGoldGuild)
		}
		if _, loaded := c.guilds.members.LoadOrStore(founderId, func() int { return id }); loaded {
			return game.NewUserError(game.UIErrorJoinedAnotherGuild)
		}
		rec.Gold -= c.rules.CreateGuildGold
		rec.GuildId = id
		rec.GuildRole = 0
		g.LeaderId = rec.Id
		g.Members = []Member{{CharacterId: rec.Id, Name: rec.Name, Role: 0}}
		return nil
	})
	if err != nil {
		c.names.Delete(folded)
		return nil, loginError(err)
	}

	c.persist(ctx, g)
	c.guilds.groups.Set(id, g)

	snap := g.snapshot()
	c.notify(ctx, []string{founderId}, game.Notification{Kind: game.NotifySetFullGuildData, Payload: snap})
	slog.InfoContext(ctx, "guild created", "guild", id, "name", name, "leader", founderId)
	return snap, nil
}

func (c *Coordinator) validateGuildName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < c.rules.MinGuildNameLength || (c.rules.MaxGuildNameLength > 0 && n > c.rules.MaxGuildNameLength) {
		return game.NewUserError(game.UIErrorGuildNameInvalid)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
			return game.NewUserError(game.UIErrorGuildNameInvalid)
		}
	}
	return nil
}

// CreateParty forms a party led by founderId.
func (c *Coordinator) CreateParty(ctx context.Context, founderId string, shareExp, shareItem bool) (*Group, error) {
	id := int(c.parties.nextId.Add(1))
	g := &Group{
		Id:       id,
		Kind:     KindParty,
		Settings: Settings{ShareExp: shareExp, ShareItem: shareItem},
	}

	err := c.roster.UpdateCharacter(founderId, func(rec *game.CharacterRecord) error {
		if _, loaded := c.parties.members.LoadOrStore(founderId, func() int { return id }); loaded {
			return game.NewUserError(game.UIErrorJoinedAnotherParty)
		}
		rec.PartyId = id
		g.LeaderId = rec.Id
		g.Members = []Member{{CharacterId: rec.Id, Name: rec.Name}}
		return nil
	})
	if err != nil {
		return nil, loginError(err)
	}

	c.parties.groups.Set(id, g)

	snap := g.snapshot()
	c.notify(ctx, []string{founderId}, game.Notification{Kind: game.NotifySetFullPartyData, Payload: snap})
	return snap, nil
}

// TryGetGuild returns a copy of the guild.
func (c *Coordinator) TryGetGuild(id int) (*Group, bool) {
	return c.tryGet(c.guilds, id)
}

// TryGetParty returns a copy of the party.
func (c *Coordinator) TryGetParty(id int) (*Group, bool) {
	return c.tryGet(c.parties, id)
}

func (c *Coordinator) tryGet(set *groupSet, id int) (*Group, bool) {
	g, ok := set.groups.Get(id)
	if !ok {
		return nil, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disbanded {
		return nil, false
	}
	return g.snapshot(), true
}

// GroupOf returns the id of the guild or party the character belongs to.
func (c *Coordinator) GroupOf(kind GroupKind, characterId string) (int, bool) {
	return c.set(kind).members.Get(characterId)
}

// GuildRole returns the guild and role of a member.
func (c *Coordinator) GuildRole(characterId string) (int, rules.GuildRole, bool) {
	id, ok := c.guilds.members.Get(characterId)
	if !ok {
		return 0, rules.GuildRole{}, false
	}
	g, ok := c.guilds.groups.Get(id)
	if !ok {
		return 0, rules.GuildRole{}, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.member(characterId)
	if i < 0 {
		return 0, rules.GuildRole{}, false
	}
	role, _ := g.role(g.Members[i].Role)
	return id, role, true
}

// SyncCharacter copies the character's current memberships onto its record.
// Offline characters miss membership changes, so this runs on every login.
func (c *Coordinator) SyncCharacter(rec *game.CharacterRecord) {
	rec.GuildId, rec.GuildRole, rec.PartyId = 0, 0, 0
	if id, ok := c.guilds.members.Get(rec.Id); ok {
		rec.GuildId = id
		if g, ok := c.guilds.groups.Get(id); ok {
			g.mu.Lock()
			if i := g.member(rec.Id); i >= 0 {
				rec.GuildRole = g.Members[i].Role
			}
			g.mu.Unlock()
		}
	}
	if id, ok := c.parties.members.Get(rec.Id); ok {
		rec.PartyId = id
	}
}

// FindGuilds is not supported yet.
func (c *Coordinator) FindGuilds(context.Context, string) ([]*Group, error) {
	return nil, game.WrapUnimplemented("find guilds")
}

// RequestJoinGuild is not supported yet.
func (c *Coordinator) RequestJoinGuild(context.Context, string, int) error {
	return game.WrapUnimplemented("request join guild")
}

// Reset forgets every group. Stored guilds are left untouched.
func (c *Coordinator) Reset() {
	for _, set := range []*groupSet{c.guilds, c.parties} {
		set.groups.Clear()
		set.members.Clear()
		set.invites.Clear()
	}
	c.names.Clear()
}

// withGroup runs fn with the actor's group locked.
func (c *Coordinator) withGroup(kind GroupKind, actorId string, fn func(g *Group) error) error {
	set := c.set(kind)
	id, ok := set.members.Get(actorId)
	if !ok {
		return game.NewUserError(notifications[kind].notJoined)
	}
	return c.withGroupId(kind, id, fn)
}

func (c *Coordinator) withGroupId(kind GroupKind, id int, fn func(g *Group) error) error {
	g, ok := c.set(kind).groups.Get(id)
	if !ok {
		return game.NewUserError(notifications[kind].notJoined)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disbanded {
		return game.NewUserError(notifications[kind].notJoined)
	}
	return fn(g)
}

// persist saves a guild. Parties are never stored.
func (c *Coordinator) persist(ctx context.Context, g *Group) {
	if c.store == nil || g.Kind != KindGuild {
		return
	}
	if err := c.store.Save(strconv.Itoa(g.Id), g.snapshot()); err != nil {
		slog.ErrorContext(ctx, "saving guild", "guild", g.Id, "error", err)
	}
}

func (c *Coordinator) unpersist(ctx context.Context, g *Group) {
	if c.store == nil || g.Kind != KindGuild {
		return
	}
	if err := c.store.Delete(strconv.Itoa(g.Id)); err != nil {
		slog.ErrorContext(ctx, "deleting guild", "guild", g.Id, "error", err)
	}
}

// notify sends n to every listed character that is online.
func (c *Coordinator) notify(ctx context.Context, characterIds []string, n game.Notification) {
	for _, id := range characterIds {
		conn, ok := c.roster.Connection(id)
		if !ok {
			continue
		}
		if err := c.pub.Send(conn, n); err != nil {
			slog.WarnContext(ctx, "sending group notification", "kind", n.Kind, "character", id, "error", err)
		}
	}
}

// mirror applies a membership change to an online character's record.
func (c *Coordinator) mirror(ctx context.Context, characterId string, fn func(rec *game.CharacterRecord)) {
	err := c.roster.UpdateCharacter(characterId, func(rec *game.CharacterRecord) error {
		fn(rec)
		return nil
	})
	if err != nil && !errors.Is(err, game.ErrPlayerNotFound) {
		slog.WarnContext(ctx, "updating character membership", "character", characterId, "error", err)
	}
}

func (c *Coordinator) setMembership(ctx context.Context, kind GroupKind, characterId string, groupId, role int) {
	c.mirror(ctx, characterId, func(rec *game.CharacterRecord) {
		c.applyMembership(kind, rec, groupId, role)
	})
}
