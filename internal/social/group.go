package social

import (
	"fmt"
	"slices"
	"sync"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/rules"
)

// GroupKind distinguishes guilds from parties.
type GroupKind int

const (
	KindGuild GroupKind = iota
	KindParty
)

func (k GroupKind) String() string {
	if k == KindParty {
		return "party"
	}
	return "guild"
}

// Member is one entry of a group roster. Role indexes the guild's roles and
// is always zero for parties.
type Member struct {
	CharacterId string `json:"character_id"`
	Name        string `json:"name"`
	Role        int    `json:"role"`
}

// Settings are the leader controlled options of a group.
type Settings struct {
	ShareExp  bool   `json:"share_exp,omitempty"`
	ShareItem bool   `json:"share_item,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Invitation is a pending invite into a group.
type Invitation struct {
	InviteeId string `json:"invitee_id"`
	InviterId string `json:"inviter_id"`
}

// Group is a guild or a party. Its roster is ordered by join time.
type Group struct {
	Id          int               `json:"id"`
	Kind        GroupKind         `json:"kind"`
	Name        string            `json:"name,omitempty"`
	LeaderId    string            `json:"leader_id"`
	Members     []Member          `json:"members"`
	Settings    Settings          `json:"settings"`
	Invitations []Invitation      `json:"invitations,omitempty"`
	Gold        int64             `json:"gold,omitempty"`
	Roles       []rules.GuildRole `json:"roles,omitempty"`

	mu        sync.Mutex
	disbanded bool
}

func (g *Group) Validate() error {
	el := errors.NewErrorList()
	if g.Id <= 0 {
		el.Add(fmt.Errorf("group id must be positive"))
	}
	if g.Kind == KindGuild && g.Name == "" {
		el.Add(fmt.Errorf("guild name is required"))
	}
	if g.member(g.LeaderId) < 0 {
		el.Add(fmt.Errorf("leader %q is not a member", g.LeaderId))
	}
	if g.Gold < 0 {
		el.Add(fmt.Errorf("gold must not be negative"))
	}
	return el.Err()
}

func (g *Group) member(characterId string) int {
	return slices.IndexFunc(g.Members, func(m Member) bool { return m.CharacterId == characterId })
}

func (g *Group) memberIds() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.CharacterId
	}
	return ids
}

func (g *Group) role(index int) (rules.GuildRole, bool) {
	if index < 0 || index >= len(g.Roles) {
		return rules.GuildRole{}, false
	}
	return g.Roles[index], true
}

func (g *Group) invitation(inviteeId, inviterId string) int {
	return slices.IndexFunc(g.Invitations, func(inv Invitation) bool {
		return inv.InviteeId == inviteeId && (inviterId == "" || inv.InviterId == inviterId)
	})
}

func (g *Group) dropInvitations(inviteeId string) {
	g.Invitations = slices.DeleteFunc(g.Invitations, func(inv Invitation) bool { return inv.InviteeId == inviteeId })
}

// snapshot copies the group for replication and callers outside the lock.
func (g *Group) snapshot() *Group {
	return &Group{
		Id:          g.Id,
		Kind:        g.Kind,
		Name:        g.Name,
		LeaderId:    g.LeaderId,
		Members:     slices.Clone(g.Members),
		Settings:    g.Settings,
		Invitations: slices.Clone(g.Invitations),
		Gold:        g.Gold,
		Roles:       slices.Clone(g.Roles),
	}
}

// InvitationPayload is sent to an invitee.
type InvitationPayload struct {
	GroupId     int    `json:"group_id"`
	GroupName   string `json:"group_name,omitempty"`
	InviterId   string `json:"inviter_id"`
	InviterName string `json:"inviter_name"`
}

// MemberPayload announces an added, removed or re-ranked member.
type MemberPayload struct {
	GroupId int    `json:"group_id"`
	Member  Member `json:"member"`
}

// LeaderPayload announces a new leader.
type LeaderPayload struct {
	GroupId  int    `json:"group_id"`
	LeaderId string `json:"leader_id"`
}

// SettingsPayload announces changed settings.
type SettingsPayload struct {
	GroupId  int      `json:"group_id"`
	Settings Settings `json:"settings"`
}

// GoldPayload announces a new guild bank balance.
type GoldPayload struct {
	GroupId int   `json:"group_id"`
	Gold    int64 `json:"gold"`
}

// GroupRef identifies a group a member was removed from.
type GroupRef struct {
	GroupId int `json:"group_id"`
}

type kindNotifications struct {
	invitation game.NotificationKind
	full       game.NotificationKind
	add        game.NotificationKind
	remove     game.NotificationKind
	leader     game.NotificationKind
	settings   game.NotificationKind
	clear      game.NotificationKind

	accepted game.UIMessage
	declined game.UIMessage

	notJoined     game.UIMessage
	joinedAnother game.UIMessage
	notLeader     game.UIMessage
}

var notifications = map[GroupKind]kindNotifications{
	KindGuild: {
		invitation:    game.NotifyGuildInvitation,
		full:          game.NotifySetFullGuildData,
		add:           game.NotifyAddGuildMember,
		remove:        game.NotifyRemoveGuildMember,
		leader:        game.NotifySetGuildLeader,
		settings:      game.NotifySetGuildMessage,
		clear:         game.NotifyClearGuildData,
		accepted:      game.UIGuildInvitationAccepted,
		declined:      game.UIGuildInvitationDeclined,
		notJoined:     game.UIErrorNotJoinedGuild,
		joinedAnother: game.UIErrorJoinedAnotherGuild,
		notLeader:     game.UIErrorNotGuildLeader,
	},
	KindParty: {
		invitation:    game.NotifyPartyInvitation,
		full:          game.NotifySetFullPartyData,
		add:           game.NotifyAddPartyMember,
		remove:        game.NotifyRemovePartyMember,
		leader:        game.NotifySetPartyLeader,
		settings:      game.NotifySetPartySetting,
		clear:         game.NotifyClearPartyData,
		accepted:      game.UIPartyInvitationAccepted,
		declined:      game.UIPartyInvitationDeclined,
		notJoined:     game.UIErrorNotJoinedParty,
		joinedAnother: game.UIErrorJoinedAnotherParty,
		notLeader:     game.UIErrorNotPartyLeader,
	},
}
