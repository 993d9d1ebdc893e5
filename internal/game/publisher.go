package game

// NotificationKind names an outbound, fire-and-forget message.
type NotificationKind string

const (
	NotifyStorageOpened       NotificationKind = "StorageOpened"
	NotifyStorageItemsUpdated NotificationKind = "StorageItemsUpdated"
	NotifyStorageClosed       NotificationKind = "StorageClosed"

	NotifyGuildInvitation   NotificationKind = "GuildInvitation"
	NotifySetFullGuildData  NotificationKind = "SetFullGuildData"
	NotifyAddGuildMember    NotificationKind = "AddGuildMember"
	NotifyRemoveGuildMember NotificationKind = "RemoveGuildMember"
	NotifySetGuildLeader    NotificationKind = "SetGuildLeader"
	NotifySetGuildRole      NotificationKind = "SetGuildRole"
	NotifySetGuildMessage   NotificationKind = "SetGuildMessage"
	NotifySetGuildGold      NotificationKind = "SetGuildGold"
	NotifyClearGuildData    NotificationKind = "ClearGuildData"

	NotifyPartyInvitation   NotificationKind = "PartyInvitation"
	NotifySetFullPartyData  NotificationKind = "SetFullPartyData"
	NotifyAddPartyMember    NotificationKind = "AddPartyMember"
	NotifyRemovePartyMember NotificationKind = "RemovePartyMember"
	NotifySetPartyLeader    NotificationKind = "SetPartyLeader"
	NotifySetPartySetting   NotificationKind = "SetPartySetting"
	NotifyClearPartyData    NotificationKind = "ClearPartyData"

	NotifyGameMessage NotificationKind = "GameMessage"
)

// Notification is pushed to one or more connections.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Code    UIMessage        `json:"code,omitempty"`
	Text    string           `json:"text,omitempty"`
	Payload any              `json:"payload,omitempty"`
}

// Publisher delivers notifications to connections.
type Publisher interface {
	Send(conn ConnectionId, n Notification) error
}

// Broadcast sends n to every connection and returns the first failure. A
// failed send never stops delivery to the remaining connections.
func Broadcast(pub Publisher, conns []ConnectionId, n Notification) error {
	var firstErr error
	for _, c := range conns {
		if err := pub.Send(c, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
