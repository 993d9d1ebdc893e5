package dispatch

// Kind names an inbound request.
type Kind string

const (
	KindOpenStorage            Kind = "OpenStorage"
	KindCloseStorage           Kind = "CloseStorage"
	KindMoveItemToStorage      Kind = "MoveItemToStorage"
	KindMoveItemFromStorage    Kind = "MoveItemFromStorage"
	KindSwapOrMergeStorageItem Kind = "SwapOrMergeStorageItem"

	KindCreateGuild            Kind = "CreateGuild"
	KindCreateParty            Kind = "CreateParty"
	KindSendGuildInvitation    Kind = "SendGuildInvitation"
	KindAcceptGuildInvitation  Kind = "AcceptGuildInvitation"
	KindDeclineGuildInvitation Kind = "DeclineGuildInvitation"
	KindSendPartyInvitation    Kind = "SendPartyInvitation"
	KindAcceptPartyInvitation  Kind = "AcceptPartyInvitation"
	KindDeclinePartyInvitation Kind = "DeclinePartyInvitation"
	KindChangeGuildLeader      Kind = "ChangeGuildLeader"
	KindChangePartyLeader      Kind = "ChangePartyLeader"
	KindKickMemberFromGuild    Kind = "KickMemberFromGuild"
	KindKickMemberFromParty    Kind = "KickMemberFromParty"
	KindLeaveGuild             Kind = "LeaveGuild"
	KindLeaveParty             Kind = "LeaveParty"
	KindChangeMemberGuildRole  Kind = "ChangeMemberGuildRole"
	KindChangeGuildRoleSetting Kind = "ChangeGuildRoleSetting"
	KindChangeGuildMessage     Kind = "ChangeGuildMessage"
	KindChangePartySetting     Kind = "ChangePartySetting"
	KindFindGuilds             Kind = "FindGuilds"
	KindRequestJoinGuild       Kind = "RequestJoinGuild"

	KindDepositUserGold          Kind = "DepositUserGold"
	KindWithdrawUserGold         Kind = "WithdrawUserGold"
	KindDepositGuildGold         Kind = "DepositGuildGold"
	KindWithdrawGuildGold        Kind = "WithdrawGuildGold"
	KindCashShopBuy              Kind = "CashShopBuy"
	KindCashPackageBuyValidation Kind = "CashPackageBuyValidation"

	KindConfirmTeleport Kind = "ConfirmTeleport"
)

// Kinds lists every request kind the server understands.
var Kinds = []Kind{
	KindOpenStorage,
	KindCloseStorage,
	KindMoveItemToStorage,
	KindMoveItemFromStorage,
	KindSwapOrMergeStorageItem,
	KindCreateGuild,
	KindCreateParty,
	KindSendGuildInvitation,
	KindAcceptGuildInvitation,
	KindDeclineGuildInvitation,
	KindSendPartyInvitation,
	KindAcceptPartyInvitation,
	KindDeclinePartyInvitation,
	KindChangeGuildLeader,
	KindChangePartyLeader,
	KindKickMemberFromGuild,
	KindKickMemberFromParty,
	KindLeaveGuild,
	KindLeaveParty,
	KindChangeMemberGuildRole,
	KindChangeGuildRoleSetting,
	KindChangeGuildMessage,
	KindChangePartySetting,
	KindFindGuilds,
	KindRequestJoinGuild,
	KindDepositUserGold,
	KindWithdrawUserGold,
	KindDepositGuildGold,
	KindWithdrawGuildGold,
	KindCashShopBuy,
	KindCashPackageBuyValidation,
	KindConfirmTeleport,
}
