package game

import (
	"errors"
	"fmt"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrUnimplemented  = errors.New("unimplemented")
)

// UIMessage is a client-facing message code. Clients localize the code.
type UIMessage string

const (
	UINone UIMessage = ""

	UIErrorNotLoggedIn        UIMessage = "UI_ERROR_NOT_LOGGED_IN"
	UIErrorCharacterNotFound  UIMessage = "UI_ERROR_CHARACTER_NOT_FOUND"
	UIErrorCharacterIsTooFar  UIMessage = "UI_ERROR_CHARACTER_IS_TOO_FAR"
	UIErrorCannotAccess       UIMessage = "UI_ERROR_CANNOT_ACCESS_STORAGE"
	UIErrorStorageNotFound    UIMessage = "UI_ERROR_STORAGE_NOT_FOUND"
	UIErrorStorageBusy        UIMessage = "UI_ERROR_STORAGE_BUSY"
	UIErrorInvalidItemIndex   UIMessage = "UI_ERROR_INVALID_ITEM_INDEX"
	UIErrorInvalidAmount      UIMessage = "UI_ERROR_INVALID_AMOUNT"
	UIErrorWillOverwhelming   UIMessage = "UI_ERROR_WILL_OVERWHELMING"
	UIErrorStorageFull        UIMessage = "UI_ERROR_STORAGE_WILL_OVERWHELMING"
	UIErrorNotEnoughGoldDep   UIMessage = "UI_ERROR_NOT_ENOUGH_GOLD_TO_DEPOSIT"
	UIErrorNotEnoughGoldWd    UIMessage = "UI_ERROR_NOT_ENOUGH_GOLD_TO_WITHDRAW"
	UIErrorNotEnoughCash      UIMessage = "UI_ERROR_NOT_ENOUGH_CASH"
	UIErrorItemNotFound       UIMessage = "UI_ERROR_ITEM_NOT_FOUND"
	UIErrorInvalidData        UIMessage = "UI_ERROR_INVALID_DATA"
	UIErrorJoinedAnotherGuild UIMessage = "UI_ERROR_JOINED_ANOTHER_GUILD"
	UIErrorJoinedAnotherParty UIMessage = "UI_ERROR_JOINED_ANOTHER_PARTY"
	UIErrorNotJoinedGuild     UIMessage = "UI_ERROR_NOT_JOINED_GUILD"
	UIErrorNotJoinedParty     UIMessage = "UI_ERROR_NOT_JOINED_PARTY"
	UIErrorNotGuildLeader     UIMessage = "UI_ERROR_NOT_GUILD_LEADER"
	UIErrorNotPartyLeader     UIMessage = "UI_ERROR_NOT_PARTY_LEADER"
	UIErrorCannotInvite       UIMessage = "UI_ERROR_CANNOT_SEND_INVITATION"
	UIErrorCannotKick         UIMessage = "UI_ERROR_CANNOT_KICK"
	UIErrorCannotKickSelf     UIMessage = "UI_ERROR_CANNOT_KICK_YOURSELF"
	UIErrorCannotKickLeader   UIMessage = "UI_ERROR_CANNOT_KICK_LEADER"
	UIErrorCannotKickHigher   UIMessage = "UI_ERROR_CANNOT_KICK_HIGHER_ROLE"
	UIErrorNotMember          UIMessage = "UI_ERROR_CHARACTER_NOT_JOINED"
	UIErrorInvitationNotFound UIMessage = "UI_ERROR_INVITATION_NOT_FOUND"
	UIErrorGroupFull          UIMessage = "UI_ERROR_GROUP_MEMBER_REACHED_LIMIT"
	UIErrorGuildNameTaken     UIMessage = "UI_ERROR_GUILD_NAME_EXISTED"
	UIErrorGuildNameInvalid   UIMessage = "UI_ERROR_GUILD_NAME_INVALID"
	UIErrorNotEnoughGoldGuild UIMessage = "UI_ERROR_NOT_ENOUGH_GOLD_TO_CREATE_GUILD"
	UIErrorInvalidGuildRole   UIMessage = "UI_ERROR_INVALID_GUILD_ROLE"
	UIErrorNoPermission       UIMessage = "UI_ERROR_NO_PERMISSION"
	UIErrorServiceNotReady    UIMessage = "UI_ERROR_SERVICE_NOT_AVAILABLE"

	UIGuildInvitationAccepted UIMessage = "UI_GUILD_INVITATION_ACCEPTED"
	UIGuildInvitationDeclined UIMessage = "UI_GUILD_INVITATION_DECLINED"
	UIPartyInvitationAccepted UIMessage = "UI_PARTY_INVITATION_ACCEPTED"
	UIPartyInvitationDeclined UIMessage = "UI_PARTY_INVITATION_DECLINED"
)

// UserError is a validation failure reported to the client as a message
// code. It is never a server fault.
type UserError struct {
	Code UIMessage
}

func (e *UserError) Error() string {
	return string(e.Code)
}

// NewUserError creates a client-facing validation error.
func NewUserError(code UIMessage) *UserError {
	return &UserError{Code: code}
}

// CodeOf extracts the message code of a UserError anywhere in err's chain.
func CodeOf(err error) (UIMessage, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Code, true
	}
	return UINone, false
}

// WrapUnimplemented marks an operation that is intentionally not supported.
func WrapUnimplemented(op string) error {
	return fmt.Errorf("%s: %w", op, ErrUnimplemented)
}
