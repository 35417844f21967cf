package model

import "time"

// RegisteredGroup is a group chat the bot was added to and relays events into.
type RegisteredGroup struct {
	ChatID       int64
	Title        string
	RegisteredAt time.Time
}

const (
	ChatTypePrivate    = "private"
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
	ChatTypeChannel    = "channel"
)

const (
	MemberStatusCreator       = "creator"
	MemberStatusAdministrator = "administrator"
	MemberStatusMember        = "member"
	MemberStatusRestricted    = "restricted"
	MemberStatusLeft          = "left"
	MemberStatusKicked        = "kicked"
)

// MembershipEvent reports a change of the bot's own membership in a chat.
type MembershipEvent struct {
	ChatID    int64
	ChatType  string
	Title     string
	NewStatus string
}

// IsGroupChat reports whether the event concerns a group or supergroup.
func (e MembershipEvent) IsGroupChat() bool {
	return e.ChatType == ChatTypeGroup || e.ChatType == ChatTypeSupergroup
}

// Joined reports whether the bot became an active member.
func (e MembershipEvent) Joined() bool {
	return e.NewStatus == MemberStatusMember || e.NewStatus == MemberStatusAdministrator
}

// Removed reports whether the bot lost membership.
func (e MembershipEvent) Removed() bool {
	return e.NewStatus == MemberStatusLeft || e.NewStatus == MemberStatusKicked
}
