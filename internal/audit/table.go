// Package audit classifies raw Discord audit-log entries and formats their
// details into human-readable lines.
package audit

import (
	"fmt"

	"go-audit-relay/internal/models"

	"github.com/bwmarrin/discordgo"
)

// Route tells the router which path publishes an action so that an action
// observed on two paths is reported once.
type Route uint8

const (
	// RouteAuditLog actions are published from the audit-log-entry event.
	RouteAuditLog Route = iota
	// RouteGateway actions are reported by a gateway normalizer.
	RouteGateway
	// RouteLookup actions are published by an explicit audit-log lookup
	// (kick reconciliation, webhook updates).
	RouteLookup
)

func (r Route) String() string {
	switch r {
	case RouteAuditLog:
		return "audit-log"
	case RouteGateway:
		return "gateway"
	case RouteLookup:
		return "lookup"
	default:
		return "unknown"
	}
}

// Classification is one row of the action table.
type Classification struct {
	Action      discordgo.AuditLogAction
	DisplayName string
	Kind        models.ActionKind
	Route       Route
}

// Raw action identifiers as defined by the Discord API.
const (
	actionGuildUpdate             discordgo.AuditLogAction = 1
	actionChannelCreate           discordgo.AuditLogAction = 10
	actionChannelUpdate           discordgo.AuditLogAction = 11
	actionChannelDelete           discordgo.AuditLogAction = 12
	actionMemberKick              discordgo.AuditLogAction = 20
	actionMemberPrune             discordgo.AuditLogAction = 21
	actionMemberBanAdd            discordgo.AuditLogAction = 22
	actionMemberBanRemove         discordgo.AuditLogAction = 23
	actionMemberUpdate            discordgo.AuditLogAction = 24
	actionMemberRoleUpdate        discordgo.AuditLogAction = 25
	actionBotAdd                  discordgo.AuditLogAction = 28
	actionRoleCreate              discordgo.AuditLogAction = 30
	actionRoleUpdate              discordgo.AuditLogAction = 31
	actionRoleDelete              discordgo.AuditLogAction = 32
	actionInviteCreate            discordgo.AuditLogAction = 40
	actionInviteUpdate            discordgo.AuditLogAction = 41
	actionInviteDelete            discordgo.AuditLogAction = 42
	actionWebhookCreate           discordgo.AuditLogAction = 50
	actionWebhookUpdate           discordgo.AuditLogAction = 51
	actionWebhookDelete           discordgo.AuditLogAction = 52
	actionEmojiCreate             discordgo.AuditLogAction = 60
	actionEmojiUpdate             discordgo.AuditLogAction = 61
	actionEmojiDelete             discordgo.AuditLogAction = 62
	actionMessageDelete           discordgo.AuditLogAction = 72
	actionMessageBulkDelete       discordgo.AuditLogAction = 73
	actionMessagePin              discordgo.AuditLogAction = 74
	actionMessageUnpin            discordgo.AuditLogAction = 75
	actionIntegrationCreate       discordgo.AuditLogAction = 80
	actionIntegrationUpdate       discordgo.AuditLogAction = 81
	actionIntegrationDelete       discordgo.AuditLogAction = 82
	actionStickerCreate           discordgo.AuditLogAction = 90
	actionStickerUpdate           discordgo.AuditLogAction = 91
	actionStickerDelete           discordgo.AuditLogAction = 92
	actionThreadCreate            discordgo.AuditLogAction = 110
	actionThreadUpdate            discordgo.AuditLogAction = 111
	actionThreadDelete            discordgo.AuditLogAction = 112
	actionCommandPermissionUpdate discordgo.AuditLogAction = 121
	actionSoundboardCreate        discordgo.AuditLogAction = 130
	actionSoundboardUpdate        discordgo.AuditLogAction = 131
	actionSoundboardDelete        discordgo.AuditLogAction = 132
	actionAutomodRuleCreate       discordgo.AuditLogAction = 140
	actionAutomodRuleUpdate       discordgo.AuditLogAction = 141
	actionAutomodRuleDelete       discordgo.AuditLogAction = 142
	actionAutomodBlockMessage     discordgo.AuditLogAction = 143
	actionAutomodFlagToChannel    discordgo.AuditLogAction = 144
	actionAutomodUserTimeout      discordgo.AuditLogAction = 145
)

// ActionMemberKick is the raw identifier the reconciler filters on.
const ActionMemberKick = actionMemberKick

// rows is append-only. New audit-log actions are added here and nowhere else.
var rows = []Classification{
	{actionMessageDelete, "Message Deleted", models.KindMessageDelete, RouteGateway},
	{actionMemberBanAdd, "Member Banned", models.KindMemberBan, RouteAuditLog},
	{actionMemberBanRemove, "Member Unbanned", models.KindMemberUnban, RouteAuditLog},
	{actionMemberKick, "Member Kicked", models.KindMemberKick, RouteLookup},
	{actionMemberUpdate, "Member Updated", models.KindMemberUpdate, RouteGateway},
	{actionRoleCreate, "Role Created", models.KindRoleCreate, RouteGateway},
	{actionRoleDelete, "Role Deleted", models.KindRoleDelete, RouteGateway},
	{actionRoleUpdate, "Role Updated", models.KindRoleUpdate, RouteGateway},
	{actionChannelCreate, "Channel Created", models.KindChannelCreate, RouteGateway},
	{actionChannelDelete, "Channel Deleted", models.KindChannelDelete, RouteGateway},
	{actionChannelUpdate, "Channel Updated", models.KindChannelUpdate, RouteGateway},
	{actionEmojiCreate, "Emoji Created", models.KindEmojiCreate, RouteGateway},
	{actionEmojiDelete, "Emoji Deleted", models.KindEmojiDelete, RouteGateway},
	{actionEmojiUpdate, "Emoji Updated", models.KindEmojiUpdate, RouteGateway},
	{actionStickerCreate, "Sticker Created", models.KindStickerCreate, RouteGateway},
	{actionStickerDelete, "Sticker Deleted", models.KindStickerDelete, RouteGateway},
	{actionStickerUpdate, "Sticker Updated", models.KindStickerUpdate, RouteGateway},
	{actionInviteCreate, "Invite Created", models.KindInviteCreate, RouteGateway},
	{actionInviteDelete, "Invite Deleted", models.KindInviteDelete, RouteAuditLog},
	{actionInviteUpdate, "Invite Updated", models.KindInviteUpdate, RouteAuditLog},
	{actionWebhookCreate, "Webhook Created", models.KindWebhookCreate, RouteLookup},
	{actionWebhookDelete, "Webhook Deleted", models.KindWebhookDelete, RouteLookup},
	{actionWebhookUpdate, "Webhook Updated", models.KindWebhookUpdate, RouteLookup},
	{actionIntegrationCreate, "Integration Created", models.KindIntegrationCreate, RouteAuditLog},
	{actionIntegrationDelete, "Integration Deleted", models.KindIntegrationDelete, RouteAuditLog},
	{actionIntegrationUpdate, "Integration Updated", models.KindIntegrationUpdate, RouteAuditLog},
	{actionCommandPermissionUpdate, "Command Permissions Updated", models.KindCommandPermissionUpdate, RouteAuditLog},
	{actionThreadCreate, "Thread Created", models.KindThreadCreate, RouteAuditLog},
	{actionThreadDelete, "Thread Deleted", models.KindThreadDelete, RouteAuditLog},
	{actionThreadUpdate, "Thread Updated", models.KindThreadUpdate, RouteAuditLog},
	{actionAutomodRuleCreate, "Automod Rule Created", models.KindAutomodRuleCreate, RouteAuditLog},
	{actionAutomodRuleDelete, "Automod Rule Deleted", models.KindAutomodRuleDelete, RouteAuditLog},
	{actionAutomodRuleUpdate, "Automod Rule Updated", models.KindAutomodRuleUpdate, RouteAuditLog},
	{actionAutomodBlockMessage, "Automod Blocked Message", models.KindAutomodBlock, RouteAuditLog},
	{actionAutomodFlagToChannel, "Automod Flagged Message", models.KindAutomodFlag, RouteAuditLog},
	{actionAutomodUserTimeout, "Automod Timeout", models.KindAutomodTimeout, RouteAuditLog},
	{actionSoundboardCreate, "Soundboard Sound Created", models.KindSoundboardCreate, RouteAuditLog},
	{actionSoundboardDelete, "Soundboard Sound Deleted", models.KindSoundboardDelete, RouteAuditLog},
	{actionSoundboardUpdate, "Soundboard Sound Updated", models.KindSoundboardUpdate, RouteAuditLog},
	{actionGuildUpdate, "Server Updated", models.KindGuildUpdate, RouteGateway},
	{actionMemberRoleUpdate, "Member Roles Updated", models.KindMemberRoleUpdate, RouteGateway},
	{actionBotAdd, "Bot Added", models.KindBotAdd, RouteAuditLog},
	{actionMessageBulkDelete, "Messages Bulk Deleted", models.KindMessageBulkDelete, RouteAuditLog},
	{actionMessagePin, "Message Pinned", models.KindMessagePin, RouteAuditLog},
	{actionMessageUnpin, "Message Unpinned", models.KindMessageUnpin, RouteAuditLog},
	{actionMemberPrune, "Members Pruned", models.KindMemberPrune, RouteAuditLog},
}

var byAction = indexRows(rows)

func indexRows(rs []Classification) map[discordgo.AuditLogAction]Classification {
	index := make(map[discordgo.AuditLogAction]Classification, len(rs))
	for _, r := range rs {
		if _, dup := index[r.Action]; dup {
			panic(fmt.Sprintf("audit: duplicate action %d in table", r.Action))
		}
		index[r.Action] = r
	}
	return index
}

// Lookup returns the registered classification for a raw action identifier.
func Lookup(action discordgo.AuditLogAction) (Classification, bool) {
	c, ok := byAction[action]
	return c, ok
}

// Rows returns a copy of the table in registration order.
func Rows() []Classification {
	out := make([]Classification, len(rows))
	copy(out, rows)
	return out
}

// gatewayLabels name the kinds that have no table row of their own.
var gatewayLabels = map[models.ActionKind]string{
	models.KindMessageEdit:   "Message Edited",
	models.KindMemberJoin:    "Member Joined",
	models.KindMemberLeave:   "Member Left",
	models.KindMemberTimeout: "Member Timed Out",
}

// DisplayNameFor returns the label for a kind, or "" if the kind is unknown.
func DisplayNameFor(kind models.ActionKind) string {
	for _, r := range rows {
		if r.Kind == kind {
			return r.DisplayName
		}
	}
	return gatewayLabels[kind]
}

// Classify looks an entry up in the table and refines member updates that
// touch the timeout field into member_timeout. Timeouts are published from
// the audit log, which names the moderator; the gateway diff cannot.
func Classify(entry *discordgo.AuditLogEntry) (Classification, bool) {
	if entry == nil || entry.ActionType == nil {
		return Classification{}, false
	}

	c, ok := Lookup(*entry.ActionType)
	if !ok {
		return Classification{}, false
	}

	if c.Kind == models.KindMemberUpdate && findChange(entry, keyTimeout) != nil {
		c.Kind = models.KindMemberTimeout
		c.DisplayName = gatewayLabels[models.KindMemberTimeout]
		c.Route = RouteAuditLog
	}

	return c, true
}
