package audit

import "go-audit-relay/internal/models"

type mentionStyle uint8

const (
	mentionNone mentionStyle = iota
	mentionUser
	mentionRole
	mentionChannel
)

var targetStyles = map[models.ActionKind]mentionStyle{
	models.KindMemberKick:       mentionUser,
	models.KindMemberBan:        mentionUser,
	models.KindMemberUnban:      mentionUser,
	models.KindMemberUpdate:     mentionUser,
	models.KindMemberRoleUpdate: mentionUser,
	models.KindMemberTimeout:    mentionUser,
	models.KindBotAdd:           mentionUser,
	models.KindMessageDelete:    mentionUser,
	models.KindMessagePin:       mentionUser,
	models.KindMessageUnpin:     mentionUser,
	models.KindAutomodBlock:     mentionUser,
	models.KindAutomodFlag:      mentionUser,
	models.KindAutomodTimeout:   mentionUser,

	models.KindRoleCreate: mentionRole,
	models.KindRoleDelete: mentionRole,
	models.KindRoleUpdate: mentionRole,

	models.KindChannelCreate:     mentionChannel,
	models.KindChannelDelete:     mentionChannel,
	models.KindChannelUpdate:     mentionChannel,
	models.KindThreadCreate:      mentionChannel,
	models.KindThreadDelete:      mentionChannel,
	models.KindThreadUpdate:      mentionChannel,
	models.KindMessageBulkDelete: mentionChannel,
}

// TargetLine renders an entry's target as a detail line. Users, roles and
// channels become mentions; any other target is shown by ID. An empty ID
// yields "".
func TargetLine(kind models.ActionKind, targetID string) string {
	if targetID == "" {
		return ""
	}
	switch targetStyles[kind] {
	case mentionUser:
		return "Target: <@" + targetID + ">"
	case mentionRole:
		return "Target: <@&" + targetID + ">"
	case mentionChannel:
		return "Target: <#" + targetID + ">"
	default:
		return "Target ID: " + targetID
	}
}
