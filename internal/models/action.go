package models

// ActionKind is the closed set of categories an audit Record can carry.
type ActionKind string

const (
	KindUnknown ActionKind = "unknown"

	KindMessageDelete     ActionKind = "message_delete"
	KindMessageBulkDelete ActionKind = "message_bulk_delete"
	KindMessageEdit       ActionKind = "message_edit"
	KindMessagePin        ActionKind = "message_pin"
	KindMessageUnpin      ActionKind = "message_unpin"

	KindMemberJoin       ActionKind = "member_join"
	KindMemberLeave      ActionKind = "member_leave"
	KindMemberKick       ActionKind = "member_kick"
	KindMemberBan        ActionKind = "member_ban"
	KindMemberUnban      ActionKind = "member_unban"
	KindMemberUpdate     ActionKind = "member_update"
	KindMemberRoleUpdate ActionKind = "member_role_update"
	KindMemberTimeout    ActionKind = "member_timeout"
	KindMemberPrune      ActionKind = "member_prune"
	KindBotAdd           ActionKind = "bot_add"

	KindGuildUpdate ActionKind = "guild_update"

	KindRoleCreate ActionKind = "role_create"
	KindRoleDelete ActionKind = "role_delete"
	KindRoleUpdate ActionKind = "role_update"

	KindChannelCreate ActionKind = "channel_create"
	KindChannelDelete ActionKind = "channel_delete"
	KindChannelUpdate ActionKind = "channel_update"

	KindThreadCreate ActionKind = "thread_create"
	KindThreadDelete ActionKind = "thread_delete"
	KindThreadUpdate ActionKind = "thread_update"

	KindInviteCreate ActionKind = "invite_create"
	KindInviteDelete ActionKind = "invite_delete"
	KindInviteUpdate ActionKind = "invite_update"

	KindWebhookCreate ActionKind = "webhook_create"
	KindWebhookDelete ActionKind = "webhook_delete"
	KindWebhookUpdate ActionKind = "webhook_update"

	KindEmojiCreate ActionKind = "emoji_create"
	KindEmojiDelete ActionKind = "emoji_delete"
	KindEmojiUpdate ActionKind = "emoji_update"

	KindStickerCreate ActionKind = "sticker_create"
	KindStickerDelete ActionKind = "sticker_delete"
	KindStickerUpdate ActionKind = "sticker_update"

	KindIntegrationCreate ActionKind = "integration_create"
	KindIntegrationDelete ActionKind = "integration_delete"
	KindIntegrationUpdate ActionKind = "integration_update"

	KindCommandPermissionUpdate ActionKind = "command_permission_update"

	KindAutomodRuleCreate ActionKind = "automod_rule_create"
	KindAutomodRuleDelete ActionKind = "automod_rule_delete"
	KindAutomodRuleUpdate ActionKind = "automod_rule_update"
	KindAutomodBlock      ActionKind = "automod_block"
	KindAutomodFlag       ActionKind = "automod_flag"
	KindAutomodTimeout    ActionKind = "automod_timeout"

	KindSoundboardCreate ActionKind = "soundboard_create"
	KindSoundboardDelete ActionKind = "soundboard_delete"
	KindSoundboardUpdate ActionKind = "soundboard_update"
)

func (k ActionKind) String() string {
	return string(k)
}
