package audit

import (
	"fmt"
	"time"

	"go-audit-relay/internal/models"
	"go-audit-relay/pkg/util"

	"github.com/bwmarrin/discordgo"
)

// NoDetails is shown in place of an empty detail list.
const NoDetails = "No additional details"

type formatFunc func(entry *discordgo.AuditLogEntry) []string

var formatters = map[models.ActionKind]formatFunc{
	models.KindMessageDelete:     formatMessageDelete,
	models.KindMessageBulkDelete: formatMessageDelete,
	models.KindMessagePin:        formatMessagePin,
	models.KindMessageUnpin:      formatMessagePin,

	models.KindMemberTimeout:    formatMemberTimeout,
	models.KindMemberRoleUpdate: formatMemberRoles,
	models.KindMemberPrune:      formatMemberPrune,

	models.KindInviteCreate: formatInviteCreate,
	models.KindInviteDelete: named("Invite", keyCode, false),

	models.KindEmojiCreate:       named("Emoji", keyName, true),
	models.KindEmojiDelete:       named("Deleted Emoji", keyName, false),
	models.KindStickerCreate:     named("Sticker", keyName, true),
	models.KindStickerDelete:     named("Deleted Sticker", keyName, false),
	models.KindWebhookCreate:     named("Webhook", keyName, true),
	models.KindWebhookDelete:     named("Deleted Webhook", keyName, false),
	models.KindIntegrationCreate: named("Integration", keyName, true),
	models.KindIntegrationDelete: named("Deleted Integration", keyName, false),

	models.KindAutomodBlock:   formatAutomod,
	models.KindAutomodFlag:    formatAutomod,
	models.KindAutomodTimeout: formatAutomod,
}

// diffKinds render their changes as Before/After lines.
var diffKinds = []models.ActionKind{
	models.KindRoleCreate, models.KindRoleDelete, models.KindRoleUpdate,
	models.KindChannelCreate, models.KindChannelDelete, models.KindChannelUpdate,
	models.KindThreadCreate, models.KindThreadDelete, models.KindThreadUpdate,
	models.KindEmojiUpdate, models.KindStickerUpdate,
	models.KindWebhookUpdate, models.KindIntegrationUpdate,
	models.KindInviteUpdate,
	models.KindCommandPermissionUpdate,
	models.KindAutomodRuleCreate, models.KindAutomodRuleDelete, models.KindAutomodRuleUpdate,
	models.KindSoundboardCreate, models.KindSoundboardDelete, models.KindSoundboardUpdate,
	models.KindGuildUpdate, models.KindMemberUpdate,
}

func init() {
	for _, k := range diffKinds {
		formatters[k] = diffLines
	}
}

// FormatDetails returns the detail lines for an entry. Kind-specific lines
// come first and the reason, when present, is always last. Kinds without a
// formatter get the reason only.
func FormatDetails(entry *discordgo.AuditLogEntry, kind models.ActionKind) []string {
	if entry == nil {
		return nil
	}

	var lines []string
	if f, ok := formatters[kind]; ok {
		lines = f(entry)
	}
	if entry.Reason != "" {
		lines = append(lines, "Reason: "+entry.Reason)
	}
	return lines
}

func formatMessageDelete(entry *discordgo.AuditLogEntry) []string {
	opts := optionsOf(entry)

	var lines []string
	if n, ok := toInt(opts.Count); ok {
		lines = append(lines, fmt.Sprintf("Messages Deleted: %d", n))
	}
	if opts.ChannelID != "" {
		lines = append(lines, fmt.Sprintf("Channel: <#%s>", opts.ChannelID))
	}
	return lines
}

func formatMessagePin(entry *discordgo.AuditLogEntry) []string {
	opts := optionsOf(entry)

	var lines []string
	if opts.ChannelID != "" {
		lines = append(lines, fmt.Sprintf("Channel: <#%s>", opts.ChannelID))
	}
	if opts.MessageID != "" {
		lines = append(lines, "Message ID: "+opts.MessageID)
	}
	return lines
}

func formatMemberTimeout(entry *discordgo.AuditLogEntry) []string {
	c := findChange(entry, keyTimeout)
	if c == nil {
		return nil
	}
	if c.NewValue == nil {
		return []string{"Timeout Removed"}
	}

	raw := renderValue(c.NewValue)
	until, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return []string{"Timeout Until: " + raw}
	}
	return []string{"Timeout Until: " + util.Timestamp(until)}
}

func formatMemberRoles(entry *discordgo.AuditLogEntry) []string {
	var lines []string
	if c := findChange(entry, keyRoleAdd); c != nil && c.NewValue != nil {
		lines = append(lines, "Roles Added: "+renderValue(c.NewValue))
	}
	if c := findChange(entry, keyRoleRm); c != nil && c.NewValue != nil {
		lines = append(lines, "Roles Removed: "+renderValue(c.NewValue))
	}
	return lines
}

func formatMemberPrune(entry *discordgo.AuditLogEntry) []string {
	opts := optionsOf(entry)
	if opts.MembersRemoved == "" {
		return nil
	}
	return []string{"Members Removed: " + opts.MembersRemoved}
}

// formatInviteCreate treats zero (or negative) max age and max uses as the
// platform's "no limit" sentinel.
func formatInviteCreate(entry *discordgo.AuditLogEntry) []string {
	var lines []string

	if c := findChange(entry, keyCode); c != nil && c.NewValue != nil {
		lines = append(lines, "Code: "+renderValue(c.NewValue))
	}
	if c := findChange(entry, keyChannelID); c != nil && c.NewValue != nil {
		lines = append(lines, fmt.Sprintf("Channel: <#%s>", renderValue(c.NewValue)))
	}
	if c := findChange(entry, keyMaxAge); c != nil && c.NewValue != nil {
		lines = append(lines, "Max Age: "+limitLabel(c.NewValue, "Permanent"))
	}
	if c := findChange(entry, keyMaxUses); c != nil && c.NewValue != nil {
		lines = append(lines, "Max Uses: "+limitLabel(c.NewValue, "Unlimited"))
	}
	if c := findChange(entry, keyTemporary); c != nil && c.NewValue != nil {
		lines = append(lines, "Temporary: "+renderValue(c.NewValue))
	}
	return lines
}

func limitLabel(v interface{}, unlimited string) string {
	n, ok := toInt(v)
	if !ok {
		return renderValue(v)
	}
	return util.LimitLabel(n, unlimited)
}

func formatAutomod(entry *discordgo.AuditLogEntry) []string {
	opts := optionsOf(entry)

	var lines []string
	if opts.AutoModerationRuleName != "" {
		lines = append(lines, "Rule: "+opts.AutoModerationRuleName)
	}
	if opts.ChannelID != "" {
		lines = append(lines, fmt.Sprintf("Channel: <#%s>", opts.ChannelID))
	}
	return lines
}

// named renders a single "Label: name" line from one change key, reading
// the new value for creations and the old value for deletions.
func named(label, key string, useNew bool) formatFunc {
	return func(entry *discordgo.AuditLogEntry) []string {
		c := findChange(entry, key)
		if c == nil {
			return nil
		}
		v := c.OldValue
		if useNew {
			v = c.NewValue
		}
		if v == nil {
			return nil
		}
		return []string{label + ": " + renderValue(v)}
	}
}
