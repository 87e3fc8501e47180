package audit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	keyName      = "name"
	keyCode      = "code"
	keyChannelID = "channel_id"
	keyMaxAge    = "max_age"
	keyMaxUses   = "max_uses"
	keyTemporary = "temporary"
	keyTimeout   = "communication_disabled_until"
	keyRoleAdd   = "$add"
	keyRoleRm    = "$remove"
)

func changeKey(c *discordgo.AuditLogChange) string {
	if c == nil || c.Key == nil {
		return ""
	}
	return string(*c.Key)
}

func findChange(entry *discordgo.AuditLogEntry, key string) *discordgo.AuditLogChange {
	if entry == nil {
		return nil
	}
	for _, c := range entry.Changes {
		if changeKey(c) == key {
			return c
		}
	}
	return nil
}

// renderValue turns a JSON-decoded change value into display text.
// Lists of objects render their "name" fields when present.
func renderValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if m, ok := item.(map[string]interface{}); ok {
				if name, ok := m["name"].(string); ok && name != "" {
					parts = append(parts, name)
					continue
				}
			}
			parts = append(parts, renderValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// toInt reads a numeric change value. Discord sends numbers as JSON numbers
// but some option fields arrive as strings.
func toInt(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case float64:
		return int64(val), true
	case int:
		return int64(val), true
	case int64:
		return val, true
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// diffLines renders every change as key=value pairs, old values on the
// Before line and new values on the After line.
func diffLines(entry *discordgo.AuditLogEntry) []string {
	if entry == nil {
		return nil
	}

	var before, after []string
	for _, c := range entry.Changes {
		key := changeKey(c)
		if key == "" {
			continue
		}
		if c.OldValue != nil {
			before = append(before, key+"="+renderValue(c.OldValue))
		}
		if c.NewValue != nil {
			after = append(after, key+"="+renderValue(c.NewValue))
		}
	}

	var lines []string
	if len(before) > 0 {
		lines = append(lines, "Before: "+strings.Join(before, ", "))
	}
	if len(after) > 0 {
		lines = append(lines, "After: "+strings.Join(after, ", "))
	}
	return lines
}

// optionsOf returns the entry's optional info, or a zero value when absent.
func optionsOf(entry *discordgo.AuditLogEntry) discordgo.AuditLogOptions {
	if entry == nil || entry.Options == nil {
		return discordgo.AuditLogOptions{}
	}
	return *entry.Options
}
