package normalizer

import (
	"fmt"
	"strings"
	"time"

	"go-audit-relay/internal/models"
	"go-audit-relay/pkg/util"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

// MemberJoin reports a new member along with the age of their account.
func MemberJoin(m *discordgo.Member) *models.Record {
	if m == nil || m.User == nil {
		return nil
	}

	var lines []string
	if created, ok := util.SnowflakeTime(m.User.ID); ok {
		lines = append(lines,
			fmt.Sprintf("Account Created: %s (%s)", util.Timestamp(created), util.RelativeTimestamp(created)),
			"Account Age: "+strings.TrimSpace(humanize.RelTime(created, time.Now(), "", "")),
		)
	}
	lines = append(lines, "User ID: "+m.User.ID)

	id := MemberIdentity(m)
	return record(models.KindMemberJoin, id, id, lines)
}

func nickOrName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User != nil {
		return m.User.Username
	}
	return ""
}

func roleDiff(before, after []string) (added, removed []string) {
	had := make(map[string]bool, len(before))
	for _, r := range before {
		had[r] = true
	}
	has := make(map[string]bool, len(after))
	for _, r := range after {
		has[r] = true
		if !had[r] {
			added = append(added, r)
		}
	}
	for _, r := range before {
		if !has[r] {
			removed = append(removed, r)
		}
	}
	return added, removed
}

func roleMentions(ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = "<@&" + id + ">"
	}
	return strings.Join(out, ", ")
}

// MemberUpdate watches nickname and roles. It returns nil when neither
// changed or when no before-image is available. Timeouts are reported from
// the audit log instead.
func MemberUpdate(before, after *discordgo.Member) *models.Record {
	if before == nil || after == nil {
		return nil
	}

	var lines []string

	if before.Nick != after.Nick {
		lines = append(lines, arrow("Nickname", nickOrName(before), nickOrName(after)))
	}

	added, removed := roleDiff(before.Roles, after.Roles)
	if len(added) > 0 {
		lines = append(lines, "Roles Added: "+roleMentions(added))
	}
	if len(removed) > 0 {
		lines = append(lines, "Roles Removed: "+roleMentions(removed))
	}

	if len(lines) == 0 {
		return nil
	}

	id := MemberIdentity(after)
	return record(models.KindMemberUpdate, id, id, lines)
}
