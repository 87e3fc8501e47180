package reconciler

import (
	"time"

	"go-audit-relay/pkg/util"

	"github.com/bwmarrin/discordgo"
)

// Matcher picks the kick entry that belongs to a removal.
type Matcher struct {
	window time.Duration
}

func NewMatcher(window time.Duration) *Matcher {
	return &Matcher{window: window}
}

// Match returns the newest entry targeting targetID whose ID timestamp is no
// older than the window, or nil. Entries arrive newest first.
func (m *Matcher) Match(log *discordgo.GuildAuditLog, targetID string, now time.Time) *discordgo.AuditLogEntry {
	if log == nil || targetID == "" {
		return nil
	}

	for _, entry := range log.AuditLogEntries {
		if entry == nil || entry.TargetID != targetID {
			continue
		}
		if !m.recent(entry.ID, now) {
			continue
		}
		return entry
	}
	return nil
}

// recent also accepts small clock skew where the entry looks newer than now.
func (m *Matcher) recent(entryID string, now time.Time) bool {
	at, ok := util.SnowflakeTime(entryID)
	if !ok {
		return false
	}
	return now.Sub(at) <= m.window
}

// FindUser resolves an actor ID against the users bundled with the log.
func FindUser(log *discordgo.GuildAuditLog, userID string) *discordgo.User {
	if log == nil || userID == "" {
		return nil
	}
	for _, u := range log.Users {
		if u != nil && u.ID == userID {
			return u
		}
	}
	return nil
}
