package normalizer

import (
	"go-audit-relay/internal/audit"
	"go-audit-relay/internal/models"

	"github.com/bwmarrin/discordgo"
)

func UserIdentity(u *discordgo.User) *models.Identity {
	if u == nil {
		return nil
	}
	return &models.Identity{ID: u.ID, Username: u.Username, Bot: u.Bot}
}

func MemberIdentity(m *discordgo.Member) *models.Identity {
	if m == nil {
		return nil
	}
	id := UserIdentity(m.User)
	if id == nil {
		return nil
	}
	id.Nick = m.Nick
	return id
}

func record(kind models.ActionKind, actor, target *models.Identity, lines []string) *models.Record {
	return models.NewRecord(kind, audit.DisplayNameFor(kind), actor, target, lines)
}

// arrow is the one diff line format every normalizer emits.
func arrow(field, before, after string) string {
	return field + ": " + before + " → " + after
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
