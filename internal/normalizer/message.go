package normalizer

import (
	"fmt"

	"go-audit-relay/internal/models"
	"go-audit-relay/pkg/util"

	"github.com/bwmarrin/discordgo"
)

const maxContent = 500

func content(s, empty string) string {
	if s == "" {
		return empty
	}
	return util.Truncate(s, maxContent)
}

// MessageDelete reports a deleted message. msg is the cached copy when the
// session had one, otherwise the bare ID-only payload.
func MessageDelete(msg *discordgo.Message) *models.Record {
	if msg == nil {
		return nil
	}

	lines := []string{fmt.Sprintf("Channel: <#%s>", msg.ChannelID)}
	if msg.Author != nil {
		lines = append(lines, "Content: "+content(msg.Content, "(No text content)"))
	}
	lines = append(lines, "Message ID: "+msg.ID)

	var actor *models.Identity
	if msg.Member != nil && msg.Author != nil {
		actor = &models.Identity{ID: msg.Author.ID, Username: msg.Author.Username, Nick: msg.Member.Nick}
	} else {
		actor = UserIdentity(msg.Author)
	}

	return record(models.KindMessageDelete, actor, actor, lines)
}

// MessageEdit reports a content change. Embed unfurls and pin toggles
// arrive as edits with identical content and are suppressed.
func MessageEdit(before, after *discordgo.Message) *models.Record {
	if before == nil || after == nil || before.Content == after.Content {
		return nil
	}

	lines := []string{
		arrow("Content", content(before.Content, "(No content)"), content(after.Content, "(No content)")),
		fmt.Sprintf("Channel: <#%s>", after.ChannelID),
		"Message ID: " + after.ID,
	}

	author := after.Author
	if author == nil {
		author = before.Author
	}
	actor := UserIdentity(author)
	if actor != nil && after.Member != nil {
		actor.Nick = after.Member.Nick
	}

	return record(models.KindMessageEdit, actor, actor, lines)
}
