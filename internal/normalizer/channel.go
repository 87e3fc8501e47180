package normalizer

import (
	"fmt"
	"strconv"

	"go-audit-relay/internal/models"

	"github.com/bwmarrin/discordgo"
)

var channelTypes = map[discordgo.ChannelType]string{
	0:  "Text",
	2:  "Voice",
	4:  "Category",
	5:  "Announcement",
	10: "Announcement Thread",
	11: "Public Thread",
	12: "Private Thread",
	13: "Stage",
	15: "Forum",
	16: "Media",
}

func categoryName(parent *discordgo.Channel) string {
	if parent == nil || parent.Name == "" {
		return "None"
	}
	return parent.Name
}

func channelTarget(ch *discordgo.Channel) *models.Identity {
	return &models.Identity{ID: ch.ID, Username: ch.Name}
}

// ChannelCreate takes the parent category, when known, to name it.
func ChannelCreate(ch, parent *discordgo.Channel) *models.Record {
	if ch == nil {
		return nil
	}
	lines := []string{
		fmt.Sprintf("Channel: <#%s>", ch.ID),
		"Type: " + label(channelTypes, ch.Type),
		"Category: " + categoryName(parent),
	}
	return record(models.KindChannelCreate, nil, channelTarget(ch), lines)
}

func ChannelDelete(ch, parent *discordgo.Channel) *models.Record {
	if ch == nil {
		return nil
	}
	lines := []string{
		"Channel Name: #" + ch.Name,
		"Type: " + label(channelTypes, ch.Type),
		"Category: " + categoryName(parent),
	}
	return record(models.KindChannelDelete, nil, channelTarget(ch), lines)
}

// ChannelUpdate watches the fields shared by text and voice channels;
// a field that does not apply to a channel type stays zero on both sides.
func ChannelUpdate(before, after *discordgo.Channel) *models.Record {
	if before == nil || after == nil {
		return nil
	}

	var lines []string
	if before.Name != after.Name {
		lines = append(lines, arrow("Name", before.Name, after.Name))
	}
	if before.Position != after.Position {
		lines = append(lines, arrow("Position", strconv.Itoa(before.Position), strconv.Itoa(after.Position)))
	}
	if before.Topic != after.Topic {
		lines = append(lines, arrow("Topic", orNone(before.Topic), orNone(after.Topic)))
	}
	if before.RateLimitPerUser != after.RateLimitPerUser {
		lines = append(lines, arrow("Slowmode",
			strconv.Itoa(before.RateLimitPerUser)+"s", strconv.Itoa(after.RateLimitPerUser)+"s"))
	}
	if before.NSFW != after.NSFW {
		lines = append(lines, arrow("NSFW", strconv.FormatBool(before.NSFW), strconv.FormatBool(after.NSFW)))
	}
	if before.Bitrate != after.Bitrate {
		lines = append(lines, arrow("Bitrate", strconv.Itoa(before.Bitrate), strconv.Itoa(after.Bitrate)))
	}
	if before.UserLimit != after.UserLimit {
		lines = append(lines, arrow("User Limit", strconv.Itoa(before.UserLimit), strconv.Itoa(after.UserLimit)))
	}

	if len(lines) == 0 {
		return nil
	}
	return record(models.KindChannelUpdate, nil, channelTarget(after), lines)
}
