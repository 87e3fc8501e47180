package normalizer

import (
	"go-audit-relay/internal/models"

	"github.com/bwmarrin/discordgo"
)

var verificationLevels = map[discordgo.VerificationLevel]string{
	0: "None",
	1: "Low",
	2: "Medium",
	3: "High",
	4: "Very High",
}

var contentFilters = map[discordgo.ExplicitContentFilterLevel]string{
	0: "Disabled",
	1: "Members Without Roles",
	2: "All Members",
}

var notificationLevels = map[discordgo.MessageNotifications]string{
	0: "All Messages",
	1: "Only Mentions",
}

func label[K comparable](names map[K]string, k K) string {
	if name, ok := names[k]; ok {
		return name
	}
	return "Unknown"
}

// GuildUpdate diffs server settings.
func GuildUpdate(before, after *discordgo.Guild) *models.Record {
	if before == nil || after == nil {
		return nil
	}

	var lines []string
	if before.Name != after.Name {
		lines = append(lines, arrow("Server Name", before.Name, after.Name))
	}
	if before.Icon != after.Icon {
		if after.Icon != "" {
			lines = append(lines, "Server Icon: Changed to new icon")
		} else {
			lines = append(lines, "Server Icon: Removed")
		}
	}
	if before.Splash != after.Splash {
		lines = append(lines, "Server Splash: Updated")
	}
	if before.Banner != after.Banner {
		lines = append(lines, "Server Banner: Updated")
	}
	if before.VanityURLCode != after.VanityURLCode {
		lines = append(lines, arrow("Vanity URL", orNone(before.VanityURLCode), orNone(after.VanityURLCode)))
	}
	if before.VerificationLevel != after.VerificationLevel {
		lines = append(lines, arrow("Verification Level",
			label(verificationLevels, before.VerificationLevel), label(verificationLevels, after.VerificationLevel)))
	}
	if before.ExplicitContentFilter != after.ExplicitContentFilter {
		lines = append(lines, arrow("Content Filter",
			label(contentFilters, before.ExplicitContentFilter), label(contentFilters, after.ExplicitContentFilter)))
	}
	if before.DefaultMessageNotifications != after.DefaultMessageNotifications {
		lines = append(lines, arrow("Notifications",
			label(notificationLevels, before.DefaultMessageNotifications), label(notificationLevels, after.DefaultMessageNotifications)))
	}
	if before.OwnerID != after.OwnerID {
		lines = append(lines, arrow("Owner", "<@"+before.OwnerID+">", "<@"+after.OwnerID+">"))
	}

	if len(lines) == 0 {
		return nil
	}
	return record(models.KindGuildUpdate, nil, nil, lines)
}
