// Package notifier renders audit records into embeds and delivers them to
// the guild's audit channel.
package notifier

import (
	"github.com/bwmarrin/discordgo"
)

// DiscordAPI is the subset of the Discord client the notifier uses, so
// tests can run without a gateway session.
type DiscordAPI interface {
	GuildChannels(guildID string) ([]*discordgo.Channel, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)
}
