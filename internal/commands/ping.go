package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

func latencyColor(avg time.Duration) int {
	switch {
	case avg < 30*time.Millisecond:
		return 0x00FF00
	case avg < 60*time.Millisecond:
		return 0xFFFF00
	case avg < 120*time.Millisecond:
		return 0xFFA500
	default:
		return 0xFF0000
	}
}

// handlePing reports the gateway heartbeat and one REST round trip.
func handlePing(s Responder, i *discordgo.InteractionCreate) error {
	start := time.Now()

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		return err
	}

	apiStart := time.Now()
	_, apiErr := s.Channel(i.ChannelID)
	apiLatency := time.Since(apiStart)

	embed := pingEmbed(s.HeartbeatLatency(), apiLatency, time.Since(start), apiErr)

	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	return err
}

func pingEmbed(ws, api, response time.Duration, apiErr error) *discordgo.MessageEmbed {
	apiValue := fmt.Sprintf("`%dms`", api.Milliseconds())
	if apiErr != nil {
		apiValue = "`unreachable`"
	}

	return &discordgo.MessageEmbed{
		Title: "🏓 Pong!",
		Color: latencyColor((ws + api) / 2),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "⚡ Gateway", Value: fmt.Sprintf("`%dms`", ws.Milliseconds()), Inline: true},
			{Name: "📡 API", Value: apiValue, Inline: true},
			{Name: "🔄 Response", Value: fmt.Sprintf("`%dms`", response.Milliseconds()), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
