package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

const statusColor = 0x2B2D31

// StatusSnapshot is everything /auditstatus renders.
type StatusSnapshot struct {
	GuildID     string
	ChannelID   string
	ChannelName string
	Uptime      time.Duration
	Published   uint64
	Events      uint64
	EventRate   float64
	System      *SystemStats
}

func (h *Handler) snapshot() StatusSnapshot {
	snap := StatusSnapshot{
		GuildID:     h.guildID,
		ChannelName: h.channels.Name(),
		Uptime:      h.counters.Uptime(),
		Published:   h.counters.Published(),
		Events:      h.counters.EventsReceivedTotal(),
		EventRate:   h.counters.IngressRate(),
	}
	if id, ok := h.channels.Cached(h.guildID); ok {
		snap.ChannelID = id
	}
	if h.system != nil {
		snap.System = h.system()
	}
	return snap
}

func (h *Handler) handleStatus(s Responder, i *discordgo.InteractionCreate) error {
	embed := statusEmbed(h.snapshot())

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func statusEmbed(snap StatusSnapshot) *discordgo.MessageEmbed {
	channel := fmt.Sprintf("Not resolved yet (`%s`)", snap.ChannelName)
	if snap.ChannelID != "" {
		channel = fmt.Sprintf("<#%s>", snap.ChannelID)
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Server", Value: fmt.Sprintf("`%s`", snap.GuildID), Inline: true},
		{Name: "Audit Channel", Value: channel, Inline: true},
		{Name: "Uptime", Value: formatDuration(snap.Uptime), Inline: true},
		{Name: "Records Published", Value: humanize.Comma(int64(snap.Published)), Inline: true},
		{Name: "Events Received", Value: humanize.Comma(int64(snap.Events)), Inline: true},
		{Name: "Event Rate", Value: fmt.Sprintf("%.2f/s", snap.EventRate), Inline: true},
	}
	if snap.System != nil {
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: "Host", Value: snap.System.hostField()},
			&discordgo.MessageEmbedField{Name: "Process", Value: snap.System.processField()},
		)
	}

	return &discordgo.MessageEmbed{
		Title:       "Audit Relay Status",
		Description: "Live relay counters since the last restart.",
		Color:       statusColor,
		Fields:      fields,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}
