// Package commands serves the relay's slash commands.
package commands

import (
	"fmt"
	"time"

	"go-audit-relay/internal/logging"

	"github.com/bwmarrin/discordgo"
)

// Responder is the slice of the discordgo session the commands use.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	HeartbeatLatency() time.Duration
}

// AuditChannels reports where records are published.
type AuditChannels interface {
	Name() string
	Cached(guildID string) (string, bool)
}

// Counters are the relay totals shown by /auditstatus.
type Counters interface {
	Published() uint64
	EventsReceivedTotal() uint64
	IngressRate() float64
	Uptime() time.Duration
}

type Handler struct {
	guildID  string
	channels AuditChannels
	counters Counters
	system   func() *SystemStats
}

func NewHandler(guildID string, channels AuditChannels, counters Counters) *Handler {
	return &Handler{
		guildID:  guildID,
		channels: channels,
		counters: counters,
		system:   gatherSystemStats,
	}
}

// HandleInteraction is registered with the session.
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.dispatch(s, i)
}

func (h *Handler) dispatch(s Responder, i *discordgo.InteractionCreate) {
	if i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID != h.guildID {
		respondError(s, i, "this bot only serves its configured server")
		return
	}

	data := i.ApplicationCommandData()

	var err error
	switch data.Name {
	case cmdStatus:
		err = h.handleStatus(s, i)
	case cmdPing:
		err = handlePing(s, i)
	default:
		err = fmt.Errorf("unknown command: %s", data.Name)
	}

	if err != nil {
		logging.Error("Command error [%s]: %v", data.Name, err)
		respondError(s, i, err.Error())
	}
}

// respondError sends an ephemeral error message
func respondError(s Responder, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ Error: %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logging.Warn("Failed to send command error: %v", err)
	}
}
