package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-audit-relay/internal/audit"
	"go-audit-relay/internal/logging"
	"go-audit-relay/internal/models"
	"go-audit-relay/pkg/util"

	"github.com/bwmarrin/discordgo"
)

// maxFieldValue is Discord's limit for an embed field value.
const maxFieldValue = 1024

type Style struct {
	Color    int
	ImageURL string
}

// Recorder receives the outcome of every publish.
type Recorder interface {
	ObservePublish(kind string, elapsed time.Duration, err error)
}

type Publisher struct {
	api      DiscordAPI
	channels *ChannelResolver
	style    Style
	recorder Recorder
}

func NewPublisher(api DiscordAPI, channels *ChannelResolver, style Style, recorder Recorder) *Publisher {
	return &Publisher{api: api, channels: channels, style: style, recorder: recorder}
}

// Publish resolves the audit channel and sends one message for rec.
// Failures are returned, never retried.
func (p *Publisher) Publish(ctx context.Context, guildID string, rec *models.Record) (err error) {
	if rec == nil {
		return nil
	}
	start := time.Now()
	defer func() {
		if p.recorder != nil {
			p.recorder.ObservePublish(rec.Kind.String(), time.Since(start), err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	channelID, err := p.channels.Resolve(guildID)
	if err != nil {
		return fmt.Errorf("publish %s: %w", rec.Kind, err)
	}

	if _, err = p.api.ChannelMessageSendComplex(channelID, Render(rec, p.style)); err != nil {
		p.channels.Forget(channelID)
		return fmt.Errorf("publish %s to %s: %w", rec.Kind, channelID, err)
	}

	logging.Debug("Published %s (%s) in %dms", rec.Kind, rec.ID, util.ElapsedMs(start))
	return nil
}

// ActionText is the Action field body: the display name followed by one
// line per detail.
func ActionText(rec *models.Record) string {
	details := audit.NoDetails
	if len(rec.Details) > 0 {
		details = strings.Join(rec.Details, "\n")
	}
	return util.Truncate(rec.DisplayName+"\n"+details, maxFieldValue)
}

// Render builds the message for rec: an optional banner image embed, then
// the text embed.
func Render(rec *models.Record, style Style) *discordgo.MessageSend {
	var embeds []*discordgo.MessageEmbed

	if style.ImageURL != "" {
		embeds = append(embeds, &discordgo.MessageEmbed{
			Image: &discordgo.MessageEmbedImage{URL: style.ImageURL},
		})
	}

	embeds = append(embeds, &discordgo.MessageEmbed{
		Color: style.Color,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Community Member:",
				Value:  rec.ActorName(),
				Inline: true,
			},
			{
				Name:   "Action:",
				Value:  ActionText(rec),
				Inline: true,
			},
			{
				Name:   "Timestamp:",
				Value:  util.Timestamp(rec.OccurredAt),
				Inline: false,
			},
		},
		Timestamp: rec.OccurredAt.Format(time.RFC3339),
	})

	return &discordgo.MessageSend{Embeds: embeds}
}
