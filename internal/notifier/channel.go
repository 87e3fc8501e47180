package notifier

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go-audit-relay/internal/logging"

	"github.com/bwmarrin/discordgo"
)

var ErrNoChannel = errors.New("notifier: audit channel unavailable")

// ChannelResolver finds the audit channel by name, creating it when the
// guild has none.
type ChannelResolver struct {
	api   DiscordAPI
	name  string
	topic string
	self  func() string

	mu      sync.Mutex
	cached  map[string]string
	created map[string]bool
}

// NewChannelResolver takes self to look up the relay's user ID lazily; it is
// only known once the session is ready.
func NewChannelResolver(api DiscordAPI, name, topic string, self func() string) *ChannelResolver {
	return &ChannelResolver{
		api:     api,
		name:    name,
		topic:   topic,
		self:    self,
		cached:  make(map[string]string),
		created: make(map[string]bool),
	}
}

func (r *ChannelResolver) Name() string {
	return r.name
}

// Resolve returns the audit channel ID for guildID. The lock is held across
// the lookup so two concurrent publishes cannot both create the channel.
func (r *ChannelResolver) Resolve(guildID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.cached[guildID]; ok {
		return id, nil
	}

	channels, err := r.api.GuildChannels(guildID)
	if err != nil {
		return "", fmt.Errorf("list channels: %w", err)
	}

	if ch := r.match(channels); ch != nil {
		r.cached[guildID] = ch.ID
		return ch.ID, nil
	}

	ch, err := r.api.GuildChannelCreateComplex(guildID, r.createData(guildID))
	if err != nil {
		return "", fmt.Errorf("%w: create %q: %v", ErrNoChannel, r.name, err)
	}
	if ch == nil || ch.ID == "" {
		return "", ErrNoChannel
	}

	logging.Info("Created audit channel: %s", ch.Name)
	r.cached[guildID] = ch.ID
	r.created[ch.ID] = true
	return ch.ID, nil
}

// Created reports whether the resolver itself created channelID. It waits
// for an in-flight Resolve, so a create event racing the REST reply still
// sees the channel.
func (r *ChannelResolver) Created(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created[channelID]
}

// Forget drops a cached channel, e.g. after it was deleted.
func (r *ChannelResolver) Forget(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for guildID, id := range r.cached {
		if id == channelID {
			delete(r.cached, guildID)
		}
	}
}

// Cached reports the resolved channel for guildID without any lookup.
func (r *ChannelResolver) Cached(guildID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.cached[guildID]
	return id, ok
}

// match prefers an exact name, then any text channel whose name mentions
// both "audit" and "logistic".
func (r *ChannelResolver) match(channels []*discordgo.Channel) *discordgo.Channel {
	var fuzzy *discordgo.Channel
	for _, ch := range channels {
		if ch == nil || ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if ch.Name == r.name {
			return ch
		}
		lower := strings.ToLower(ch.Name)
		if fuzzy == nil && strings.Contains(lower, "audit") && strings.Contains(lower, "logistic") {
			fuzzy = ch
		}
	}
	return fuzzy
}

func (r *ChannelResolver) createData(guildID string) discordgo.GuildChannelCreateData {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			// @everyone shares the guild's ID
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionSendMessages,
		},
	}
	if self := r.self(); self != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    self,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionSendMessages | discordgo.PermissionViewChannel | discordgo.PermissionEmbedLinks,
		})
	}

	return discordgo.GuildChannelCreateData{
		Name:                 r.name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                r.topic,
		PermissionOverwrites: overwrites,
	}
}
