package bot

import (
	"github.com/bwmarrin/discordgo"
)

// RESTAdapter narrows the discordgo session to the calls the notifier and
// reconciler make, reading from the state cache where it can.
type RESTAdapter struct {
	s       *discordgo.Session
	guildID string
}

func NewRESTAdapter(s *discordgo.Session, guildID string) *RESTAdapter {
	return &RESTAdapter{s: s, guildID: guildID}
}

func (a *RESTAdapter) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	if a.s.State != nil {
		if g, err := a.s.State.Guild(guildID); err == nil && len(g.Channels) > 0 {
			return g.Channels, nil
		}
	}
	return a.s.GuildChannels(guildID)
}

func (a *RESTAdapter) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return a.s.GuildChannelCreateComplex(guildID, data)
}

func (a *RESTAdapter) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	return a.s.ChannelMessageSendComplex(channelID, data)
}

func (a *RESTAdapter) GuildAuditLog(guildID string, actionType discordgo.AuditLogAction, limit int) (*discordgo.GuildAuditLog, error) {
	return a.s.GuildAuditLog(guildID, "", "", int(actionType), limit)
}

// User resolves an audit actor, trying the cached member of the configured
// guild before a REST call.
func (a *RESTAdapter) User(userID string) (*discordgo.User, error) {
	if a.s.State != nil {
		if m, err := a.s.State.Member(a.guildID, userID); err == nil && m.User != nil {
			return m.User, nil
		}
	}
	return a.s.User(userID)
}
