package bot

import (
	"fmt"
	"time"

	"go-audit-relay/internal/config"
	"go-audit-relay/internal/logging"
	"go-audit-relay/internal/normalizer"

	"github.com/bwmarrin/discordgo"
)

// presenceSuffix is appended to the configured presence text.
const presenceSuffix = " | Audit Logger"

type Session struct {
	discord *discordgo.Session
	guard   *normalizer.Guard
	cfg     config.DiscordConfig

	commands []*discordgo.ApplicationCommand
}

// Initialize creates the Discord session. Presences are the only privileged
// intent the relay never reads.
func Initialize(cfg *config.Config, guard *normalizer.Guard) (*Session, error) {
	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsAll &^ discordgo.IntentGuildPresences
	dg.State.MaxMessageCount = cfg.Audit.MessageCacheSize
	dg.State.TrackPresences = false

	session := &Session{
		discord: dg,
		guard:   guard,
		cfg:     cfg.Discord,
	}
	dg.AddHandler(safe("ready", session.onReady))
	dg.AddHandler(safe("guild_join", session.onGuildJoin))

	return session, nil
}

func (s *Session) GetDiscord() *discordgo.Session {
	return s.discord
}

// SetCommands stores the slash commands registered on every ready.
func (s *Session) SetCommands(cmds []*discordgo.ApplicationCommand) {
	s.commands = cmds
}

func (s *Session) Connect() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	logging.Info("Discord bot connected successfully")
	return nil
}

func (s *Session) Close() error {
	if s.discord != nil {
		return s.discord.Close()
	}
	return nil
}

func (s *Session) AddHandler(handler interface{}) func() {
	return s.discord.AddHandler(handler)
}

// BotName is the relay's username, or "" before the first ready.
func (s *Session) BotName() string {
	if s.discord.State == nil || s.discord.State.User == nil {
		return ""
	}
	return s.discord.State.User.Username
}

// LastHeartbeat feeds the gateway probe of the watchdog.
func (s *Session) LastHeartbeat() time.Time {
	s.discord.RLock()
	defer s.discord.RUnlock()
	return s.discord.LastHeartbeatAck
}

// HeartbeatLatency is the round trip of the last gateway heartbeat.
func (s *Session) HeartbeatLatency() time.Duration {
	return s.discord.HeartbeatLatency()
}

// RequestMembers asks the gateway for every member of guildID. The members
// arrive as chunk events.
func (s *Session) RequestMembers(guildID string) error {
	if err := s.discord.RequestGuildMembers(guildID, "", 0, "", false); err != nil {
		return fmt.Errorf("request members of %s: %w", guildID, err)
	}
	return nil
}

// RegisterCommands overwrites the guild's slash commands in one call.
func (s *Session) RegisterCommands(guildID string, commands []*discordgo.ApplicationCommand) error {
	if len(commands) == 0 {
		return nil
	}
	logging.Info("Registering %d slash commands...", len(commands))

	registered, err := s.discord.ApplicationCommandBulkOverwrite(s.discord.State.User.ID, guildID, commands)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	for _, cmd := range registered {
		logging.Info("Registered command: /%s", cmd.Name)
	}
	return nil
}

func (s *Session) onReady(ds *discordgo.Session, r *discordgo.Ready) {
	s.guard.SetSelf(r.User.ID)
	logging.Info("Logged in as %s (%s)", r.User.Username, r.User.ID)

	if err := s.RegisterCommands(s.cfg.GuildID, s.commands); err != nil {
		logging.Error("Error registering commands: %v", err)
	}

	if err := ds.UpdateGameStatus(0, s.cfg.Presence+presenceSuffix); err != nil {
		logging.Warn("Failed to set presence: %v", err)
	}

	if s.cfg.LeaveForeignGuilds {
		for _, g := range r.Guilds {
			s.leaveIfForeign(ds, g.ID)
		}
	}
}

func (s *Session) onGuildJoin(ds *discordgo.Session, g *discordgo.GuildCreate) {
	if s.cfg.LeaveForeignGuilds {
		s.leaveIfForeign(ds, g.ID)
	}
}

func (s *Session) leaveIfForeign(ds *discordgo.Session, guildID string) {
	if s.guard.InScope(guildID) {
		return
	}
	if err := ds.GuildLeave(guildID); err != nil {
		logging.Error("Failed to leave guild %s: %v", guildID, err)
		return
	}
	logging.Info("Left unauthorized guild %s", guildID)
}
