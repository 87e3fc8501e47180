package bot

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Mirror keeps the before-images the gateway does not deliver. The session
// state is already updated by the time a handler runs, so the router swaps
// each new snapshot in here and diffs against what comes back out.
type Mirror struct {
	mu       sync.Mutex
	guild    *discordgo.Guild
	roles    map[string]*discordgo.Role
	channels map[string]*discordgo.Channel
	members  map[string]*discordgo.Member
	emojis   []*discordgo.Emoji
	stickers []*discordgo.Sticker
}

func NewMirror() *Mirror {
	return &Mirror{
		roles:    make(map[string]*discordgo.Role),
		channels: make(map[string]*discordgo.Channel),
		members:  make(map[string]*discordgo.Member),
	}
}

// guildMeta copies g without its entity lists.
func guildMeta(g *discordgo.Guild) *discordgo.Guild {
	meta := *g
	meta.Roles = nil
	meta.Channels = nil
	meta.Members = nil
	meta.Emojis = nil
	meta.Stickers = nil
	meta.Presences = nil
	meta.VoiceStates = nil
	meta.Threads = nil
	return &meta
}

// Seed replaces everything with the snapshot from a guild create.
func (m *Mirror) Seed(g *discordgo.Guild) {
	if g == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.guild = guildMeta(g)

	m.roles = make(map[string]*discordgo.Role, len(g.Roles))
	for _, r := range g.Roles {
		if r != nil {
			cp := *r
			m.roles[r.ID] = &cp
		}
	}

	m.channels = make(map[string]*discordgo.Channel, len(g.Channels))
	for _, ch := range g.Channels {
		if ch != nil {
			cp := *ch
			m.channels[ch.ID] = &cp
		}
	}

	m.members = make(map[string]*discordgo.Member, len(g.Members))
	for _, mem := range g.Members {
		if mem != nil && mem.User != nil {
			cp := *mem
			m.members[mem.User.ID] = &cp
		}
	}

	m.emojis = append([]*discordgo.Emoji(nil), g.Emojis...)
	m.stickers = append([]*discordgo.Sticker(nil), g.Stickers...)
}

// Seeded reports whether a guild snapshot has been loaded. Expression list
// diffs are meaningless before that.
func (m *Mirror) Seeded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.guild != nil
}

func (m *Mirror) SwapGuild(g *discordgo.Guild) *discordgo.Guild {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.guild
	m.guild = guildMeta(g)
	return before
}

func (m *Mirror) Role(id string) *discordgo.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roles[id]
}

func (m *Mirror) SwapRole(r *discordgo.Role) *discordgo.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.roles[r.ID]
	cp := *r
	m.roles[r.ID] = &cp
	return before
}

func (m *Mirror) RemoveRole(id string) *discordgo.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.roles[id]
	delete(m.roles, id)
	return before
}

func (m *Mirror) Channel(id string) *discordgo.Channel {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.channels[id]
}

func (m *Mirror) SwapChannel(ch *discordgo.Channel) *discordgo.Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.channels[ch.ID]
	cp := *ch
	m.channels[ch.ID] = &cp
	return before
}

func (m *Mirror) RemoveChannel(id string) *discordgo.Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.channels[id]
	delete(m.channels, id)
	return before
}

func (m *Mirror) Member(userID string) *discordgo.Member {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.members[userID]
}

func (m *Mirror) SwapMember(mem *discordgo.Member) *discordgo.Member {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.members[mem.User.ID]
	cp := *mem
	m.members[mem.User.ID] = &cp
	return before
}

func (m *Mirror) RemoveMember(userID string) *discordgo.Member {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.members[userID]
	delete(m.members, userID)
	return before
}

func (m *Mirror) SwapEmojis(list []*discordgo.Emoji) []*discordgo.Emoji {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.emojis
	m.emojis = append([]*discordgo.Emoji(nil), list...)
	return before
}

func (m *Mirror) SwapStickers(list []*discordgo.Sticker) []*discordgo.Sticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.stickers
	m.stickers = append([]*discordgo.Sticker(nil), list...)
	return before
}

// AddMembers stores members from a chunk without replacing ones already
// seen through a gateway event, which are at least as fresh.
func (m *Mirror) AddMembers(guildID string, list []*discordgo.Member) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	added := 0
	for _, mem := range list {
		if mem == nil || mem.User == nil {
			continue
		}
		if _, ok := m.members[mem.User.ID]; ok {
			continue
		}
		cp := *mem
		if cp.GuildID == "" {
			cp.GuildID = guildID
		}
		m.members[mem.User.ID] = &cp
		added++
	}
	return added
}
