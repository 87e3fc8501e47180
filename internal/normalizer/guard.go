// Package normalizer turns live gateway events into audit Records by
// diffing before/after snapshots against a fixed list of watched fields.
package normalizer

import (
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

// Guard keeps the relay scoped to one guild and away from its own actions.
type Guard struct {
	guildID string
	selfID  atomic.Value
}

func NewGuard(guildID string) *Guard {
	g := &Guard{guildID: guildID}
	g.selfID.Store("")
	return g
}

// SetSelf records the relay's own user ID once the session is ready.
func (g *Guard) SetSelf(id string) {
	g.selfID.Store(id)
}

func (g *Guard) Self() string {
	return g.selfID.Load().(string)
}

func (g *Guard) GuildID() string {
	return g.guildID
}

func (g *Guard) InScope(guildID string) bool {
	return guildID != "" && guildID == g.guildID
}

func (g *Guard) IsSelf(userID string) bool {
	self := g.Self()
	return self != "" && userID == self
}

// Allow accepts an event from the configured guild not performed by the relay.
func (g *Guard) Allow(guildID, actorID string) bool {
	return g.InScope(guildID) && !g.IsSelf(actorID)
}

// AllowAuthor additionally drops bot authors, which keeps message logging
// free of feedback loops with other bots.
func (g *Guard) AllowAuthor(guildID string, author *discordgo.User) bool {
	if !g.InScope(guildID) {
		return false
	}
	if author == nil {
		return true
	}
	return !author.Bot && !g.IsSelf(author.ID)
}
