package reconciler

import "github.com/bwmarrin/discordgo"

type State uint8

const (
	StatePending State = iota
	StateKick
	StateLeave
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateKick:
		return "kick"
	case StateLeave:
		return "leave"
	default:
		return "unknown"
	}
}

func (s State) Terminal() bool {
	return s == StateKick || s == StateLeave
}

// Removal is one member removal moving from pending to kick or leave.
type Removal struct {
	State  State
	Member *discordgo.Member
	Entry  *discordgo.AuditLogEntry
	Kicker *discordgo.User
}

func NewRemoval(m *discordgo.Member) *Removal {
	return &Removal{State: StatePending, Member: m}
}

// Advance moves a pending removal to a terminal state. It reports false and
// changes nothing if the removal already left pending or next is not terminal.
func (rm *Removal) Advance(next State, entry *discordgo.AuditLogEntry, kicker *discordgo.User) bool {
	if rm.State != StatePending || !next.Terminal() {
		return false
	}
	rm.State = next
	rm.Entry = entry
	rm.Kicker = kicker
	return true
}
