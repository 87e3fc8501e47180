package commands

import "github.com/bwmarrin/discordgo"

const (
	cmdStatus = "auditstatus"
	cmdPing   = "ping"
)

var manageGuild int64 = discordgo.PermissionManageGuild

// GetAllCommands returns all application commands
func GetAllCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:                     cmdStatus,
			Description:              "Show audit relay status",
			DefaultMemberPermissions: &manageGuild,
		},
		{
			Name:        cmdPing,
			Description: "Check gateway and API latency",
		},
	}
}
