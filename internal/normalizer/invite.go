package normalizer

import (
	"fmt"
	"strconv"

	"go-audit-relay/internal/models"
	"go-audit-relay/pkg/util"

	"github.com/bwmarrin/discordgo"
)

// InviteCreate reports a new invite. channelID comes from the event since
// the embedded channel object is often partial.
func InviteCreate(inv *discordgo.Invite, channelID string) *models.Record {
	if inv == nil {
		return nil
	}
	if channelID == "" && inv.Channel != nil {
		channelID = inv.Channel.ID
	}

	lines := []string{"Code: " + inv.Code}
	if channelID != "" {
		lines = append(lines, fmt.Sprintf("Channel: <#%s>", channelID))
	}
	lines = append(lines,
		"Max Age: "+util.LimitLabel(int64(inv.MaxAge), "Permanent"),
		"Max Uses: "+util.LimitLabel(int64(inv.MaxUses), "Unlimited"),
		"Temporary: "+strconv.FormatBool(inv.Temporary),
	)

	return record(models.KindInviteCreate, UserIdentity(inv.Inviter), nil, lines)
}
