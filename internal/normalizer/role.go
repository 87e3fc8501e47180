package normalizer

import (
	"fmt"
	"strconv"

	"go-audit-relay/internal/models"

	"github.com/bwmarrin/discordgo"
)

func colorHex(c int) string {
	return fmt.Sprintf("#%06x", c)
}

func roleTarget(r *discordgo.Role) *models.Identity {
	return &models.Identity{ID: r.ID, Username: r.Name}
}

func RoleCreate(r *discordgo.Role) *models.Record {
	if r == nil {
		return nil
	}
	lines := []string{
		"Role: <@&" + r.ID + ">",
		"Color: " + colorHex(r.Color),
		"Permissions: " + strconv.FormatInt(r.Permissions, 10),
	}
	return record(models.KindRoleCreate, nil, roleTarget(r), lines)
}

// RoleDelete reports a deleted role. The gateway only sends the ID, so
// cached is whatever copy the caller still holds and may be nil.
func RoleDelete(roleID string, cached *discordgo.Role) *models.Record {
	if cached == nil {
		return record(models.KindRoleDelete, nil, &models.Identity{ID: roleID}, []string{"Role ID: " + roleID})
	}
	lines := []string{
		"Role Name: " + cached.Name,
		"Role ID: " + roleID,
		"Color: " + colorHex(cached.Color),
	}
	return record(models.KindRoleDelete, nil, roleTarget(cached), lines)
}

// RoleUpdate ignores position, which shifts on every reorder.
func RoleUpdate(before, after *discordgo.Role) *models.Record {
	if before == nil || after == nil {
		return nil
	}

	var lines []string
	if before.Name != after.Name {
		lines = append(lines, arrow("Name", before.Name, after.Name))
	}
	if before.Color != after.Color {
		lines = append(lines, arrow("Color", colorHex(before.Color), colorHex(after.Color)))
	}
	if before.Hoist != after.Hoist {
		lines = append(lines, arrow("Hoist", strconv.FormatBool(before.Hoist), strconv.FormatBool(after.Hoist)))
	}
	if before.Mentionable != after.Mentionable {
		lines = append(lines, arrow("Mentionable", strconv.FormatBool(before.Mentionable), strconv.FormatBool(after.Mentionable)))
	}
	if before.Permissions != after.Permissions {
		lines = append(lines, arrow("Permissions",
			strconv.FormatInt(before.Permissions, 10), strconv.FormatInt(after.Permissions, 10)))
	}

	if len(lines) == 0 {
		return nil
	}
	return record(models.KindRoleUpdate, nil, roleTarget(after), lines)
}
