package normalizer

import (
	"go-audit-relay/internal/models"

	"github.com/bwmarrin/discordgo"
)

// named is the ID/name pair shared by emojis and stickers.
type named struct {
	id, name string
}

// diffNamed compares two expression lists by ID and emits one record per
// creation, deletion or rename. Records come out in after-list order for
// creations and renames, then before-list order for deletions.
func diffNamed(before, after []named, create, del, update models.ActionKind, noun string) []*models.Record {
	old := make(map[string]string, len(before))
	for _, n := range before {
		old[n.id] = n.name
	}
	seen := make(map[string]bool, len(after))

	var out []*models.Record
	for _, n := range after {
		seen[n.id] = true
		target := &models.Identity{ID: n.id, Username: n.name}
		prev, existed := old[n.id]
		switch {
		case !existed:
			out = append(out, record(create, nil, target, []string{noun + ": " + n.name}))
		case prev != n.name:
			out = append(out, record(update, nil, target, []string{arrow("Name", prev, n.name)}))
		}
	}
	for _, n := range before {
		if !seen[n.id] {
			target := &models.Identity{ID: n.id, Username: n.name}
			out = append(out, record(del, nil, target, []string{"Deleted " + noun + ": " + n.name}))
		}
	}
	return out
}

func emojiNames(list []*discordgo.Emoji) []named {
	out := make([]named, 0, len(list))
	for _, e := range list {
		if e != nil {
			out = append(out, named{e.ID, e.Name})
		}
	}
	return out
}

func stickerNames(list []*discordgo.Sticker) []named {
	out := make([]named, 0, len(list))
	for _, s := range list {
		if s != nil {
			out = append(out, named{s.ID, s.Name})
		}
	}
	return out
}

// EmojisUpdate turns a full emoji list replacement into per-emoji records.
func EmojisUpdate(before, after []*discordgo.Emoji) []*models.Record {
	return diffNamed(emojiNames(before), emojiNames(after),
		models.KindEmojiCreate, models.KindEmojiDelete, models.KindEmojiUpdate, "Emoji")
}

func StickersUpdate(before, after []*discordgo.Sticker) []*models.Record {
	return diffNamed(stickerNames(before), stickerNames(after),
		models.KindStickerCreate, models.KindStickerDelete, models.KindStickerUpdate, "Sticker")
}
