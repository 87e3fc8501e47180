package util

import (
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// SnowflakeTime returns the creation time encoded in a Discord ID.
func SnowflakeTime(id string) (time.Time, bool) {
	t, err := discordgo.SnowflakeTimestamp(id)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Truncate cuts s to at most max runes, appending an ellipsis when it cuts.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}

// LimitLabel renders a count where zero or less means "no limit".
func LimitLabel(n int64, unlimited string) string {
	if n <= 0 {
		return unlimited
	}
	return strconv.FormatInt(n, 10)
}
