package util

import (
	"fmt"
	"time"
)

// Timestamp renders t as a Discord timestamp token that each client shows
// in its own timezone.
func Timestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d>", t.Unix())
}

// RelativeTimestamp renders t as "x minutes ago" style token.
func RelativeTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// ElapsedMs returns the milliseconds since start.
func ElapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
