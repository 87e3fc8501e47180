package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the minimal view of a user, role or channel needed to render a Record.
type Identity struct {
	ID       string
	Username string
	Nick     string
	Bot      bool
}

// DisplayName prefers the guild nickname, then the username.
func (i *Identity) DisplayName() string {
	if i == nil {
		return "Unknown"
	}
	if i.Nick != "" {
		return i.Nick
	}
	if i.Username != "" {
		return i.Username
	}
	return "Unknown"
}

// Record is one loggable action. It is built once per event and consumed by a
// single publish call.
type Record struct {
	ID          string
	Actor       *Identity
	Kind        ActionKind
	DisplayName string
	Target      *Identity
	Details     []string
	OccurredAt  time.Time
}

func NewRecord(kind ActionKind, displayName string, actor, target *Identity, details []string) *Record {
	return &Record{
		ID:          uuid.NewString(),
		Actor:       actor,
		Kind:        kind,
		DisplayName: displayName,
		Target:      target,
		Details:     details,
		OccurredAt:  time.Now(),
	}
}

func (r *Record) ActorName() string {
	return r.Actor.DisplayName()
}
