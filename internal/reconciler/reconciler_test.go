package reconciler

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"go-audit-relay/internal/audit"
	"go-audit-relay/internal/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const discordEpochMs = 1420070400000

func snowflakeAt(t time.Time) string {
	return strconv.FormatInt((t.UnixMilli()-discordEpochMs)<<22, 10)
}

type fakeAuditLog struct {
	mu     sync.Mutex
	log    *discordgo.GuildAuditLog
	err    error
	calls  int
	action discordgo.AuditLogAction
	limit  int
}

func (f *fakeAuditLog) GuildAuditLog(guildID string, actionType discordgo.AuditLogAction, limit int) (*discordgo.GuildAuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.action = actionType
	f.limit = limit
	return f.log, f.err
}

func removedMember(id string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id, Username: "user" + id}}
}

func kickEntry(targetID, actorID, reason string, at time.Time) *discordgo.AuditLogEntry {
	action := audit.ActionMemberKick
	return &discordgo.AuditLogEntry{
		ID:         snowflakeAt(at),
		TargetID:   targetID,
		UserID:     actorID,
		Reason:     reason,
		ActionType: &action,
	}
}

func fastConfig() Config {
	return Config{Delay: time.Millisecond, Limit: 10, Window: 15 * time.Second}
}

func TestResolve_Kick(t *testing.T) {
	t.Parallel()

	src := &fakeAuditLog{log: &discordgo.GuildAuditLog{
		AuditLogEntries: []*discordgo.AuditLogEntry{
			kickEntry("7", "99", "", time.Now()),
			kickEntry("5", "42", "spam", time.Now()),
		},
		Users: []*discordgo.User{{ID: "42", Username: "mod"}},
	}}

	r := New(src, fastConfig())
	removal, err := r.Resolve(context.Background(), "100", removedMember("5"))
	require.NoError(t, err)

	assert.Equal(t, StateKick, removal.State)
	require.NotNil(t, removal.Kicker)
	assert.Equal(t, "mod", removal.Kicker.Username)
	assert.Equal(t, audit.ActionMemberKick, src.action)
	assert.Equal(t, 10, src.limit)

	rec := removal.Record()
	require.NotNil(t, rec)
	assert.Equal(t, models.KindMemberKick, rec.Kind)
	assert.Equal(t, "Member Kicked", rec.DisplayName)
	assert.Equal(t, "mod", rec.ActorName())
	assert.Equal(t, []string{"Reason: spam", "User ID: 5"}, rec.Details)
}

func TestResolve_KickWithoutReason(t *testing.T) {
	t.Parallel()

	src := &fakeAuditLog{log: &discordgo.GuildAuditLog{
		AuditLogEntries: []*discordgo.AuditLogEntry{kickEntry("5", "42", "", time.Now())},
	}}

	removal, err := New(src, fastConfig()).Resolve(context.Background(), "100", removedMember("5"))
	require.NoError(t, err)

	rec := removal.Record()
	assert.Equal(t, []string{"Reason: No reason provided", "User ID: 5"}, rec.Details)
	assert.Equal(t, "42", rec.Actor.ID, "actor falls back to the bare entry user id")
}

func TestResolve_Leave(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []*discordgo.AuditLogEntry
	}{
		{"no entries", nil},
		{"other target", []*discordgo.AuditLogEntry{kickEntry("6", "42", "", time.Now())}},
		{"stale kick", []*discordgo.AuditLogEntry{kickEntry("5", "42", "", time.Now().Add(-10*time.Minute))}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := &fakeAuditLog{log: &discordgo.GuildAuditLog{AuditLogEntries: tt.entries}}

			removal, err := New(src, fastConfig()).Resolve(context.Background(), "100", removedMember("5"))
			require.NoError(t, err)
			assert.Equal(t, StateLeave, removal.State)

			rec := removal.Record()
			assert.Equal(t, models.KindMemberLeave, rec.Kind)
			assert.Equal(t, "Member Left", rec.DisplayName)
			assert.Equal(t, "user5", rec.ActorName())
			assert.Equal(t, []string{"User ID: 5"}, rec.Details)
		})
	}
}

func TestResolve_LookupFailure(t *testing.T) {
	t.Parallel()

	src := &fakeAuditLog{err: errors.New("403 Forbidden")}

	removal, err := New(src, fastConfig()).Resolve(context.Background(), "100", removedMember("5"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403 Forbidden")
	assert.Equal(t, StatePending, removal.State)
	assert.Nil(t, removal.Record())
}

func TestResolve_CancelledDuringDelay(t *testing.T) {
	t.Parallel()

	src := &fakeAuditLog{}
	r := New(src, Config{Delay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	removal, err := r.Resolve(ctx, "100", removedMember("5"))
	require.ErrorIs(t, err, ErrAbandoned)
	assert.Equal(t, StatePending, removal.State)
	assert.Zero(t, src.calls)
}

func TestResolve_RejectsMissingUser(t *testing.T) {
	t.Parallel()

	_, err := New(&fakeAuditLog{}, fastConfig()).Resolve(context.Background(), "100", &discordgo.Member{})
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	r := New(&fakeAuditLog{}, Config{Delay: -1})
	assert.Equal(t, DefaultConfig(), r.cfg)
}

func TestRemoval_AdvanceOnce(t *testing.T) {
	t.Parallel()

	rm := NewRemoval(removedMember("5"))
	assert.False(t, rm.Advance(StatePending, nil, nil))
	assert.True(t, rm.Advance(StateLeave, nil, nil))
	assert.False(t, rm.Advance(StateKick, nil, nil))
	assert.Equal(t, StateLeave, rm.State)
	assert.Equal(t, "leave", rm.State.String())
}

func TestMatcher_SkipsUnparseableIDs(t *testing.T) {
	t.Parallel()

	log := &discordgo.GuildAuditLog{AuditLogEntries: []*discordgo.AuditLogEntry{
		{ID: "not-a-snowflake", TargetID: "5"},
		nil,
	}}
	assert.Nil(t, NewMatcher(time.Minute).Match(log, "5", time.Now()))
	assert.Nil(t, NewMatcher(time.Minute).Match(nil, "5", time.Now()))
}
