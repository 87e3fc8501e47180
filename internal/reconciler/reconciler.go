// Package reconciler decides whether a member removal was a kick or a
// voluntary leave by looking for a matching kick entry in the audit log.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-audit-relay/internal/audit"
	"go-audit-relay/internal/models"
	"go-audit-relay/internal/normalizer"

	"github.com/bwmarrin/discordgo"
)

// ErrAbandoned is returned when the context ends during the settle delay.
// The removal is then never classified and nothing is published for it.
var ErrAbandoned = errors.New("reconciler: removal abandoned before lookup")

// AuditLogSource is the single REST call the reconciler needs.
type AuditLogSource interface {
	GuildAuditLog(guildID string, actionType discordgo.AuditLogAction, limit int) (*discordgo.GuildAuditLog, error)
}

type Config struct {
	// Delay gives the platform time to write the audit entry.
	Delay time.Duration
	// Limit is how many recent kick entries are fetched.
	Limit int
	// Window bounds how old a matching entry may be.
	Window time.Duration
}

func DefaultConfig() Config {
	return Config{
		Delay:  500 * time.Millisecond,
		Limit:  10,
		Window: 15 * time.Second,
	}
}

type Reconciler struct {
	source  AuditLogSource
	cfg     Config
	matcher *Matcher
}

func New(source AuditLogSource, cfg Config) *Reconciler {
	def := DefaultConfig()
	if cfg.Delay < 0 {
		cfg.Delay = def.Delay
	}
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	return &Reconciler{
		source:  source,
		cfg:     cfg,
		matcher: NewMatcher(cfg.Window),
	}
}

// Resolve runs the removal workflow to a terminal state. A failed lookup is
// returned as an error with the removal still pending.
func (r *Reconciler) Resolve(ctx context.Context, guildID string, m *discordgo.Member) (*Removal, error) {
	if m == nil || m.User == nil {
		return nil, fmt.Errorf("reconciler: removal without a user")
	}

	removal := NewRemoval(m)

	if err := r.wait(ctx); err != nil {
		return removal, err
	}

	log, err := r.source.GuildAuditLog(guildID, audit.ActionMemberKick, r.cfg.Limit)
	if err != nil {
		return removal, fmt.Errorf("reconciler: audit log lookup for %s: %w", m.User.ID, err)
	}

	entry := r.matcher.Match(log, m.User.ID, time.Now())
	if entry == nil {
		removal.Advance(StateLeave, nil, nil)
		return removal, nil
	}

	removal.Advance(StateKick, entry, FindUser(log, entry.UserID))
	return removal, nil
}

func (r *Reconciler) wait(ctx context.Context) error {
	if r.cfg.Delay == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(r.cfg.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrAbandoned, ctx.Err())
	}
}

// Record builds the audit record for a resolved removal.
func (rm *Removal) Record() *models.Record {
	target := normalizer.MemberIdentity(rm.Member)

	switch rm.State {
	case StateKick:
		reason := "No reason provided"
		if rm.Entry != nil && rm.Entry.Reason != "" {
			reason = rm.Entry.Reason
		}
		actor := normalizer.UserIdentity(rm.Kicker)
		if actor == nil && rm.Entry != nil && rm.Entry.UserID != "" {
			actor = &models.Identity{ID: rm.Entry.UserID}
		}
		lines := []string{"Reason: " + reason, "User ID: " + rm.Member.User.ID}
		return models.NewRecord(models.KindMemberKick, audit.DisplayNameFor(models.KindMemberKick), actor, target, lines)
	case StateLeave:
		lines := []string{"User ID: " + rm.Member.User.ID}
		return models.NewRecord(models.KindMemberLeave, audit.DisplayNameFor(models.KindMemberLeave), target, target, lines)
	default:
		return nil
	}
}
