package bot

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"go-audit-relay/internal/audit"
	"go-audit-relay/internal/logging"
	"go-audit-relay/internal/models"
	"go-audit-relay/internal/normalizer"
	"go-audit-relay/internal/reconciler"
	"go-audit-relay/pkg/util"

	"github.com/bwmarrin/discordgo"
)

// webhookLookupLimit matches how far back a webhooks-update lookup reads.
const webhookLookupLimit = 5

type Publisher interface {
	Publish(ctx context.Context, guildID string, rec *models.Record) error
}

type RemovalResolver interface {
	Resolve(ctx context.Context, guildID string, m *discordgo.Member) (*reconciler.Removal, error)
}

type UserLookup interface {
	User(userID string) (*discordgo.User, error)
}

// MemberRequester asks the gateway for the full member list of a guild.
type MemberRequester interface {
	RequestMembers(guildID string) error
}

type Stats interface {
	EventReceived(event string)
	EventIgnored(reason string)
	ReconcilerOutcome(outcome string)
}

// Ignore reasons reported to Stats.
const (
	ignoreForeignGuild = "foreign_guild"
	ignoreSelf         = "self"
	ignoreBotAuthor    = "bot_author"
	ignoreNoChange     = "no_change"
	ignoreUnclassified = "unclassified"
	ignoreOtherRoute   = "other_route"
	ignoreStale        = "stale"
)

type Deps struct {
	Guard      *normalizer.Guard
	Mirror     *Mirror
	Publisher  Publisher
	Reconciler RemovalResolver
	AuditLog   reconciler.AuditLogSource
	Users      UserLookup
	Members    MemberRequester
	Stats      Stats
	// LookupWindow bounds how old an entry found by a webhook lookup may be.
	LookupWindow time.Duration
	// ChannelDeleted is told about every deleted channel so a cached audit
	// channel can be dropped.
	ChannelDeleted func(channelID string)
	// OwnChannel reports channels the relay created for itself; their
	// creation is not logged.
	OwnChannel func(channelID string) bool
}

// Router turns gateway events into published audit records.
type Router struct {
	ctx  context.Context
	deps Deps

	mu          sync.Mutex
	lastWebhook string
}

func NewRouter(ctx context.Context, deps Deps) *Router {
	if deps.Mirror == nil {
		deps.Mirror = NewMirror()
	}
	if deps.LookupWindow <= 0 {
		deps.LookupWindow = 15 * time.Second
	}
	return &Router{ctx: ctx, deps: deps}
}

// Register adds every handler to the session, each behind a recovery point.
func (r *Router) Register(add func(handler interface{}) func()) {
	add(safe("guild_create", r.onGuildCreate))
	add(safe("members_chunk", r.onMembersChunk))
	add(safe("message_delete", r.onMessageDelete))
	add(safe("message_update", r.onMessageUpdate))
	add(safe("member_add", r.onMemberAdd))
	add(safe("member_remove", r.onMemberRemove))
	add(safe("member_update", r.onMemberUpdate))
	add(safe("guild_update", r.onGuildUpdate))
	add(safe("role_create", r.onRoleCreate))
	add(safe("role_delete", r.onRoleDelete))
	add(safe("role_update", r.onRoleUpdate))
	add(safe("channel_create", r.onChannelCreate))
	add(safe("channel_delete", r.onChannelDelete))
	add(safe("channel_update", r.onChannelUpdate))
	add(safe("invite_create", r.onInviteCreate))
	add(safe("webhooks_update", r.onWebhooksUpdate))
	add(safe("emojis_update", r.onEmojisUpdate))
	add(safe("stickers_update", r.onStickersUpdate))
	add(safe("audit_log_entry", r.onAuditLogEntry))
}

// safe turns a handler panic into an error log.
func safe[E any](name string, fn func(*discordgo.Session, E)) func(*discordgo.Session, E) {
	return func(s *discordgo.Session, e E) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.Critical("Handler %s panicked: %v\n%s", name, rec, debug.Stack())
			}
		}()
		fn(s, e)
	}
}

func (r *Router) received(event string) {
	if r.deps.Stats != nil {
		r.deps.Stats.EventReceived(event)
	}
}

func (r *Router) ignored(reason string) {
	if r.deps.Stats != nil {
		r.deps.Stats.EventIgnored(reason)
	}
}

// inScope applies the guild guard and counts what it drops.
func (r *Router) inScope(guildID string) bool {
	if r.deps.Guard.InScope(guildID) {
		return true
	}
	r.ignored(ignoreForeignGuild)
	return false
}

func (r *Router) publish(guildID string, rec *models.Record) {
	if rec == nil {
		r.ignored(ignoreNoChange)
		return
	}
	if err := r.deps.Publisher.Publish(r.ctx, guildID, rec); err != nil {
		logging.Error("Failed to publish %s (%s): %v", rec.Kind, rec.ID, err)
		return
	}
	logging.Info("Audit log sent: %s by %s", rec.Kind, rec.ActorName())
}

// onGuildCreate seeds the mirror. Large guilds arrive with a partial member
// list, so the rest is requested and merged in by onMembersChunk.
func (r *Router) onGuildCreate(_ *discordgo.Session, e *discordgo.GuildCreate) {
	r.received("guild_create")
	if e.Guild == nil || !r.inScope(e.ID) {
		return
	}
	r.deps.Mirror.Seed(e.Guild)
	logging.Info("Mirrored guild %s: %d roles, %d channels, %d/%d members",
		e.Name, len(e.Roles), len(e.Channels), len(e.Members), e.MemberCount)

	if r.deps.Members == nil || e.MemberCount <= len(e.Members) {
		return
	}
	if err := r.deps.Members.RequestMembers(e.ID); err != nil {
		logging.Error("Failed to request member list: %v", err)
	}
}

func (r *Router) onMembersChunk(_ *discordgo.Session, e *discordgo.GuildMembersChunk) {
	r.received("members_chunk")
	if !r.inScope(e.GuildID) {
		return
	}
	added := r.deps.Mirror.AddMembers(e.GuildID, e.Members)
	logging.Debug("Mirrored member chunk %d/%d: %d members", e.ChunkIndex+1, e.ChunkCount, added)
}

func (r *Router) onMessageDelete(_ *discordgo.Session, e *discordgo.MessageDelete) {
	r.received("message_delete")
	if e.Message == nil || !r.inScope(e.GuildID) {
		return
	}

	msg := e.Message
	if e.BeforeDelete != nil {
		msg = e.BeforeDelete
		if msg.ChannelID == "" {
			msg.ChannelID = e.ChannelID
		}
	}
	if !r.deps.Guard.AllowAuthor(e.GuildID, msg.Author) {
		r.ignored(ignoreBotAuthor)
		return
	}

	r.publish(e.GuildID, normalizer.MessageDelete(msg))
}

func (r *Router) onMessageUpdate(_ *discordgo.Session, e *discordgo.MessageUpdate) {
	r.received("message_update")
	if e.Message == nil || !r.inScope(e.GuildID) {
		return
	}

	author := e.Author
	if author == nil && e.BeforeUpdate != nil {
		author = e.BeforeUpdate.Author
	}
	if !r.deps.Guard.AllowAuthor(e.GuildID, author) {
		r.ignored(ignoreBotAuthor)
		return
	}

	r.publish(e.GuildID, normalizer.MessageEdit(e.BeforeUpdate, e.Message))
}

func (r *Router) onMemberAdd(_ *discordgo.Session, e *discordgo.GuildMemberAdd) {
	r.received("member_add")
	if e.Member == nil || e.User == nil || !r.inScope(e.GuildID) {
		return
	}
	r.deps.Mirror.SwapMember(e.Member)
	if r.deps.Guard.IsSelf(e.User.ID) {
		r.ignored(ignoreSelf)
		return
	}
	r.publish(e.GuildID, normalizer.MemberJoin(e.Member))
}

// onMemberRemove blocks on the reconciler's settle delay; discordgo already
// runs each handler on its own goroutine.
func (r *Router) onMemberRemove(_ *discordgo.Session, e *discordgo.GuildMemberRemove) {
	r.received("member_remove")
	if e.Member == nil || e.User == nil || !r.inScope(e.GuildID) {
		return
	}

	member := e.Member
	if cached := r.deps.Mirror.RemoveMember(e.User.ID); cached != nil {
		member = cached
	}
	if r.deps.Guard.IsSelf(e.User.ID) {
		r.ignored(ignoreSelf)
		return
	}

	removal, err := r.deps.Reconciler.Resolve(r.ctx, e.GuildID, member)
	switch {
	case errors.Is(err, reconciler.ErrAbandoned):
		r.outcome("abandoned")
		logging.Warn("Member removal of %s dropped during shutdown", e.User.ID)
		return
	case err != nil:
		r.outcome("error")
		logging.Error("Error logging member remove: %v", err)
		return
	}

	r.outcome(removal.State.String())
	r.publish(e.GuildID, removal.Record())
}

func (r *Router) outcome(name string) {
	if r.deps.Stats != nil {
		r.deps.Stats.ReconcilerOutcome(name)
	}
}

func (r *Router) onMemberUpdate(_ *discordgo.Session, e *discordgo.GuildMemberUpdate) {
	r.received("member_update")
	if e.Member == nil || e.User == nil || !r.inScope(e.GuildID) {
		return
	}

	before := r.deps.Mirror.SwapMember(e.Member)
	if r.deps.Guard.IsSelf(e.User.ID) {
		r.ignored(ignoreSelf)
		return
	}
	r.publish(e.GuildID, normalizer.MemberUpdate(before, e.Member))
}

func (r *Router) onGuildUpdate(_ *discordgo.Session, e *discordgo.GuildUpdate) {
	r.received("guild_update")
	if e.Guild == nil || !r.inScope(e.ID) {
		return
	}
	before := r.deps.Mirror.SwapGuild(e.Guild)
	r.publish(e.ID, normalizer.GuildUpdate(before, e.Guild))
}

func (r *Router) onRoleCreate(_ *discordgo.Session, e *discordgo.GuildRoleCreate) {
	r.received("role_create")
	if e.GuildRole == nil || e.Role == nil || !r.inScope(e.GuildID) {
		return
	}
	r.deps.Mirror.SwapRole(e.Role)
	r.publish(e.GuildID, normalizer.RoleCreate(e.Role))
}

func (r *Router) onRoleDelete(_ *discordgo.Session, e *discordgo.GuildRoleDelete) {
	r.received("role_delete")
	if !r.inScope(e.GuildID) {
		return
	}
	cached := r.deps.Mirror.RemoveRole(e.RoleID)
	r.publish(e.GuildID, normalizer.RoleDelete(e.RoleID, cached))
}

func (r *Router) onRoleUpdate(_ *discordgo.Session, e *discordgo.GuildRoleUpdate) {
	r.received("role_update")
	if e.GuildRole == nil || e.Role == nil || !r.inScope(e.GuildID) {
		return
	}
	before := r.deps.Mirror.SwapRole(e.Role)
	r.publish(e.GuildID, normalizer.RoleUpdate(before, e.Role))
}

func (r *Router) onChannelCreate(_ *discordgo.Session, e *discordgo.ChannelCreate) {
	r.received("channel_create")
	if e.Channel == nil || !r.inScope(e.GuildID) {
		return
	}
	r.deps.Mirror.SwapChannel(e.Channel)
	if r.deps.OwnChannel != nil && r.deps.OwnChannel(e.ID) {
		r.ignored(ignoreSelf)
		return
	}
	r.publish(e.GuildID, normalizer.ChannelCreate(e.Channel, r.deps.Mirror.Channel(e.ParentID)))
}

func (r *Router) onChannelDelete(_ *discordgo.Session, e *discordgo.ChannelDelete) {
	r.received("channel_delete")
	if e.Channel == nil || !r.inScope(e.GuildID) {
		return
	}
	if r.deps.ChannelDeleted != nil {
		r.deps.ChannelDeleted(e.ID)
	}

	ch := e.Channel
	if cached := r.deps.Mirror.RemoveChannel(e.ID); cached != nil && ch.Name == "" {
		ch = cached
	}
	r.publish(e.GuildID, normalizer.ChannelDelete(ch, r.deps.Mirror.Channel(ch.ParentID)))
}

func (r *Router) onChannelUpdate(_ *discordgo.Session, e *discordgo.ChannelUpdate) {
	r.received("channel_update")
	if e.Channel == nil || !r.inScope(e.GuildID) {
		return
	}
	before := r.deps.Mirror.SwapChannel(e.Channel)
	r.publish(e.GuildID, normalizer.ChannelUpdate(before, e.Channel))
}

func (r *Router) onInviteCreate(_ *discordgo.Session, e *discordgo.InviteCreate) {
	r.received("invite_create")
	if e.Invite == nil || !r.inScope(e.GuildID) {
		return
	}
	if e.Inviter != nil && r.deps.Guard.IsSelf(e.Inviter.ID) {
		r.ignored(ignoreSelf)
		return
	}
	r.publish(e.GuildID, normalizer.InviteCreate(e.Invite, e.ChannelID))
}

func (r *Router) onEmojisUpdate(_ *discordgo.Session, e *discordgo.GuildEmojisUpdate) {
	r.received("emojis_update")
	if !r.inScope(e.GuildID) {
		return
	}
	seeded := r.deps.Mirror.Seeded()
	before := r.deps.Mirror.SwapEmojis(e.Emojis)
	if !seeded {
		r.ignored(ignoreNoChange)
		return
	}
	r.publishAll(e.GuildID, normalizer.EmojisUpdate(before, e.Emojis))
}

func (r *Router) onStickersUpdate(_ *discordgo.Session, e *discordgo.GuildStickersUpdate) {
	r.received("stickers_update")
	if !r.inScope(e.GuildID) {
		return
	}
	seeded := r.deps.Mirror.Seeded()
	before := r.deps.Mirror.SwapStickers(e.Stickers)
	if !seeded {
		r.ignored(ignoreNoChange)
		return
	}
	r.publishAll(e.GuildID, normalizer.StickersUpdate(before, e.Stickers))
}

func (r *Router) publishAll(guildID string, recs []*models.Record) {
	if len(recs) == 0 {
		r.ignored(ignoreNoChange)
		return
	}
	for _, rec := range recs {
		r.publish(guildID, rec)
	}
}

// onWebhooksUpdate carries no detail, so the newest webhook entry in the
// audit log is published instead. One action can fire the event several
// times; an entry is published at most once.
func (r *Router) onWebhooksUpdate(_ *discordgo.Session, e *discordgo.WebhooksUpdate) {
	r.received("webhooks_update")
	if !r.inScope(e.GuildID) {
		return
	}

	log, err := r.deps.AuditLog.GuildAuditLog(e.GuildID, 0, webhookLookupLimit)
	if err != nil {
		logging.Error("Error logging webhook update: %v", err)
		return
	}
	if log == nil {
		return
	}

	for _, entry := range log.AuditLogEntries {
		c, ok := audit.Classify(entry)
		if !ok || !isWebhookKind(c.Kind) {
			continue
		}
		if !r.recent(entry.ID) {
			r.ignored(ignoreStale)
			return
		}
		if !r.claimWebhook(entry.ID) {
			return
		}
		if r.deps.Guard.IsSelf(entry.UserID) {
			r.ignored(ignoreSelf)
			return
		}
		actor := identityFromLog(log, entry.UserID)
		r.publish(e.GuildID, r.entryRecord(c, entry, actor))
		return
	}
}

func isWebhookKind(k models.ActionKind) bool {
	return k == models.KindWebhookCreate || k == models.KindWebhookUpdate || k == models.KindWebhookDelete
}

func (r *Router) recent(entryID string) bool {
	at, ok := util.SnowflakeTime(entryID)
	return ok && time.Since(at) <= r.deps.LookupWindow
}

func (r *Router) claimWebhook(entryID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastWebhook == entryID {
		return false
	}
	r.lastWebhook = entryID
	return true
}

// onAuditLogEntry publishes the actions whose route is the audit log; the
// rest are reported by a gateway normalizer or an explicit lookup.
func (r *Router) onAuditLogEntry(_ *discordgo.Session, e *discordgo.GuildAuditLogEntryCreate) {
	r.received("audit_log_entry")
	if e.AuditLogEntry == nil || !r.inScope(e.GuildID) {
		return
	}
	if r.deps.Guard.IsSelf(e.UserID) {
		r.ignored(ignoreSelf)
		return
	}

	c, ok := audit.Classify(e.AuditLogEntry)
	if !ok {
		action := -1
		if e.ActionType != nil {
			action = int(*e.ActionType)
		}
		logging.Debug("Unclassified audit log action %d", action)
		r.ignored(ignoreUnclassified)
		return
	}
	if c.Route != audit.RouteAuditLog {
		r.ignored(ignoreOtherRoute)
		return
	}

	r.publish(e.GuildID, r.entryRecord(c, e.AuditLogEntry, r.actor(e.UserID)))
}

// entryRecord leads the details with the entry's target so the affected
// user or entity is named in the message.
func (r *Router) entryRecord(c audit.Classification, entry *discordgo.AuditLogEntry, actor *models.Identity) *models.Record {
	var (
		target  *models.Identity
		details []string
	)
	if entry.TargetID != "" {
		target = r.targetIdentity(entry.TargetID)
		details = append(details, audit.TargetLine(c.Kind, entry.TargetID))
	}
	details = append(details, audit.FormatDetails(entry, c.Kind)...)
	return models.NewRecord(c.Kind, c.DisplayName, actor, target, details)
}

// targetIdentity fills in a mirrored member for user targets; anything else
// keeps only its ID.
func (r *Router) targetIdentity(id string) *models.Identity {
	if m := r.deps.Mirror.Member(id); m != nil && m.User != nil {
		return normalizer.MemberIdentity(m)
	}
	return &models.Identity{ID: id}
}

// actor resolves a user ID to an identity, preferring the mirrored member
// for its nickname.
func (r *Router) actor(userID string) *models.Identity {
	if userID == "" {
		return nil
	}
	if m := r.deps.Mirror.Member(userID); m != nil && m.User != nil {
		return normalizer.MemberIdentity(m)
	}
	if r.deps.Users != nil {
		u, err := r.deps.Users.User(userID)
		if err == nil && u != nil {
			return normalizer.UserIdentity(u)
		}
		logging.Warn("Failed to resolve audit actor %s: %v", userID, err)
	}
	return &models.Identity{ID: userID}
}

func identityFromLog(log *discordgo.GuildAuditLog, userID string) *models.Identity {
	if u := reconciler.FindUser(log, userID); u != nil {
		return normalizer.UserIdentity(u)
	}
	if userID == "" {
		return nil
	}
	return &models.Identity{ID: userID}
}
