package notifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go-audit-relay/internal/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock DiscordAPI ---

type mockDiscordAPI struct {
	mu sync.Mutex

	channels    []*discordgo.Channel
	channelsErr error
	listCalls   int

	created    *discordgo.GuildChannelCreateData
	createErr  error
	createCall int

	sent    []*discordgo.MessageSend
	sentTo  []string
	sendErr error
}

func (m *mockDiscordAPI) GuildChannels(string) ([]*discordgo.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	return m.channels, m.channelsErr
}

func (m *mockDiscordAPI) GuildChannelCreateComplex(_ string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCall++
	m.created = &data
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &discordgo.Channel{ID: "new", Name: data.Name, Type: data.Type}, nil
}

func (m *mockDiscordAPI) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentTo = append(m.sentTo, channelID)
	m.sent = append(m.sent, data)
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

type recordedPublish struct {
	kind string
	err  error
}

type fakeRecorder struct {
	calls []recordedPublish
}

func (f *fakeRecorder) ObservePublish(kind string, _ time.Duration, err error) {
	f.calls = append(f.calls, recordedPublish{kind, err})
}

const channelName = "「📄」audit-logistics"

func text(id, name string) *discordgo.Channel {
	return &discordgo.Channel{ID: id, Name: name, Type: discordgo.ChannelTypeGuildText}
}

func selfID() string { return "42" }

func TestResolve_ExactBeatsFuzzy(t *testing.T) {
	t.Parallel()

	api := &mockDiscordAPI{channels: []*discordgo.Channel{
		text("1", "old-audit-logistics"),
		text("2", channelName),
	}}
	r := NewChannelResolver(api, channelName, "topic", selfID)

	id, err := r.Resolve("100")
	require.NoError(t, err)
	assert.Equal(t, "2", id)
}

func TestResolve_Fuzzy(t *testing.T) {
	t.Parallel()

	api := &mockDiscordAPI{channels: []*discordgo.Channel{
		{ID: "0", Name: "audit-logistics-voice", Type: discordgo.ChannelTypeGuildVoice},
		text("1", "general"),
		text("3", "Audit-Logistics"),
	}}
	r := NewChannelResolver(api, channelName, "topic", selfID)

	id, err := r.Resolve("100")
	require.NoError(t, err)
	assert.Equal(t, "3", id)
	assert.Zero(t, api.createCall)
}

func TestResolve_CreatesWithOverwrites(t *testing.T) {
	t.Parallel()

	api := &mockDiscordAPI{channels: []*discordgo.Channel{text("1", "general")}}
	r := NewChannelResolver(api, channelName, "Audit Logger", selfID)

	id, err := r.Resolve("100")
	require.NoError(t, err)
	assert.Equal(t, "new", id)

	require.NotNil(t, api.created)
	assert.Equal(t, channelName, api.created.Name)
	assert.Equal(t, "Audit Logger", api.created.Topic)
	require.Len(t, api.created.PermissionOverwrites, 2)

	everyone := api.created.PermissionOverwrites[0]
	assert.Equal(t, "100", everyone.ID)
	assert.Equal(t, int64(discordgo.PermissionSendMessages), everyone.Deny)

	bot := api.created.PermissionOverwrites[1]
	assert.Equal(t, "42", bot.ID)
	assert.NotZero(t, bot.Allow&discordgo.PermissionSendMessages)

	assert.True(t, r.Created("new"))
	assert.False(t, r.Created("1"))
}

func TestResolve_FoundChannelIsNotCreated(t *testing.T) {
	t.Parallel()

	api := &mockDiscordAPI{channels: []*discordgo.Channel{text("2", channelName)}}
	r := NewChannelResolver(api, channelName, "topic", selfID)

	_, err := r.Resolve("100")
	require.NoError(t, err)
	assert.False(t, r.Created("2"))
}

func TestResolve_CachesAndForgets(t *testing.T) {
	t.Parallel()

	api := &mockDiscordAPI{channels: []*discordgo.Channel{text("2", channelName)}}
	r := NewChannelResolver(api, channelName, "", selfID)

	_, err := r.Resolve("100")
	require.NoError(t, err)
	_, err = r.Resolve("100")
	require.NoError(t, err)
	assert.Equal(t, 1, api.listCalls)

	r.Forget("2")
	_, ok := r.Cached("100")
	assert.False(t, ok)

	_, err = r.Resolve("100")
	require.NoError(t, err)
	assert.Equal(t, 2, api.listCalls)
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()

	r := NewChannelResolver(&mockDiscordAPI{channelsErr: errors.New("boom")}, channelName, "", selfID)
	_, err := r.Resolve("100")
	assert.Error(t, err)

	r = NewChannelResolver(&mockDiscordAPI{createErr: errors.New("403")}, channelName, "", selfID)
	_, err = r.Resolve("100")
	assert.ErrorIs(t, err, ErrNoChannel)
}

func record(details ...string) *models.Record {
	return &models.Record{
		ID:          "r1",
		Actor:       &models.Identity{ID: "1", Username: "alex", Nick: "Alex"},
		Kind:        models.KindMemberBan,
		DisplayName: "Member Banned",
		Details:     details,
		OccurredAt:  time.Unix(1700000000, 0),
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	msg := Render(record("Reason: spam"), Style{Color: 0x43c7c5, ImageURL: "https://example.com/a.png"})
	require.Len(t, msg.Embeds, 2)
	assert.Equal(t, "https://example.com/a.png", msg.Embeds[0].Image.URL)

	embed := msg.Embeds[1]
	assert.Equal(t, 0x43c7c5, embed.Color)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "Community Member:", embed.Fields[0].Name)
	assert.Equal(t, "Alex", embed.Fields[0].Value)
	assert.Equal(t, "Member Banned\nReason: spam", embed.Fields[1].Value)
	assert.Equal(t, "<t:1700000000>", embed.Fields[2].Value)
	assert.Equal(t, time.Unix(1700000000, 0).Format(time.RFC3339), embed.Timestamp)
}

func TestRender_NoImageNoDetails(t *testing.T) {
	t.Parallel()

	rec := record()
	rec.Actor = nil

	msg := Render(rec, Style{})
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "Unknown", msg.Embeds[0].Fields[0].Value)
	assert.Equal(t, "Member Banned\nNo additional details", msg.Embeds[0].Fields[1].Value)
}

func TestActionText_Truncated(t *testing.T) {
	t.Parallel()

	got := ActionText(record(strings.Repeat("x", 2000)))
	assert.Len(t, []rune(got), maxFieldValue)
}

func TestPublish(t *testing.T) {
	t.Parallel()

	api := &mockDiscordAPI{channels: []*discordgo.Channel{text("2", channelName)}}
	rec := &fakeRecorder{}
	p := NewPublisher(api, NewChannelResolver(api, channelName, "", selfID), Style{}, rec)

	require.NoError(t, p.Publish(context.Background(), "100", record()))
	require.NoError(t, p.Publish(context.Background(), "100", nil))

	assert.Equal(t, []string{"2"}, api.sentTo)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "member_ban", rec.calls[0].kind)
	assert.NoError(t, rec.calls[0].err)
}

func TestPublish_SendFailureForgetsChannel(t *testing.T) {
	t.Parallel()

	api := &mockDiscordAPI{channels: []*discordgo.Channel{text("2", channelName)}, sendErr: errors.New("unknown channel")}
	resolver := NewChannelResolver(api, channelName, "", selfID)
	rec := &fakeRecorder{}
	p := NewPublisher(api, resolver, Style{}, rec)

	err := p.Publish(context.Background(), "100", record())
	require.Error(t, err)

	_, ok := resolver.Cached("100")
	assert.False(t, ok)
	require.Len(t, rec.calls, 1)
	assert.Error(t, rec.calls[0].err)
}

func TestPublish_CancelledContext(t *testing.T) {
	t.Parallel()

	api := &mockDiscordAPI{}
	p := NewPublisher(api, NewChannelResolver(api, channelName, "", selfID), Style{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, "100", record()), context.Canceled)
	assert.Zero(t, api.listCalls)
}
