package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Nekobot/pkg/database"
	"github.com/latoulicious/Nekobot/pkg/mute"
	"github.com/latoulicious/Nekobot/pkg/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu       sync.Mutex
	messages []string
	embeds   []*discordgo.MessageEmbed
}

func (f *fakeSender) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{ChannelID: channelID}, nil
}

type fakePresence struct {
	until []time.Time
}

func (f *fakePresence) UpdateMutedPresence(until time.Time) {
	f.until = append(f.until, until)
}

type fakeStats struct {
	counts []database.ReactionCount
	err    error
}

func (f *fakeStats) ReactionSummary(context.Context) ([]database.ReactionCount, error) {
	return f.counts, f.err
}

func newTestCommands() *Commands {
	return &Commands{
		Prefix: "!",
		Index: trigger.NewIndex([]trigger.Definition{
			{ReactionType: "pat", Words: []string{"pat", "pet", "pats"}},
			{ReactionType: "hug", Words: []string{"hug", "hugs"}},
			{ReactionType: "trap", Words: []string{"trap"}, Hidden: true},
		}),
		Gate:        mute.NewGate(),
		DefaultMute: 30 * time.Second,
	}
}

func message(channelID string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: channelID,
		Author:    &discordgo.User{ID: "user-1"},
	}}
}

func TestRunUnknownCommand(t *testing.T) {
	c := newTestCommands()
	s := &fakeSender{}

	assert.False(t, c.Run(context.Background(), s, message("c1"), "play", nil))
	assert.Empty(t, s.messages)
	assert.Empty(t, s.embeds)
}

func TestRunIsCaseInsensitive(t *testing.T) {
	c := newTestCommands()
	s := &fakeSender{}

	assert.True(t, c.Run(context.Background(), s, message("c1"), "TRIGGERS", nil))
	assert.Len(t, s.embeds, 1)
}

func TestBeQuietCommand(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantReply string
		wantMuted bool
	}{
		{name: "default cooldown", args: nil, wantReply: "I'll be quiet for 30 seconds :(", wantMuted: true},
		{name: "explicit seconds", args: []string{"10"}, wantReply: "I'll be quiet for 10 seconds :(", wantMuted: true},
		{name: "zero unmutes", args: []string{"0"}, wantReply: "I'll be quiet for 0 seconds :(", wantMuted: false},
		{name: "not a number", args: []string{"soon"}, wantReply: "Usage", wantMuted: false},
		{name: "negative", args: []string{"-5"}, wantReply: "Usage", wantMuted: false},
		{name: "one year", args: []string{"31536000"}, wantReply: "I'll be quiet for 31536000 seconds :(", wantMuted: true},
		{name: "longer than a year", args: []string{"31536001"}, wantReply: "Usage", wantMuted: false},
		{name: "overflows duration", args: []string{"9000000000"}, wantReply: "Usage", wantMuted: false},
		{name: "overflows int", args: []string{"99999999999999999999"}, wantReply: "Usage", wantMuted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCommands()
			presence := &fakePresence{}
			c.Presence = presence
			s := &fakeSender{}

			require.True(t, c.Run(context.Background(), s, message("c1"), "be-quiet", tt.args))

			require.Len(t, s.messages, 1)
			assert.Contains(t, s.messages[0], tt.wantReply)
			assert.Equal(t, tt.wantMuted, c.Gate.IsMuted())
			assert.Equal(t, tt.wantMuted, len(presence.until) == 1)
		})
	}
}

func TestBeQuietOverridesPreviousMute(t *testing.T) {
	c := newTestCommands()
	s := &fakeSender{}

	c.BeQuietCommand(s, message("c1"), []string{"600"})
	first := c.Gate.Until()
	c.BeQuietCommand(s, message("c1"), []string{"5"})

	assert.True(t, c.Gate.Until().Before(first))
}

func TestTriggersCommand(t *testing.T) {
	c := newTestCommands()
	s := &fakeSender{}

	c.TriggersCommand(s, message("c1"))

	require.Len(t, s.embeds, 1)
	embed := s.embeds[0]
	assert.Equal(t, "Available Reaction Triggers", embed.Title)
	require.Len(t, embed.Fields, 2, "hidden reactions are not listed")
	assert.Equal(t, "Pat", embed.Fields[0].Name)
	assert.Equal(t, "`pat`, `pet`, `pats`", embed.Fields[0].Value)
	assert.Equal(t, "Hug", embed.Fields[1].Name)
}

func TestTriggersCommandEmpty(t *testing.T) {
	c := newTestCommands()
	c.Index = trigger.NewIndex(nil)
	s := &fakeSender{}

	c.TriggersCommand(s, message("c1"))

	require.Len(t, s.embeds, 1)
	assert.Empty(t, s.embeds[0].Fields)
	assert.NotEmpty(t, s.embeds[0].Description)
}

func TestHelpCommandUsesPrefix(t *testing.T) {
	c := newTestCommands()
	c.Prefix = "?"
	s := &fakeSender{}

	c.HelpCommand(s, message("c1"))

	require.Len(t, s.embeds, 1)
	embed := s.embeds[0]
	assert.Equal(t, "Reactions Help", embed.Title)
	require.Len(t, embed.Fields, 3)
	assert.Contains(t, embed.Fields[0].Value, "`?be-quiet [seconds]`")
	assert.Contains(t, embed.Fields[0].Value, "default: 30")
	assert.Equal(t, "`pat`, `hug`", embed.Fields[2].Value)
	assert.False(t, strings.Contains(embed.Fields[2].Value, "trap"))
	assert.Equal(t, "Use ?triggers to see all trigger words", embed.Footer.Text)
}

func TestStatsCommand(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		c := newTestCommands()
		s := &fakeSender{}
		c.StatsCommand(context.Background(), s, message("c1"))
		require.Len(t, s.messages, 1)
		assert.Contains(t, s.messages[0], "disabled")
	})

	t.Run("error", func(t *testing.T) {
		c := newTestCommands()
		c.Stats = &fakeStats{err: errors.New("locked")}
		s := &fakeSender{}
		c.StatsCommand(context.Background(), s, message("c1"))
		require.Len(t, s.messages, 1)
		assert.Contains(t, s.messages[0], "Could not load")
	})

	t.Run("counts", func(t *testing.T) {
		c := newTestCommands()
		c.Stats = &fakeStats{counts: []database.ReactionCount{
			{ReactionType: "pat", Sent: 4, NotFound: 1},
			{ReactionType: "hug", Sent: 2, SendFailed: 1},
		}}
		s := &fakeSender{}
		c.StatsCommand(context.Background(), s, message("c1"))

		require.Len(t, s.embeds, 1)
		fields := s.embeds[0].Fields
		require.Len(t, fields, 2)
		assert.Equal(t, "Pat", fields[0].Name)
		assert.Equal(t, "Sent: 4\nNo image: 1\nFailed: 0", fields[0].Value)
	})
}

func manyReactions(n int) *trigger.Index {
	defs := make([]trigger.Definition, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("reaction-with-a-rather-long-name-%02d", i)
		defs = append(defs, trigger.Definition{ReactionType: name, Words: []string{name}})
	}
	return trigger.NewIndex(defs)
}

func TestTriggersCommandRespectsEmbedLimits(t *testing.T) {
	c := newTestCommands()
	c.Index = manyReactions(30)
	s := &fakeSender{}

	c.TriggersCommand(s, message("c1"))

	require.Len(t, s.embeds, 1)
	embed := s.embeds[0]
	assert.Len(t, embed.Fields, maxEmbedFields)
	assert.Equal(t, "…and 5 more reaction types", embed.Description)
}

func TestTriggersCommandTruncatesLongWordLists(t *testing.T) {
	words := make([]string, 200)
	for i := range words {
		words[i] = fmt.Sprintf("headpat%03d", i)
	}
	c := newTestCommands()
	c.Index = trigger.NewIndex([]trigger.Definition{{ReactionType: "pat", Words: words}})
	s := &fakeSender{}

	c.TriggersCommand(s, message("c1"))

	require.Len(t, s.embeds, 1)
	require.Len(t, s.embeds[0].Fields, 1)
	value := s.embeds[0].Fields[0].Value
	assert.LessOrEqual(t, len(value), maxEmbedFieldValue)
	assert.True(t, strings.HasPrefix(value, "`headpat000`, "))
	assert.Regexp(t, `…and \d+ more$`, value)
}

func TestHelpCommandTruncatesReactionTypes(t *testing.T) {
	c := newTestCommands()
	c.Index = manyReactions(30)
	s := &fakeSender{}

	c.HelpCommand(s, message("c1"))

	require.Len(t, s.embeds, 1)
	for _, field := range s.embeds[0].Fields {
		assert.LessOrEqual(t, len(field.Value), maxEmbedFieldValue, field.Name)
	}
	assert.Regexp(t, `…and \d+ more$`, s.embeds[0].Fields[2].Value)
}

func TestJoinLimited(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		limit int
		want  string
	}{
		{name: "fits", items: []string{"a", "b", "c"}, limit: 10, want: "a, b, c"},
		{name: "exact", items: []string{"a", "b"}, limit: 4, want: "a, b"},
		{name: "truncated", items: []string{"aaaa", "bbbb", "cccc", "dddd"}, limit: 21, want: "aaaa, …and 3 more"},
		{name: "only the tail fits", items: []string{"aaaaaaaaaa", "bbbbbbbbbb"}, limit: 14, want: "…and 2 more"},
		{name: "empty", items: nil, limit: 5, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinLimited(tt.items, ", ", tt.limit))
		})
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "pat", want: "Pat"},
		{in: "ébouriffer", want: "Ébouriffer"},
		{in: "ñom", want: "Ñom"},
		{in: "ハグ", want: "ハグ"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := capitalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
