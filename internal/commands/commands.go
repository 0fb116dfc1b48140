package commands

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Nekobot/pkg/database"
	"github.com/latoulicious/Nekobot/pkg/logging"
	"github.com/latoulicious/Nekobot/pkg/mute"
	"github.com/latoulicious/Nekobot/pkg/trigger"
)

// Discord rejects embeds beyond these limits
const (
	maxEmbedFields     = 25
	maxEmbedFieldValue = 1024
)

// Sender is the part of discordgo.Session used to reply in a channel
type Sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// MutePresence is notified when the bot is muted
type MutePresence interface {
	UpdateMutedPresence(until time.Time)
}

// StatsReader provides dispatch counts for neko-stats
type StatsReader interface {
	ReactionSummary(ctx context.Context) ([]database.ReactionCount, error)
}

// Commands holds the state shared by the prefix commands
type Commands struct {
	Prefix      string
	Description string
	Index       *trigger.Index
	Gate        *mute.Gate
	DefaultMute time.Duration

	// Presence and Stats are optional.
	Presence MutePresence
	Stats    StatsReader
	Logger   logging.Logger
}

// Run executes the named command and reports whether it exists. Unknown
// names are left alone since other bots may share the prefix.
func (c *Commands) Run(ctx context.Context, s Sender, m *discordgo.MessageCreate, name string, args []string) bool {
	switch strings.ToLower(name) {
	case "be-quiet":
		c.BeQuietCommand(s, m, args)
	case "triggers":
		c.TriggersCommand(s, m)
	case "neko-help":
		c.HelpCommand(s, m)
	case "neko-stats":
		c.StatsCommand(ctx, s, m)
	default:
		return false
	}
	return true
}

func (c *Commands) logger() logging.Logger {
	if c.Logger == nil {
		return logging.NullLogger()
	}
	return c.Logger
}

func (c *Commands) send(s Sender, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		c.logger().Error("Failed to send message",
			logging.String("channel_id", channelID),
			logging.Error(err),
		)
	}
}

func (c *Commands) sendEmbed(s Sender, channelID string, embed *discordgo.MessageEmbed) {
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		c.logger().Error("Failed to send embed",
			logging.String("channel_id", channelID),
			logging.Error(err),
		)
	}
}

// capitalize upper-cases the first letter of a reaction type for display
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// joinLimited joins items with sep, dropping trailing items behind an
// "…and N more" tail when the result would exceed limit bytes.
func joinLimited(items []string, sep string, limit int) string {
	joined := strings.Join(items, sep)
	if len(joined) <= limit {
		return joined
	}

	for n := len(items) - 1; n > 0; n-- {
		head := strings.Join(items[:n], sep) + sep
		tail := fmt.Sprintf("…and %d more", len(items)-n)
		if len(head)+len(tail) <= limit {
			return head + tail
		}
	}
	return fmt.Sprintf("…and %d more", len(items))
}
