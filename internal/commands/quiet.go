package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Nekobot/pkg/logging"
	"github.com/latoulicious/Nekobot/pkg/mute"
)

// BeQuietCommand mutes triggered reactions for the given number of seconds,
// or for the configured cooldown when no argument is given
func (c *Commands) BeQuietCommand(s Sender, m *discordgo.MessageCreate, args []string) {
	seconds := int(c.DefaultMute / time.Second)

	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 || n > mute.MaxSeconds {
			c.send(s, m.ChannelID, fmt.Sprintf("❌ Please give a number of seconds between 0 and %d.\n\n**Usage:** `%sbe-quiet [seconds]`", mute.MaxSeconds, c.Prefix))
			return
		}
		seconds = n
	}

	until := c.Gate.Mute(time.Duration(seconds) * time.Second)

	c.logger().Info("Muted reactions",
		logging.Int("seconds", seconds),
		logging.String("channel_id", m.ChannelID),
		logging.String("user_id", authorID(m)),
	)

	if c.Presence != nil && seconds > 0 {
		c.Presence.UpdateMutedPresence(until)
	}

	c.send(s, m.ChannelID, fmt.Sprintf("I'll be quiet for %d seconds :(", seconds))
}

func authorID(m *discordgo.MessageCreate) string {
	if m.Author == nil {
		return ""
	}
	return m.Author.ID
}
