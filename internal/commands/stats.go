package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Nekobot/pkg/logging"
)

// StatsCommand shows how often each reaction type was sent or came back empty
func (c *Commands) StatsCommand(ctx context.Context, s Sender, m *discordgo.MessageCreate) {
	if c.Stats == nil {
		c.send(s, m.ChannelID, "📊 Reaction stats are disabled.")
		return
	}

	counts, err := c.Stats.ReactionSummary(ctx)
	if err != nil {
		c.logger().Error("Failed to load reaction stats", logging.Error(err))
		c.send(s, m.ChannelID, "❌ Could not load reaction stats.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:     "📊 Reaction Stats",
		Color:     0x7289DA, // Discord blue
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if len(counts) == 0 {
		embed.Description = "No reactions sent yet."
	}

	for i, count := range counts {
		if i == maxEmbedFields {
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: capitalize(count.ReactionType),
			Value: fmt.Sprintf("Sent: %d\nNo image: %d\nFailed: %d",
				count.Sent, count.NotFound, count.SendFailed),
			Inline: true,
		})
	}

	c.sendEmbed(s, m.ChannelID, embed)
}
