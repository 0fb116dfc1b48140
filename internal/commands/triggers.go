package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// TriggersCommand lists the visible trigger words grouped by reaction type
func (c *Commands) TriggersCommand(s Sender, m *discordgo.MessageCreate) {
	embed := &discordgo.MessageEmbed{
		Title: "Available Reaction Triggers",
		Color: 0x3498db, // Blue
	}

	groups := c.Index.VisibleTriggers()
	if len(groups) > maxEmbedFields {
		embed.Description = fmt.Sprintf("…and %d more reaction types", len(groups)-maxEmbedFields)
		groups = groups[:maxEmbedFields]
	}

	for _, group := range groups {
		words := make([]string, 0, len(group.Triggers))
		for _, t := range group.Triggers {
			words = append(words, "`"+t+"`")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   capitalize(group.ReactionType),
			Value:  joinLimited(words, ", ", maxEmbedFieldValue),
			Inline: false,
		})
	}

	if len(embed.Fields) == 0 && embed.Description == "" {
		embed.Description = "No reaction triggers are configured."
	}

	c.sendEmbed(s, m.ChannelID, embed)
}
