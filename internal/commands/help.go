package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// HelpCommand shows the reaction commands and how triggers work
func (c *Commands) HelpCommand(s Sender, m *discordgo.MessageCreate) {
	p := c.Prefix
	seconds := int(c.DefaultMute.Seconds())

	var categories []string
	for _, group := range c.Index.VisibleTriggers() {
		categories = append(categories, "`"+group.ReactionType+"`")
	}
	categoriesText := joinLimited(categories, ", ", maxEmbedFieldValue)
	if categoriesText == "" {
		categoriesText = "None configured"
	}

	description := "This bot responds to certain trigger words with reaction images!"
	if c.Description != "" {
		description = c.Description
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Reactions Help",
		Description: description,
		Color:       0x3498db, // Blue
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Commands",
				Value: strings.Join([]string{
					fmt.Sprintf("`%sneko-help` - Shows this help message", p),
					fmt.Sprintf("`%striggers` - Lists all available reaction triggers", p),
					fmt.Sprintf("`%sbe-quiet [seconds]` - Mutes reactions for specified seconds (default: %d)", p, seconds),
					fmt.Sprintf("`%sneko-stats` - Shows how often each reaction was sent", p),
				}, "\n"),
				Inline: false,
			},
			{
				Name: "How it Works",
				Value: "Simply include any trigger word in your message and " +
					"the bot will respond with a matching reaction image!\n" +
					"For example, saying 'headpat' will trigger a patting reaction.",
				Inline: false,
			},
			{
				Name:   "Available Reaction Types",
				Value:  categoriesText,
				Inline: false,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Use %striggers to see all trigger words", p),
		},
	}

	c.sendEmbed(s, m.ChannelID, embed)
}
