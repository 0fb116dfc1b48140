package handlers

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/latoulicious/Nekobot/internal/commands"
	"github.com/latoulicious/Nekobot/pkg/database"
	"github.com/latoulicious/Nekobot/pkg/imageapi"
	"github.com/latoulicious/Nekobot/pkg/logging"
	"github.com/latoulicious/Nekobot/pkg/mute"
	"github.com/latoulicious/Nekobot/pkg/trigger"
)

// ImageResolver looks up an image for a reaction type
type ImageResolver interface {
	Resolve(ctx context.Context, reactionType string) (imageapi.Result, bool)
}

// StatsRecorder stores dispatch outcomes
type StatsRecorder interface {
	RecordDispatch(ctx context.Context, dispatch database.Dispatch) error
}

// Dispatcher routes incoming messages to commands or trigger reactions
type Dispatcher struct {
	Prefix   string
	Index    *trigger.Index
	Resolver ImageResolver
	Gate     *mute.Gate
	Commands *commands.Commands
	// Stats is optional.
	Stats   StatsRecorder
	Logger  logging.Logger
	Timeout time.Duration
}

// MessageHandler is registered with discordgo for MessageCreate events
func (d *Dispatcher) MessageHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	d.HandleMessage(context.Background(), s, m)
}

// HandleMessage handles one message. Replies are only ever sent through s.
func (d *Dispatcher) HandleMessage(ctx context.Context, s commands.Sender, m *discordgo.MessageCreate) {
	// Ignore all messages created by bots, including this one
	if m.Message == nil || m.Author == nil || m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}

	// Check if the message is a command
	if strings.HasPrefix(content, d.Prefix) {
		args := strings.Fields(strings.TrimPrefix(content, d.Prefix))
		if len(args) > 0 && d.Commands.Run(ctx, s, m, args[0], args[1:]) {
			return
		}
	}

	if d.Gate.IsMuted() {
		return
	}

	matches := d.Index.FindMatches(m.Content)
	if len(matches) == 0 {
		return
	}

	// Only send one reaction per message
	d.sendReaction(ctx, s, m, matches[0])
}

// sendReaction resolves and posts an image for match. Failures are logged
// and never propagate to the event loop.
func (d *Dispatcher) sendReaction(ctx context.Context, s commands.Sender, m *discordgo.MessageCreate, match trigger.Match) {
	dispatch := database.Dispatch{
		ID:           uuid.NewString(),
		GuildID:      m.GuildID,
		ChannelID:    m.ChannelID,
		Trigger:      match.Trigger,
		ReactionType: match.ReactionType,
	}
	logger := d.logger().With(
		logging.String("dispatch_id", dispatch.ID),
		logging.String("reaction_type", match.ReactionType),
		logging.String("trigger", match.Trigger),
	)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Error sending reaction", logging.Error(fmt.Errorf("panic: %v", r)))
			dispatch.Outcome = database.OutcomeSendFailed
		}
		dispatch.Duration = time.Since(start)
		d.record(logger, dispatch)
	}()

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	result, ok := d.Resolver.Resolve(ctx, match.ReactionType)
	dispatch.Provider = result.Provider
	dispatch.Attempts = result.Attempts
	if !ok {
		logger.Warn("No image URL found for reaction type", logging.Int("attempts", result.Attempts))
		dispatch.Outcome = database.OutcomeNotFound
		return
	}

	embed := &discordgo.MessageEmbed{
		Color: rand.Intn(0xFFFFFF + 1),
		Image: &discordgo.MessageEmbedImage{
			URL: result.URL,
		},
	}

	if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
		logger.Error("Error sending reaction", logging.Error(err))
		dispatch.Outcome = database.OutcomeSendFailed
		return
	}

	logger.Debug("Sent reaction", logging.String("provider", result.Provider))
	dispatch.Outcome = database.OutcomeSent
}

func (d *Dispatcher) record(logger logging.Logger, dispatch database.Dispatch) {
	if d.Stats == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Stats.RecordDispatch(ctx, dispatch); err != nil {
		logger.Error("Failed to record dispatch", logging.Error(err))
	}
}

func (d *Dispatcher) logger() logging.Logger {
	if d.Logger == nil {
		return logging.NullLogger()
	}
	return d.Logger
}
