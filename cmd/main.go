package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Nekobot/internal/commands"
	"github.com/latoulicious/Nekobot/internal/config"
	"github.com/latoulicious/Nekobot/internal/handlers"
	"github.com/latoulicious/Nekobot/internal/presence"
	"github.com/latoulicious/Nekobot/pkg/cron"
	"github.com/latoulicious/Nekobot/pkg/database"
	"github.com/latoulicious/Nekobot/pkg/imageapi"
	"github.com/latoulicious/Nekobot/pkg/logging"
	"github.com/latoulicious/Nekobot/pkg/mute"
	"github.com/latoulicious/Nekobot/pkg/trigger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const presenceInterval = 15 * time.Second

// sessionIntents delivers guild and direct message content
const sessionIntents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "nekobot",
		Short: "A Discord bot that answers trigger words with reaction images",
		Long: `nekobot watches guild and direct messages for configured trigger words and replies
with an anime reaction image fetched from one of several public image APIs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
)

func init() {
	defaultConfig := os.Getenv("NEKOBOT_CONFIG")
	if defaultConfig == "" {
		defaultConfig = config.DefaultConfigPath
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfig, "path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger := logging.New(cfg.Logging)
	logging.NewStdLogAdapter(logger).SetAsStdLogger()
	routeDiscordLogs(logger.With(logging.String("component", "discordgo")))

	// Create a new Discord session using the provided token
	dg, err := newSession(cfg.DiscordToken)
	if err != nil {
		return err
	}

	index := trigger.NewIndex(cfg.Reactions.Definitions())
	gate := mute.NewGate()

	resolver := imageapi.NewResolver(cfg.APIs.ImageProviders(),
		imageapi.WithTimeout(cfg.HTTP.Timeout),
		imageapi.WithUserAgent(cfg.HTTP.UserAgent),
		imageapi.WithLogger(logger.With(logging.String("component", "imageapi"))),
	)
	defer resolver.Close()

	presenceManager := presence.NewPresenceManager(dg, index.Len(), logger.With(logging.String("component", "presence")))

	cmds := &commands.Commands{
		Prefix:      cfg.Bot.Prefix,
		Description: cfg.Bot.Description,
		Index:       index,
		Gate:        gate,
		DefaultMute: cfg.MuteDuration(),
		Presence:    presenceManager,
		Logger:      logger.With(logging.String("component", "commands")),
	}

	dispatcher := &handlers.Dispatcher{
		Prefix:   cfg.Bot.Prefix,
		Index:    index,
		Resolver: resolver,
		Gate:     gate,
		Commands: cmds,
		Logger:   logger.With(logging.String("component", "dispatcher")),
		Timeout:  cfg.HTTP.Timeout,
	}

	// Optional dispatch stats
	if cfg.Database.Path != "" {
		db, err := database.NewDatabase(cfg.Database.Path)
		if err != nil {
			return errors.Wrap(err, "failed to open stats database")
		}
		defer db.Close()

		cmds.Stats = db
		dispatcher.Stats = db

		retention, err := cron.NewRetentionManager(func() error {
			purgeCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			removed, err := db.PurgeBefore(purgeCtx, time.Now().Add(-cfg.Database.Retention))
			if err != nil {
				return err
			}
			logger.Info("Purged old dispatch stats", logging.Int64("removed", removed))
			return nil
		}, cfg.Database.CleanupSchedule, logger.With(logging.String("component", "retention")))
		if err != nil {
			return errors.Wrap(err, "failed to start stats retention")
		}
		defer retention.Stop()

		logger.Info("Dispatch stats enabled",
			logging.String("path", cfg.Database.Path),
			logging.Duration("retention", cfg.Database.Retention),
			logging.Any("next_cleanup", retention.GetNextRun()),
		)
	}

	// Register the message handler
	dg.AddHandler(dispatcher.MessageHandler)

	// Open a websocket connection to Discord and begin listening.
	if err := dg.Open(); err != nil {
		return errors.Wrap(err, "failed to open Discord session")
	}
	defer dg.Close()

	// Set initial presence
	presenceManager.UpdateDefaultPresence()

	// Start periodic presence updates
	presenceManager.StartPeriodicUpdates(ctx, gate, presenceInterval)

	logger.Info("Bot is running. Press CTRL-C to exit.",
		logging.Int("reactions", len(cfg.Reactions)),
		logging.Int("trigger_words", index.Len()),
		logging.Any("providers", resolver.Providers()),
	)

	// Wait here until CTRL-C or other term signal is received.
	<-ctx.Done()
	logger.Info("Shutting down")

	return nil
}

func newSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Discord session")
	}
	dg.Identify.Intents = sessionIntents
	return dg, nil
}

// routeDiscordLogs sends discordgo's internal log lines through logger
func routeDiscordLogs(logger logging.Logger) {
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			logger.Error(msg)
		case discordgo.LogWarning:
			logger.Warn(msg)
		case discordgo.LogInformational:
			logger.Info(msg)
		default:
			logger.Debug(msg)
		}
	}
}
