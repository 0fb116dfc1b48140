package presence

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Nekobot/pkg/logging"
)

const (
	PresenceDefault = "default"
	PresenceMuted   = "muted"
)

// StatusUpdater is the part of discordgo.Session used to set the bot status
type StatusUpdater interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// MuteChecker reports whether replies are currently suppressed
type MuteChecker interface {
	IsMuted() bool
}

// PresenceManager manages the bot's presence
type PresenceManager struct {
	session      StatusUpdater
	triggerCount int
	logger       logging.Logger

	mu      sync.RWMutex
	current string
}

// NewPresenceManager creates a new presence manager
func NewPresenceManager(session StatusUpdater, triggerCount int, logger logging.Logger) *PresenceManager {
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &PresenceManager{
		session:      session,
		triggerCount: triggerCount,
		logger:       logger,
	}
}

// UpdateDefaultPresence shows how many trigger words the bot is watching for
func (pm *PresenceManager) UpdateDefaultPresence() {
	pm.update(PresenceDefault, discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{
			{
				Name: strconv.Itoa(pm.triggerCount) + " trigger words",
				Type: discordgo.ActivityTypeWatching,
			},
		},
	})
}

// UpdateMutedPresence shows that the bot is quiet until the given time
func (pm *PresenceManager) UpdateMutedPresence(until time.Time) {
	pm.update(PresenceMuted, discordgo.UpdateStatusData{
		Status: "idle",
		Activities: []*discordgo.Activity{
			{
				Name:  "the silence",
				Type:  discordgo.ActivityTypeListening,
				State: "quiet until " + until.Format("15:04:05"),
			},
		},
	})
}

func (pm *PresenceManager) update(kind string, data discordgo.UpdateStatusData) {
	if err := pm.session.UpdateStatusComplex(data); err != nil {
		pm.logger.Error("Failed to update bot presence",
			logging.String("presence", kind),
			logging.Error(err),
		)
	}

	pm.mu.Lock()
	pm.current = kind
	pm.mu.Unlock()
}

// GetCurrentPresence returns the current presence type
func (pm *PresenceManager) GetCurrentPresence() string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.current
}

// StartPeriodicUpdates restores the default presence once the mute window
// has passed. It returns when ctx is cancelled.
func (pm *PresenceManager) StartPeriodicUpdates(ctx context.Context, gate MuteChecker, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pm.Refresh(gate)
			}
		}
	}()
}

// Refresh switches back to the default presence if the gate has reopened
func (pm *PresenceManager) Refresh(gate MuteChecker) {
	if pm.GetCurrentPresence() == PresenceMuted && !gate.IsMuted() {
		pm.UpdateDefaultPresence()
	}
}
