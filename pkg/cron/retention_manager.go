package cron

import (
	"fmt"
	"sync"
	"time"

	"github.com/latoulicious/Nekobot/pkg/logging"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the purge daily at 03:00
const DefaultSchedule = "0 0 3 * * *"

// RetentionManager runs a purge function on a cron schedule
type RetentionManager struct {
	cron      *cron.Cron
	cronEntry cron.EntryID
	purgeFunc func() error
	logger    logging.Logger
	mutex     sync.RWMutex
	isRunning bool
	lastRun   time.Time
	lastErr   error
	schedule  string
}

// NewRetentionManager schedules purgeFunc and starts the scheduler. An empty
// schedule uses DefaultSchedule.
func NewRetentionManager(purgeFunc func() error, schedule string, logger logging.Logger) (*RetentionManager, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if logger == nil {
		logger = logging.NullLogger()
	}

	manager := &RetentionManager{
		cron:      cron.New(cron.WithSeconds()),
		purgeFunc: purgeFunc,
		logger:    logger,
		schedule:  schedule,
	}

	entryID, err := manager.cron.AddFunc(schedule, manager.RunNow)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule retention purge %q: %w", schedule, err)
	}
	manager.cronEntry = entryID

	manager.cron.Start()
	logger.Info("Scheduled retention purge", logging.String("schedule", schedule))

	return manager, nil
}

// RunNow performs a purge unless one is already in progress
func (rm *RetentionManager) RunNow() {
	rm.mutex.Lock()
	if rm.isRunning {
		rm.mutex.Unlock()
		rm.logger.Debug("Retention purge already in progress, skipping")
		return
	}
	rm.isRunning = true
	rm.mutex.Unlock()

	var err error
	if rm.purgeFunc != nil {
		err = rm.purgeFunc()
	}

	rm.mutex.Lock()
	rm.isRunning = false
	rm.lastRun = time.Now()
	rm.lastErr = err
	rm.mutex.Unlock()

	if err != nil {
		rm.logger.Error("Retention purge failed", logging.Error(err))
		return
	}
	rm.logger.Debug("Retention purge completed")
}

// Stop stops the scheduler and waits for a running purge to finish
func (rm *RetentionManager) Stop() {
	if rm.cron != nil {
		<-rm.cron.Stop().Done()
		rm.logger.Info("Retention manager stopped")
	}
}

// GetNextRun returns the next scheduled run time
func (rm *RetentionManager) GetNextRun() time.Time {
	if rm.cron != nil {
		return rm.cron.Entry(rm.cronEntry).Next
	}
	return time.Time{}
}

// IsRunning returns whether a purge is currently in progress
func (rm *RetentionManager) IsRunning() bool {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()
	return rm.isRunning
}

// LastRun returns when the last purge finished and its error
func (rm *RetentionManager) LastRun() (time.Time, error) {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()
	return rm.lastRun, rm.lastErr
}

// GetSchedule returns the current cron schedule
func (rm *RetentionManager) GetSchedule() string {
	return rm.schedule
}
