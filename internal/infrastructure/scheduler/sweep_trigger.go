package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	appbilling "github.com/propman/backend/internal/application/billing"
	appnotice "github.com/propman/backend/internal/application/notice"
	"github.com/propman/backend/internal/infrastructure/cache"
)

// EscalationRunner runs the overdue escalation sweep
type EscalationRunner interface {
	RunSweep(ctx context.Context) (appbilling.SweepStats, error)
}

// ReminderRunner runs the contract expiry reminder sweep
type ReminderRunner interface {
	RunSweep(ctx context.Context) (appnotice.ReminderStats, error)
}

// SweepTriggerConfig holds configuration for the sweep trigger
type SweepTriggerConfig struct {
	// EscalationInterval is how often the overdue escalation sweep runs
	EscalationInterval time.Duration

	// ReminderHour and ReminderMinute set the daily expiry reminder time
	// (24h clock, server local time)
	ReminderHour   int
	ReminderMinute int

	// CheckInterval is how often to check whether a sweep is due
	CheckInterval time.Duration

	// GuardTTL is how long a sweep lease is held against other instances
	GuardTTL time.Duration
}

// DefaultSweepTriggerConfig returns default sweep trigger configuration
func DefaultSweepTriggerConfig() SweepTriggerConfig {
	return SweepTriggerConfig{
		EscalationInterval: time.Hour,
		ReminderHour:       8,
		ReminderMinute:     0,
		CheckInterval:      time.Minute,
		GuardTTL:           10 * time.Minute,
	}
}

// SweepTrigger drives the two periodic sweeps: overdue escalation on a
// fixed interval and the expiry reminder once per day. Runs are guarded
// so that only one instance executes a given sweep window.
type SweepTrigger struct {
	config     SweepTriggerConfig
	escalation EscalationRunner
	reminder   ReminderRunner
	guard      cache.SweepGuard
	logger     *zap.Logger
	now        func() time.Time

	cancel         context.CancelFunc
	wg             sync.WaitGroup
	mu             sync.Mutex
	isRunning      bool
	lastEscalation time.Time
	lastRemindDate string
}

// NewSweepTrigger creates a new sweep trigger
func NewSweepTrigger(
	config SweepTriggerConfig,
	escalation EscalationRunner,
	reminder ReminderRunner,
	guard cache.SweepGuard,
	logger *zap.Logger,
) *SweepTrigger {
	return &SweepTrigger{
		config:     config,
		escalation: escalation,
		reminder:   reminder,
		guard:      guard,
		logger:     logger,
		now:        time.Now,
	}
}

// Start starts the sweep trigger
func (t *SweepTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Sweep trigger started",
		zap.Duration("escalation_interval", t.config.EscalationInterval),
		zap.Int("reminder_hour", t.config.ReminderHour),
		zap.Int("reminder_minute", t.config.ReminderMinute),
		zap.Duration("check_interval", t.config.CheckInterval),
	)

	return nil
}

// Stop stops the sweep trigger and waits for an in-flight sweep to finish
func (t *SweepTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Sweep trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop checks periodically whether a sweep is due
func (t *SweepTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.checkEscalation(ctx)
			t.checkReminder(ctx)
		}
	}
}

// checkEscalation runs the escalation sweep when its interval has elapsed
func (t *SweepTrigger) checkEscalation(ctx context.Context) {
	now := t.now()

	t.mu.Lock()
	due := now.Sub(t.lastEscalation) >= t.config.EscalationInterval
	t.mu.Unlock()
	if !due {
		return
	}

	// Run key pins the sweep to its interval window so restarts and other
	// instances cannot rerun the same window.
	window := now.Truncate(t.config.EscalationInterval)
	runKey := fmt.Sprintf("escalation:%s", window.UTC().Format("2006-01-02T15:04"))
	acquired, err := t.guard.Acquire(ctx, runKey, t.config.GuardTTL)
	if err != nil {
		t.logger.Error("Failed to acquire escalation sweep lease", zap.Error(err))
		return
	}

	t.mu.Lock()
	t.lastEscalation = now
	t.mu.Unlock()

	if !acquired {
		return
	}

	stats, err := t.escalation.RunSweep(ctx)
	if err != nil {
		t.logger.Error("Escalation sweep failed", zap.Error(err))
		return
	}
	t.logger.Info("Escalation sweep completed",
		zap.Int("scanned", stats.Scanned),
		zap.Int("warned", stats.Warned),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
}

// checkReminder runs the expiry reminder sweep once per day at the
// configured time
func (t *SweepTrigger) checkReminder(ctx context.Context) {
	now := t.now()
	currentDate := now.Format("2006-01-02")

	t.mu.Lock()
	if t.lastRemindDate == currentDate {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	// Fire once the scheduled time has passed, not only on the exact
	// minute, so check intervals above one minute cannot skip a day.
	scheduled := time.Date(now.Year(), now.Month(), now.Day(),
		t.config.ReminderHour, t.config.ReminderMinute, 0, 0, now.Location())
	if now.Before(scheduled) {
		return
	}

	runKey := fmt.Sprintf("reminder:%s", currentDate)
	acquired, err := t.guard.Acquire(ctx, runKey, t.config.GuardTTL)
	if err != nil {
		t.logger.Error("Failed to acquire reminder sweep lease", zap.Error(err))
		return
	}

	t.mu.Lock()
	t.lastRemindDate = currentDate
	t.mu.Unlock()

	if !acquired {
		return
	}

	stats, err := t.reminder.RunSweep(ctx)
	if err != nil {
		t.logger.Error("Reminder sweep failed", zap.Error(err))
		return
	}
	t.logger.Info("Reminder sweep completed",
		zap.Int("matched", stats.Matched),
		zap.Int("notified", stats.Notified),
		zap.Int("failed", stats.Failed),
	)
}

// TriggerEscalation runs the escalation sweep immediately, bypassing the
// interval but not the guard
func (t *SweepTrigger) TriggerEscalation(ctx context.Context) (appbilling.SweepStats, error) {
	return t.escalation.RunSweep(ctx)
}

// TriggerReminder runs the reminder sweep immediately
func (t *SweepTrigger) TriggerReminder(ctx context.Context) (appnotice.ReminderStats, error) {
	return t.reminder.RunSweep(ctx)
}
