package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appbilling "github.com/propman/backend/internal/application/billing"
	appnotice "github.com/propman/backend/internal/application/notice"
	"github.com/propman/backend/internal/infrastructure/cache"
)

type fakeEscalationRunner struct {
	mu    sync.Mutex
	runs  int
	stats appbilling.SweepStats
	err   error
}

func (f *fakeEscalationRunner) RunSweep(ctx context.Context) (appbilling.SweepStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	return f.stats, f.err
}

func (f *fakeEscalationRunner) Runs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

type fakeReminderRunner struct {
	mu    sync.Mutex
	runs  int
	stats appnotice.ReminderStats
	err   error
}

func (f *fakeReminderRunner) RunSweep(ctx context.Context) (appnotice.ReminderStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	return f.stats, f.err
}

func (f *fakeReminderRunner) Runs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func newTestTrigger(t *testing.T, cfg SweepTriggerConfig) (*SweepTrigger, *fakeEscalationRunner, *fakeReminderRunner) {
	t.Helper()
	esc := &fakeEscalationRunner{}
	rem := &fakeReminderRunner{}
	trigger := NewSweepTrigger(cfg, esc, rem, cache.NewInMemorySweepGuard(), zap.NewNop())
	return trigger, esc, rem
}

func TestSweepTrigger_EscalationRunsWhenIntervalElapsed(t *testing.T) {
	cfg := DefaultSweepTriggerConfig()
	trigger, esc, _ := newTestTrigger(t, cfg)

	// Off the reminder time so only escalation fires.
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	trigger.now = func() time.Time { return now }

	trigger.checkEscalation(context.Background())
	assert.Equal(t, 1, esc.Runs())

	// Same window: interval has not elapsed again.
	trigger.checkEscalation(context.Background())
	assert.Equal(t, 1, esc.Runs())

	// Next window.
	now = now.Add(time.Hour)
	trigger.checkEscalation(context.Background())
	assert.Equal(t, 2, esc.Runs())
}

func TestSweepTrigger_EscalationWindowGuardedAcrossInstances(t *testing.T) {
	cfg := DefaultSweepTriggerConfig()
	guard := cache.NewInMemorySweepGuard()
	esc1 := &fakeEscalationRunner{}
	esc2 := &fakeEscalationRunner{}
	rem := &fakeReminderRunner{}
	first := NewSweepTrigger(cfg, esc1, rem, guard, zap.NewNop())
	second := NewSweepTrigger(cfg, esc2, rem, guard, zap.NewNop())

	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	first.now = func() time.Time { return now }
	second.now = func() time.Time { return now }

	first.checkEscalation(context.Background())
	second.checkEscalation(context.Background())

	assert.Equal(t, 1, esc1.Runs())
	assert.Equal(t, 0, esc2.Runs(), "second instance must lose the lease for the same window")
}

func TestSweepTrigger_ReminderRunsOncePerDay(t *testing.T) {
	cfg := DefaultSweepTriggerConfig()
	trigger, _, rem := newTestTrigger(t, cfg)

	now := time.Date(2025, 6, 1, cfg.ReminderHour, cfg.ReminderMinute, 10, 0, time.UTC)
	trigger.now = func() time.Time { return now }

	trigger.checkReminder(context.Background())
	assert.Equal(t, 1, rem.Runs())

	// Second check in the same minute must not rerun.
	trigger.checkReminder(context.Background())
	assert.Equal(t, 1, rem.Runs())

	// Next day at the same time runs again.
	now = now.AddDate(0, 0, 1)
	trigger.checkReminder(context.Background())
	assert.Equal(t, 2, rem.Runs())
}

func TestSweepTrigger_ReminderSkippedBeforeScheduledTime(t *testing.T) {
	cfg := DefaultSweepTriggerConfig()
	trigger, _, rem := newTestTrigger(t, cfg)

	now := time.Date(2025, 6, 1, cfg.ReminderHour-1, 59, 0, 0, time.UTC)
	trigger.now = func() time.Time { return now }

	trigger.checkReminder(context.Background())
	assert.Equal(t, 0, rem.Runs())
}

func TestSweepTrigger_ReminderFiresOnLateCheck(t *testing.T) {
	cfg := DefaultSweepTriggerConfig()
	cfg.CheckInterval = 10 * time.Minute
	trigger, _, rem := newTestTrigger(t, cfg)

	// A coarse check interval never lands on the exact scheduled minute;
	// the first check after the scheduled time must still run the sweep.
	now := time.Date(2025, 6, 1, cfg.ReminderHour, cfg.ReminderMinute+7, 0, 0, time.UTC)
	trigger.now = func() time.Time { return now }

	trigger.checkReminder(context.Background())
	assert.Equal(t, 1, rem.Runs())

	// Later checks the same day stay deduplicated.
	now = now.Add(10 * time.Minute)
	trigger.checkReminder(context.Background())
	assert.Equal(t, 1, rem.Runs())
}

func TestSweepTrigger_StartStop(t *testing.T) {
	cfg := DefaultSweepTriggerConfig()
	cfg.CheckInterval = 10 * time.Millisecond
	trigger, _, _ := newTestTrigger(t, cfg)

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()), "second start is a no-op")

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(stopCtx))
	require.NoError(t, trigger.Stop(stopCtx), "second stop is a no-op")
}

func TestSweepTrigger_ManualTriggers(t *testing.T) {
	trigger, esc, rem := newTestTrigger(t, DefaultSweepTriggerConfig())
	esc.stats = appbilling.SweepStats{Scanned: 3, Warned: 2, Skipped: 1}
	rem.stats = appnotice.ReminderStats{Matched: 4, Notified: 4}

	sweepStats, err := trigger.TriggerEscalation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sweepStats.Warned)

	remindStats, err := trigger.TriggerReminder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, remindStats.Notified)
}
