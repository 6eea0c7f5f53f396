package quota

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

type fakeNotifier struct {
	mu       sync.Mutex
	infos    []string
	warnings []string
}

func (f *fakeNotifier) NotifyInfo(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos = append(f.infos, text)
}

func (f *fakeNotifier) NotifyWarning(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warnings = append(f.warnings, text)
}

func (f *fakeNotifier) warningCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.warnings)
}

func TestScheduler_CriticalAlertFiresOncePerDay(t *testing.T) {
	ledger := NewLedger(Config{DailyLimit: 100, NearLimitFraction: 0.8, CriticalFraction: 0.95}, nil)
	ledger.Prime(96)

	notifier := &fakeNotifier{}
	scheduler := NewScheduler(ledger, notifier, nil, SchedulerConfig{
		CheckInterval: 5 * time.Millisecond,
		RetryBackoff:  time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	scheduler.Run(ctx)

	// Several ticks elapsed but the critical alert must fire only once, and
	// the still-true near-limit condition must not add a second warning.
	assert.Equal(t, 1, notifier.warningCount())
	assert.Equal(t, true, strings.Contains(notifier.warnings[0], "critical"))
}

func TestScheduler_NearLimitAlertFiresOncePerDay(t *testing.T) {
	ledger := NewLedger(Config{DailyLimit: 100, NearLimitFraction: 0.8, CriticalFraction: 0.95}, nil)
	ledger.Prime(85)

	notifier := &fakeNotifier{}
	scheduler := NewScheduler(ledger, notifier, nil, SchedulerConfig{
		CheckInterval: 5 * time.Millisecond,
		RetryBackoff:  time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	scheduler.Run(ctx)

	assert.Equal(t, 1, notifier.warningCount())
	assert.Equal(t, true, strings.Contains(notifier.warnings[0], "warning"))
}

func TestScheduler_NoAlertBelowThresholds(t *testing.T) {
	ledger := NewLedger(Config{DailyLimit: 100, NearLimitFraction: 0.8, CriticalFraction: 0.95}, nil)
	ledger.Prime(10)

	notifier := &fakeNotifier{}
	scheduler := NewScheduler(ledger, notifier, nil, SchedulerConfig{
		CheckInterval: 5 * time.Millisecond,
		RetryBackoff:  time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	scheduler.Run(ctx)

	assert.Equal(t, 0, notifier.warningCount())
}
