package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Notifier interface {
	NotifyInfo(text string)
	NotifyWarning(text string)
}

// Cleaner is the optional daily maintenance hook run right after the quota
// reset, used to sweep expired suggestions.
type Cleaner interface {
	CleanupExpired() (int64, error)
}

type SchedulerConfig struct {
	CheckInterval time.Duration
	RetryBackoff  time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		CheckInterval: 15 * time.Minute,
		RetryBackoff:  time.Minute,
	}
}

// Scheduler is the long-lived loop that resets the ledger at each UTC
// midnight and raises usage alerts during the day. One alert per level per
// day; a new day rearms both levels.
type Scheduler struct {
	ledger   *Ledger
	notifier Notifier
	cleaner  Cleaner
	cfg      SchedulerConfig

	alertedNearOn     time.Time
	alertedCriticalOn time.Time
}

func NewScheduler(ledger *Ledger, notifier Notifier, cleaner Cleaner, cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		ledger:   ledger,
		notifier: notifier,
		cleaner:  cleaner,
		cfg:      cfg,
	}
}

// Run blocks until ctx is canceled. Failures in one iteration are logged
// and retried after a backoff; the loop itself never exits on error.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("quota scheduler started", "check_interval", s.cfg.CheckInterval)

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	resetTimer := time.NewTimer(time.Until(s.ledger.ResetsAt()))
	defer resetTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("quota scheduler stopped")
			return

		case <-resetTimer.C:
			s.ledger.Reset()
			s.notifier.NotifyInfo("Daily API quota has been reset")
			slog.Info("daily quota reset")

			if s.cleaner != nil {
				if err := s.runCleanup(ctx); err != nil {
					slog.Error("expired suggestion cleanup failed", "error", err)
				}
			}

			resetTimer.Reset(time.Until(s.ledger.ResetsAt()))

		case <-ticker.C:
			s.checkThresholds()
		}
	}
}

func (s *Scheduler) checkThresholds() {
	status := s.ledger.Status()
	today := status.Date

	if status.Critical && !s.alertedCriticalOn.Equal(today) {
		s.alertedCriticalOn = today
		// Critical supersedes near-limit for the rest of the day.
		s.alertedNearOn = today
		s.notifier.NotifyWarning(fmt.Sprintf(
			"API quota critical: %d of %d units used, resets at %s",
			status.Used, status.Limit, status.ResetsAt.Format(time.RFC3339)))
		slog.Warn("quota critical", "used", status.Used, "limit", status.Limit)
		return
	}

	if status.NearLimit && !s.alertedNearOn.Equal(today) {
		s.alertedNearOn = today
		s.notifier.NotifyWarning(fmt.Sprintf(
			"API quota warning: %d of %d units used",
			status.Used, status.Limit))
		slog.Warn("quota near limit", "used", status.Used, "limit", status.Limit)
	}
}

func (s *Scheduler) runCleanup(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.cfg.RetryBackoff):
			}
		}

		removed, err := s.cleaner.CleanupExpired()
		if err != nil {
			lastErr = err
			slog.Warn("cleanup attempt failed, backing off", "attempt", attempt+1, "error", err)
			continue
		}

		if removed > 0 {
			s.notifier.NotifyInfo(fmt.Sprintf("Removed %d expired suggestions", removed))
		}
		slog.Info("expired suggestions cleaned up", "removed", removed)
		return nil
	}
	return lastErr
}
