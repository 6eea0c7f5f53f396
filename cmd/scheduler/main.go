package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"targetbrowse/db"
	"targetbrowse/internal/model"
	"targetbrowse/internal/notify"
	"targetbrowse/internal/quota"
	"targetbrowse/internal/repository"
)

// expiredCleaner adapts the suggestion repository to the scheduler's daily
// maintenance hook.
type expiredCleaner struct {
	repo *repository.SuggestionRepository
}

func (c expiredCleaner) CleanupExpired() (int64, error) {
	return c.repo.DeleteExpiredPending(time.Now().Add(-model.ExpiryWindow))
}

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	err = db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	quotaRepo := repository.NewQuotaRepository(db.DB)
	suggestionRepo := repository.NewSuggestionRepository(db.DB)
	notifier := notify.NewQueueNotifier(db.NotifyQueueKey)

	if depth, err := db.GetQueueLength(db.NotifyQueueKey); err != nil {
		slog.Warn("error reading notification queue length", "error", err)
	} else {
		slog.Info("notification queue backlog", "depth", depth)
	}

	ledger := quota.NewLedger(quota.DefaultConfig(), quotaRepo)
	if used, err := quotaRepo.UsedToday(); err != nil {
		slog.Error("error loading today's quota usage, starting from zero", "error", err)
	} else {
		ledger.Prime(used)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := quota.NewScheduler(ledger, notifier, expiredCleaner{repo: suggestionRepo}, quota.DefaultSchedulerConfig())
	scheduler.Run(ctx)
}
