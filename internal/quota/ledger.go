package quota

import (
	"log/slog"
	"sync"
	"time"

	"targetbrowse/internal/model"
)

// CallRecorder persists the append-only audit trail of API calls. Audit
// failures are logged, never propagated; the in-memory counter is the source
// of truth for budget decisions.
type CallRecorder interface {
	SaveAPICall(call model.APICall) error
}

type Config struct {
	DailyLimit        int
	NearLimitFraction float64
	CriticalFraction  float64
}

func DefaultConfig() Config {
	return Config{
		DailyLimit:        10000,
		NearLimitFraction: 0.80,
		CriticalFraction:  0.95,
	}
}

// Ledger tracks daily consumption of the metered API budget. A single
// mutex serializes all updates; every in-flight call reserves its estimated
// cost so concurrent callers cannot jointly overshoot the limit.
type Ledger struct {
	mu        sync.Mutex
	cfg       Config
	used      int
	reserved  int
	lastReset time.Time
	recorder  CallRecorder
	now       func() time.Time
}

func NewLedger(cfg Config, recorder CallRecorder) *Ledger {
	return &Ledger{
		cfg:       cfg,
		lastReset: time.Now().UTC(),
		recorder:  recorder,
		now:       time.Now,
	}
}

// Prime seeds the used counter, typically from the persisted audit trail at
// startup so a restart does not forget today's spend.
func (l *Ledger) Prime(used int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.used = used
}

// TryReserve atomically checks the budget and reserves cost units under one
// lock hold, so two concurrent callers can never both pass the check on the
// same remaining headroom. On false nothing is reserved.
func (l *Ledger) TryReserve(cost int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.used+l.reserved+cost > l.cfg.DailyLimit {
		return false
	}
	l.reserved += cost
	return true
}

func (l *Ledger) Release(cost int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reserved -= cost
	if l.reserved < 0 {
		l.reserved = 0
	}
}

// Record charges cost against the budget and appends an audit row. Failed
// calls are charged whatever cost they actually incurred; pure network
// failures and provider-side quota refusals pass zero.
func (l *Ledger) Record(op string, cost int, success bool, duration time.Duration, errText string, items int) {
	l.mu.Lock()
	l.used += cost
	l.mu.Unlock()

	if l.recorder == nil {
		return
	}

	call := model.APICall{
		Operation:  op,
		Cost:       cost,
		DurationMS: duration.Milliseconds(),
		Success:    success,
		ErrorText:  errText,
		ItemCount:  items,
		CalledAt:   l.now().UTC(),
	}
	if err := l.recorder.SaveAPICall(call); err != nil {
		slog.Error("error saving API call audit record", "operation", op, "error", err)
	}
}

// Reset zeroes the counters and stamps the reset time. Calling it more than
// once within the same UTC day is harmless.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.used = 0
	l.reserved = 0
	l.lastReset = l.now().UTC()
}

// Status returns a derived snapshot; it never mutates the ledger.
func (l *Ledger) Status() model.QuotaStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	limit := l.cfg.DailyLimit
	return model.QuotaStatus{
		Date:      now.Truncate(24 * time.Hour),
		Used:      l.used,
		Reserved:  l.reserved,
		Limit:     limit,
		ResetsAt:  nextUTCMidnight(now),
		NearLimit: float64(l.used) >= l.cfg.NearLimitFraction*float64(limit),
		Critical:  float64(l.used) >= l.cfg.CriticalFraction*float64(limit),
	}
}

// ResetsAt reports the next UTC midnight, when the provider renews the
// budget.
func (l *Ledger) ResetsAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return nextUTCMidnight(l.now().UTC())
}

func nextUTCMidnight(now time.Time) time.Time {
	year, month, day := now.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
