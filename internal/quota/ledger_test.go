package quota

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"targetbrowse/internal/model"
)

type fakeRecorder struct {
	calls []model.APICall
	err   error
}

func (f *fakeRecorder) SaveAPICall(call model.APICall) error {
	f.calls = append(f.calls, call)
	return f.err
}

func TestTryReserve_WithinLimit(t *testing.T) {
	ledger := NewLedger(Config{DailyLimit: 1000, NearLimitFraction: 0.8, CriticalFraction: 0.95}, nil)
	ledger.Prime(400)

	assert.Equal(t, true, ledger.TryReserve(600))
	ledger.Release(600)
	assert.Equal(t, false, ledger.TryReserve(601))
}

func TestTryReserve_CountsHeldReservations(t *testing.T) {
	ledger := NewLedger(Config{DailyLimit: 1000, NearLimitFraction: 0.8, CriticalFraction: 0.95}, nil)
	ledger.Prime(400)

	assert.Equal(t, true, ledger.TryReserve(500))
	assert.Equal(t, false, ledger.TryReserve(101))
	assert.Equal(t, true, ledger.TryReserve(100))

	// A failed attempt must not have reserved anything.
	ledger.Release(100)
	ledger.Release(500)
	assert.Equal(t, true, ledger.TryReserve(600))
}

func TestTryReserve_Arithmetic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		limit := rng.Intn(20000)
		used := rng.Intn(20000)
		cost := rng.Intn(500)

		ledger := NewLedger(Config{DailyLimit: limit, NearLimitFraction: 0.8, CriticalFraction: 0.95}, nil)
		ledger.Prime(used)

		want := used+cost <= limit
		assert.Equal(t, want, ledger.TryReserve(cost))
	}
}

func TestTryReserve_ConcurrentCallersCannotOvershoot(t *testing.T) {
	ledger := NewLedger(Config{DailyLimit: 50, NearLimitFraction: 0.8, CriticalFraction: 0.95}, nil)

	var wg sync.WaitGroup
	var granted atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ledger.TryReserve(10) {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	// Exactly the budget's worth of reservations may succeed, never more.
	assert.Equal(t, int32(5), granted.Load())
	assert.Equal(t, 50, ledger.Status().Reserved)
}

func TestRecord_ChargesAndAudits(t *testing.T) {
	recorder := &fakeRecorder{}
	ledger := NewLedger(Config{DailyLimit: 1000, NearLimitFraction: 0.8, CriticalFraction: 0.95}, recorder)

	ledger.Record("search.topic", 100, true, 120*time.Millisecond, "", 7)

	assert.Equal(t, 100, ledger.Status().Used)
	assert.Equal(t, 1, len(recorder.calls))
	assert.Equal(t, "search.topic", recorder.calls[0].Operation)
	assert.Equal(t, 100, recorder.calls[0].Cost)
	assert.Equal(t, true, recorder.calls[0].Success)
	assert.Equal(t, 7, recorder.calls[0].ItemCount)
}

func TestRecord_ZeroCostFailure(t *testing.T) {
	recorder := &fakeRecorder{}
	ledger := NewLedger(Config{DailyLimit: 1000, NearLimitFraction: 0.8, CriticalFraction: 0.95}, recorder)

	ledger.Record("search.channel", 0, false, 50*time.Millisecond, "connection refused", 0)

	assert.Equal(t, 0, ledger.Status().Used)
	assert.Equal(t, 1, len(recorder.calls))
	assert.Equal(t, false, recorder.calls[0].Success)
}

func TestRecord_AuditFailureIsNotFatal(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("DB down")}
	ledger := NewLedger(Config{DailyLimit: 1000, NearLimitFraction: 0.8, CriticalFraction: 0.95}, recorder)

	ledger.Record("videos.details", 1, true, time.Millisecond, "", 10)

	assert.Equal(t, 1, ledger.Status().Used)
}

func TestReset_ClearsState(t *testing.T) {
	ledger := NewLedger(DefaultConfig(), nil)
	ledger.Prime(9900)
	ledger.TryReserve(50)

	assert.Equal(t, true, ledger.Status().Critical)

	ledger.Reset()

	status := ledger.Status()
	assert.Equal(t, 0, status.Used)
	assert.Equal(t, 0, status.Reserved)
	assert.Equal(t, false, status.Critical)
	assert.Equal(t, false, status.NearLimit)

	// A second reset must be harmless.
	ledger.Reset()
	assert.Equal(t, 0, ledger.Status().Used)
}

func TestStatus_Thresholds(t *testing.T) {
	ledger := NewLedger(Config{DailyLimit: 100, NearLimitFraction: 0.8, CriticalFraction: 0.95}, nil)

	ledger.Prime(79)
	assert.Equal(t, false, ledger.Status().NearLimit)

	ledger.Prime(80)
	status := ledger.Status()
	assert.Equal(t, true, status.NearLimit)
	assert.Equal(t, false, status.Critical)

	ledger.Prime(95)
	status = ledger.Status()
	assert.Equal(t, true, status.NearLimit)
	assert.Equal(t, true, status.Critical)
}

func TestStatus_ResetsAtIsNextUTCMidnight(t *testing.T) {
	ledger := NewLedger(DefaultConfig(), nil)

	resetsAt := ledger.Status().ResetsAt
	assert.Equal(t, 0, resetsAt.Hour())
	assert.Equal(t, 0, resetsAt.Minute())
	assert.Equal(t, true, resetsAt.After(time.Now().UTC()))
}
