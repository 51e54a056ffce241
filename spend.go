package l402

import (
	"fmt"
	"sync"
	"time"
)

// rateWindow is the trailing window over which the payment rate limit
// is evaluated.
const rateWindow = time.Minute

// SpendingLimits configures a SpendingTracker. A zero value for any
// field disables that rule.
type SpendingLimits struct {
	// MaxPerPayment is the largest single payment allowed, in
	// satoshis.
	MaxPerPayment int64

	// TotalBudget is the all-time spending budget, in satoshis.
	TotalBudget int64

	// MaxPaymentsPerMinute caps how many payments may be recorded
	// within any trailing one-minute window.
	MaxPaymentsPerMinute int
}

// spendRecord is one recorded payment.
type spendRecord struct {
	amountSats int64
	key        string
	at         time.Time
}

// SpendingTracker enforces per-payment, total-budget, and trailing
// one-minute rate limits over the payments a client makes. Payments
// for different resources can settle concurrently, so all state is
// mutex-guarded.
type SpendingTracker struct {
	mu      sync.Mutex
	limits  SpendingLimits
	total   int64
	records []spendRecord

	// now is overridable for tests.
	now func() time.Time
}

// NewSpendingTracker creates a SpendingTracker with the given limits.
func NewSpendingTracker(limits SpendingLimits) *SpendingTracker {
	return &SpendingTracker{
		limits: limits,
		now:    time.Now,
	}
}

// Check validates a prospective payment against the configured rules,
// in order: per-payment limit, remaining total budget, rate window.
// It returns a budget-kind error naming the violated rule, or nil.
// Check moves no funds and records nothing.
func (t *SpendingTracker) Check(amountSats int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.limits.MaxPerPayment > 0 && amountSats > t.limits.MaxPerPayment {
		return NewBudgetError(
			fmt.Sprintf("payment of %d sats exceeds per-payment limit of %d sats", amountSats, t.limits.MaxPerPayment),
			ErrBudgetExceeded)
	}
	if t.limits.TotalBudget > 0 && t.total+amountSats > t.limits.TotalBudget {
		return NewBudgetError(
			fmt.Sprintf("payment of %d sats exceeds remaining total budget of %d sats", amountSats, t.limits.TotalBudget-t.total),
			ErrBudgetExceeded)
	}
	if t.limits.MaxPaymentsPerMinute > 0 && t.countInWindowLocked() >= t.limits.MaxPaymentsPerMinute {
		return NewBudgetError(
			fmt.Sprintf("rate limit of %d payments per minute reached", t.limits.MaxPaymentsPerMinute),
			ErrBudgetExceeded)
	}
	return nil
}

// Record appends a settled payment and prunes records that have aged
// out of the rate window. Pruning is an optimization only: Check
// filters by timestamp regardless.
func (t *SpendingTracker) Record(amountSats int64, resourceKey string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total += amountSats
	t.records = append(t.records, spendRecord{
		amountSats: amountSats,
		key:        resourceKey,
		at:         t.now(),
	})

	cutoff := t.now().Add(-rateWindow)
	kept := t.records[:0]
	for _, r := range t.records {
		if r.at.After(cutoff) {
			kept = append(kept, r)
		}
	}
	t.records = kept
}

// TotalSpent returns the running total of recorded payments in
// satoshis.
func (t *SpendingTracker) TotalSpent() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Reset clears the running total and all records.
func (t *SpendingTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = 0
	t.records = nil
}

func (t *SpendingTracker) countInWindowLocked() int {
	cutoff := t.now().Add(-rateWindow)
	n := 0
	for _, r := range t.records {
		if r.at.After(cutoff) {
			n++
		}
	}
	return n
}
