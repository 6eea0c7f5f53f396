package model

import "time"

// QuotaStatus is a point-in-time snapshot of the daily API budget.
type QuotaStatus struct {
	Date      time.Time
	Used      int
	Reserved  int
	Limit     int
	ResetsAt  time.Time
	NearLimit bool
	Critical  bool
}

func (q QuotaStatus) Remaining() int {
	r := q.Limit - q.Used - q.Reserved
	if r < 0 {
		return 0
	}
	return r
}

// APICall is one append-only audit row per outbound API operation.
type APICall struct {
	ID         int64
	Operation  string
	Cost       int
	DurationMS int64
	Success    bool
	ErrorText  string
	ItemCount  int
	CalledAt   time.Time
}
