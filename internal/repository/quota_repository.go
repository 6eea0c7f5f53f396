package repository

import (
	"database/sql"

	"targetbrowse/internal/model"
)

type QuotaRepository struct {
	db *sql.DB
}

func NewQuotaRepository(db *sql.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

func (r *QuotaRepository) SaveAPICall(call model.APICall) error {
	_, err := r.db.Exec(`
		INSERT INTO api_call(operation, cost, duration_ms, success, error_text, item_count, called_at)
		VALUES($1, $2, $3, $4, $5, $6, $7)
	`, call.Operation, call.Cost, call.DurationMS, call.Success, call.ErrorText, call.ItemCount, call.CalledAt)
	return err
}

// UsedToday sums the cost of today's calls (UTC day), used to seed the
// ledger after a restart.
func (r *QuotaRepository) UsedToday() (int, error) {
	var used int
	err := r.db.QueryRow(`
		SELECT COALESCE(SUM(cost), 0) FROM api_call
		WHERE called_at >= date_trunc('day', now() AT TIME ZONE 'utc')
	`).Scan(&used)
	return used, err
}

func (r *QuotaRepository) CallCountToday() (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM api_call
		WHERE called_at >= date_trunc('day', now() AT TIME ZONE 'utc')
	`).Scan(&count)
	return count, err
}
