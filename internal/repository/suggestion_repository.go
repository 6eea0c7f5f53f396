package repository

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"targetbrowse/internal/model"
)

type SuggestionRepository struct {
	db *sql.DB
}

func NewSuggestionRepository(db *sql.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

// Active means pending and not yet past the expiry window. The uniqueness
// of one active suggestion per (user, video) is enforced by the caller's
// pre-insert check, not a database constraint.
func (r *SuggestionRepository) HasActivePending(userID string, videoID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM suggestion
			WHERE user_id = $1 AND video_id = $2 AND status = $3 AND created_at > $4
		)
	`, userID, videoID, model.StatusPending, time.Now().Add(-model.ExpiryWindow)).Scan(&exists)
	return exists, err
}

func (r *SuggestionRepository) CountActivePending(userID string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM suggestion
		WHERE user_id = $1 AND status = $2 AND created_at > $3
	`, userID, model.StatusPending, time.Now().Add(-model.ExpiryWindow)).Scan(&count)
	return count, err
}

// InsertWithTopics persists the suggestion and its topic links in one
// transaction: a failed link insert rolls the suggestion back too.
func (r *SuggestionRepository) InsertWithTopics(s *model.Suggestion, topicIDs []int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO suggestion(user_id, video_id, reason, status, score, created_at)
		VALUES($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, s.UserID, s.VideoID, s.Reason, s.Status, s.Score, s.CreatedAt).Scan(&s.ID)
	if err != nil {
		return err
	}

	if len(topicIDs) > 0 {
		_, err = tx.Exec(`
			INSERT INTO suggestion_topic(suggestion_id, topic_id)
			SELECT $1, unnest($2::bigint[])
		`, s.ID, pq.Array(topicIDs))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SuggestionRepository) GetByID(id int64) (*model.Suggestion, error) {
	var s model.Suggestion
	err := r.db.QueryRow(`
		SELECT s.id, s.user_id, s.video_id, v.youtube_id, v.title, s.reason, s.status, s.score, s.created_at
		FROM suggestion s
		JOIN video v ON v.id = s.video_id
		WHERE s.id = $1
	`, id).Scan(&s.ID, &s.UserID, &s.VideoID, &s.YouTubeID, &s.Title, &s.Reason, &s.Status, &s.Score, &s.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *SuggestionRepository) GetPending(userID string, limit, offset int) ([]model.Suggestion, error) {
	rows, err := r.db.Query(`
		SELECT s.id, s.user_id, s.video_id, v.youtube_id, v.title, s.reason, s.status, s.score, s.created_at
		FROM suggestion s
		JOIN video v ON v.id = s.video_id
		WHERE s.user_id = $1 AND s.status = $2 AND s.created_at > $3
		ORDER BY s.score DESC, s.created_at DESC
		LIMIT $4 OFFSET $5
	`, userID, model.StatusPending, time.Now().Add(-model.ExpiryWindow), limit, offset)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []model.Suggestion
	for rows.Next() {
		var s model.Suggestion
		err := rows.Scan(&s.ID, &s.UserID, &s.VideoID, &s.YouTubeID, &s.Title, &s.Reason, &s.Status, &s.Score, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return suggestions, nil
}

func (r *SuggestionRepository) UpdateStatus(id int64, status string) error {
	_, err := r.db.Exec(`
		UPDATE suggestion SET status = $1 WHERE id = $2
	`, status, id)
	return err
}

// DeleteExpiredPending removes pending suggestions created before the
// cutoff. Topic links go with them.
func (r *SuggestionRepository) DeleteExpiredPending(olderThan time.Time) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		DELETE FROM suggestion_topic
		WHERE suggestion_id IN (
			SELECT id FROM suggestion
			WHERE status = $1 AND created_at <= $2
		)
	`, model.StatusPending, olderThan)
	if err != nil {
		return 0, err
	}

	res, err := tx.Exec(`
		DELETE FROM suggestion
		WHERE status = $1 AND created_at <= $2
	`, model.StatusPending, olderThan)
	if err != nil {
		return 0, err
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return removed, tx.Commit()
}
