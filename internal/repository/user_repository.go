package repository

import (
	"database/sql"
	"time"

	"targetbrowse/internal/model"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetUserTopics(userID string) ([]model.Topic, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name
		FROM topic
		WHERE user_id = $1
		ORDER BY name
	`, userID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []model.Topic
	for rows.Next() {
		var t model.Topic
		err := rows.Scan(&t.ID, &t.UserID, &t.Name)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topics, nil
}

// GetUserRatings returns the user's channel ratings keyed by the channel's
// external id. Unrated channels are absent from the map.
func (r *UserRepository) GetUserRatings(userID string) (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT youtube_id, rating
		FROM tracked_channel
		WHERE user_id = $1 AND rating > 0
	`, userID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make(map[string]int)
	for rows.Next() {
		var id string
		var rating int
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, err
		}
		ratings[id] = rating
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ratings, nil
}

func (r *UserRepository) GetTrackedChannels(userID string) ([]model.TrackedChannel, error) {
	rows, err := r.db.Query(`
		SELECT youtube_id, name, rating, last_checked_at
		FROM tracked_channel
		WHERE user_id = $1
		ORDER BY name
	`, userID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.TrackedChannel
	for rows.Next() {
		var ch model.TrackedChannel
		var lastChecked sql.NullTime
		err := rows.Scan(&ch.YouTubeID, &ch.Name, &ch.Rating, &lastChecked)
		if err != nil {
			return nil, err
		}
		if lastChecked.Valid {
			t := lastChecked.Time
			ch.LastCheckedAt = &t
		}
		channels = append(channels, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return channels, nil
}

func (r *UserRepository) UpdateChannelLastChecked(userID, channelID string, checkedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE tracked_channel SET last_checked_at = $1
		WHERE user_id = $2 AND youtube_id = $3
	`, checkedAt, userID, channelID)
	return err
}
