package repository

import (
	"database/sql"

	"targetbrowse/pkg/youtube"
)

type VideoRepository struct {
	db *sql.DB
}

func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// EnsureVideoExists upserts the video and its channel, returning the
// internal video id. Idempotent: rediscovering a known video refreshes its
// counters and returns the existing row.
func (r *VideoRepository) EnsureVideoExists(v youtube.Video) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var channelID int64
	err = tx.QueryRow(`
		INSERT INTO channel(youtube_id, name)
		VALUES($1, $2)
		ON CONFLICT (youtube_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, v.ChannelID, v.ChannelName).Scan(&channelID)
	if err != nil {
		return 0, err
	}

	var videoID int64
	err = tx.QueryRow(`
		INSERT INTO video(youtube_id, channel_id, title, published_at, duration, thumbnail_url, description, views, likes, comments)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (youtube_id) DO UPDATE
			SET title = EXCLUDED.title,
			    views = EXCLUDED.views,
			    likes = EXCLUDED.likes,
			    comments = EXCLUDED.comments
		RETURNING id
	`, v.ID, channelID, v.Title, v.PublishedAt, v.Duration, v.ThumbnailURL, v.Description, v.Views, v.Likes, v.Comments).Scan(&videoID)
	if err != nil {
		return 0, err
	}

	return videoID, tx.Commit()
}

func (r *VideoRepository) IsInLibrary(userID string, videoID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM library_video
			WHERE user_id = $1 AND video_id = $2
		)
	`, userID, videoID).Scan(&exists)
	return exists, err
}

func (r *VideoRepository) AddToLibrary(userID string, videoID int64) error {
	_, err := r.db.Exec(`
		INSERT INTO library_video(user_id, video_id)
		VALUES($1, $2)
		ON CONFLICT (user_id, video_id) DO NOTHING
	`, userID, videoID)
	return err
}
