package model

import "time"

type Topic struct {
	ID     int64
	UserID string
	Name   string
}

// TrackedChannel is a channel the user follows for upload polling. Rating is
// 1-5 stars, 0 when the user has not rated the channel. LastCheckedAt is nil
// for channels that have never been polled.
type TrackedChannel struct {
	YouTubeID     string
	Name          string
	Rating        int
	LastCheckedAt *time.Time
}
