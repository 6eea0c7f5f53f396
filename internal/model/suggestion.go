package model

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

// ExpiryWindow is how long a pending suggestion stays actionable before the
// cleanup sweep removes it. Expiry is computed from CreatedAt, never stored.
const ExpiryWindow = 30 * 24 * time.Hour

type Suggestion struct {
	ID        int64
	UserID    string
	VideoID   int64
	YouTubeID string
	Title     string
	Reason    string
	Status    string
	Score     float64
	CreatedAt time.Time
}

func (s Suggestion) ExpiresAt() time.Time {
	return s.CreatedAt.Add(ExpiryWindow)
}

func (s Suggestion) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt())
}

type Video struct {
	ID           int64
	YouTubeID    string
	Title        string
	ChannelID    int64
	PublishedAt  time.Time
	Duration     string
	ThumbnailURL string
	Description  string
	Views        int64
	Likes        int64
	Comments     int64
}

type Channel struct {
	ID        int64
	YouTubeID string
	Name      string
}
