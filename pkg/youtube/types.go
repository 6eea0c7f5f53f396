package youtube

import "time"

// Video is a discovered video as returned by the platform API. Counter and
// duration fields are zero until the result has been enriched with a detail
// lookup.
type Video struct {
	ID           string
	Title        string
	ChannelID    string
	ChannelName  string
	PublishedAt  time.Time
	Duration     string
	ThumbnailURL string
	Description  string
	Views        int64
	Likes        int64
	Comments     int64
}

// ChannelUpdateRequest describes one channel to poll for new uploads.
type ChannelUpdateRequest struct {
	ChannelID string
	LastCheck time.Time
	Rating    int
}

// BulkError records a single failed input inside an otherwise-continuing
// bulk operation.
type BulkError struct {
	Input string
	Err   error
}

// BulkResult carries the partial outcome of a bulk operation: everything
// that succeeded, everything that failed, and a terminal error when the run
// was cut short by quota exhaustion.
type BulkResult struct {
	Items []Video

	// CheckedChannels lists channel IDs whose poll succeeded
	// (BulkChannelUpdates only).
	CheckedChannels []string

	// TopicMatches maps video ID to the topic queries that found it
	// (BulkTopicSearch only).
	TopicMatches map[string][]string

	Failed []BulkError

	// Err is non-nil only when the run was truncated; Items still holds
	// whatever was fetched before that point.
	Err error
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet snippet `json:"snippet"`
}

type videoListResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID             string `json:"id"`
	Snippet        snippet `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
}

type snippet struct {
	Title        string `json:"title"`
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Description  string `json:"description"`
	Thumbnails   struct {
		Medium struct {
			URL string `json:"url"`
		} `json:"medium"`
	} `json:"thumbnails"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
