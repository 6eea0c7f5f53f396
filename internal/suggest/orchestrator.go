package suggest

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"targetbrowse/internal/model"
	"targetbrowse/pkg/youtube"
)

// VideoSearcher is the slice of the API client the orchestrator uses.
type VideoSearcher interface {
	BulkChannelUpdates(ctx context.Context, requests []youtube.ChannelUpdateRequest, maxPerChannel int) youtube.BulkResult
	BulkTopicSearch(ctx context.Context, topics []string, publishedAfter time.Time, maxPerTopic int) youtube.BulkResult
}

// UserStore supplies the read-only user lookups and the last-checked
// write-back for polled channels.
type UserStore interface {
	GetUserTopics(userID string) ([]model.Topic, error)
	GetUserRatings(userID string) (map[string]int, error)
	GetTrackedChannels(userID string) ([]model.TrackedChannel, error)
	UpdateChannelLastChecked(userID, channelID string, checkedAt time.Time) error
}

// Discovery is the combined output of both strategies for one request.
type Discovery struct {
	ChannelVideos []youtube.Video
	TopicVideos   []youtube.Video
	TopicMatches  map[string][]string
	Truncated     bool
}

// Orchestrator runs the two discovery strategies. Both are best-effort: any
// failure short of caller cancellation degrades to partial or empty results
// instead of propagating, and a failure in one strategy never blocks the
// other.
type Orchestrator struct {
	searcher VideoSearcher
	users    UserStore
	cfg      Config
	now      func() time.Time
}

func NewOrchestrator(searcher VideoSearcher, users UserStore, cfg Config) *Orchestrator {
	return &Orchestrator{
		searcher: searcher,
		users:    users,
		cfg:      cfg,
		now:      time.Now,
	}
}

// refreshInterval maps a channel rating tier to how often the channel is
// re-polled. Bottom-tier and unrated channels are never re-polled.
func refreshInterval(rating int) (time.Duration, bool) {
	switch rating {
	case 5:
		return 5 * 24 * time.Hour, true
	case 4:
		return 7 * 24 * time.Hour, true
	case 3:
		return 10 * 24 * time.Hour, true
	case 2:
		return 14 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// channelDue reports whether a tracked channel should be polled now. A
// channel that has never been checked is always due.
func channelDue(ch model.TrackedChannel, now time.Time) bool {
	if ch.LastCheckedAt == nil {
		return true
	}
	interval, ok := refreshInterval(ch.Rating)
	if !ok {
		return false
	}
	return now.Sub(*ch.LastCheckedAt) >= interval
}

// Discover runs both strategies concurrently. The only error it returns is
// caller cancellation.
func (o *Orchestrator) Discover(ctx context.Context, userID string) (Discovery, error) {
	var d Discovery
	var channelPart, topicPart Discovery

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		channelPart = o.FetchChannelUpdates(gctx, userID)
		return nil
	})
	g.Go(func() error {
		topicPart = o.FetchTopicMatches(gctx, userID)
		return nil
	})
	g.Wait()

	if err := ctx.Err(); err != nil {
		return d, err
	}

	d.ChannelVideos = channelPart.ChannelVideos
	d.TopicVideos = topicPart.TopicVideos
	d.TopicMatches = topicPart.TopicMatches
	d.Truncated = channelPart.Truncated || topicPart.Truncated
	return d, nil
}

// FetchChannelUpdates polls the user's tracked channels that are due for a
// check and stamps last-checked for each channel whose poll succeeded.
func (o *Orchestrator) FetchChannelUpdates(ctx context.Context, userID string) Discovery {
	var d Discovery

	channels, err := o.users.GetTrackedChannels(userID)
	if err != nil {
		slog.Error("error loading tracked channels", "user_id", userID, "error", err)
		return d
	}

	now := o.now()
	var requests []youtube.ChannelUpdateRequest
	for _, ch := range channels {
		if !channelDue(ch, now) {
			continue
		}
		req := youtube.ChannelUpdateRequest{ChannelID: ch.YouTubeID, Rating: ch.Rating}
		if ch.LastCheckedAt != nil {
			req.LastCheck = *ch.LastCheckedAt
		}
		requests = append(requests, req)
	}

	if len(requests) == 0 {
		return d
	}

	result := o.searcher.BulkChannelUpdates(ctx, requests, o.cfg.MaxPerChannel)
	if result.Err != nil {
		slog.Warn("channel updates truncated", "user_id", userID, "error", result.Err)
		d.Truncated = true
	}

	for _, channelID := range result.CheckedChannels {
		if err := o.users.UpdateChannelLastChecked(userID, channelID, now); err != nil {
			slog.Error("error updating channel last-checked", "channel_id", channelID, "error", err)
		}
	}

	d.ChannelVideos = result.Items
	return d
}

// FetchTopicMatches searches the user's topics within the lookback window.
func (o *Orchestrator) FetchTopicMatches(ctx context.Context, userID string) Discovery {
	var d Discovery

	topics, err := o.users.GetUserTopics(userID)
	if err != nil {
		slog.Error("error loading topics", "user_id", userID, "error", err)
		return d
	}
	if len(topics) == 0 {
		return d
	}

	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}

	publishedAfter := o.now().Add(-o.cfg.TopicLookback)
	result := o.searcher.BulkTopicSearch(ctx, names, publishedAfter, o.cfg.MaxPerTopic)
	if result.Err != nil {
		slog.Warn("topic search truncated", "user_id", userID, "error", result.Err)
		d.Truncated = true
	}

	d.TopicVideos = result.Items
	d.TopicMatches = result.TopicMatches
	return d
}
