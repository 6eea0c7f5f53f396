package suggest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"targetbrowse/internal/model"
	"targetbrowse/pkg/youtube"
)

type fakeSearcher struct {
	channelRequests []youtube.ChannelUpdateRequest
	channelResult   youtube.BulkResult
	topicNames      []string
	publishedAfter  time.Time
	topicResult     youtube.BulkResult
}

func (f *fakeSearcher) BulkChannelUpdates(ctx context.Context, requests []youtube.ChannelUpdateRequest, maxPerChannel int) youtube.BulkResult {
	f.channelRequests = requests
	return f.channelResult
}

func (f *fakeSearcher) BulkTopicSearch(ctx context.Context, topics []string, publishedAfter time.Time, maxPerTopic int) youtube.BulkResult {
	f.topicNames = topics
	f.publishedAfter = publishedAfter
	return f.topicResult
}

type fakeUserStore struct {
	topics      []model.Topic
	topicsErr   error
	ratings     map[string]int
	channels    []model.TrackedChannel
	channelsErr error
	stamped     map[string]time.Time
}

func (f *fakeUserStore) GetUserTopics(userID string) ([]model.Topic, error) {
	return f.topics, f.topicsErr
}

func (f *fakeUserStore) GetUserRatings(userID string) (map[string]int, error) {
	return f.ratings, nil
}

func (f *fakeUserStore) GetTrackedChannels(userID string) ([]model.TrackedChannel, error) {
	return f.channels, f.channelsErr
}

func (f *fakeUserStore) UpdateChannelLastChecked(userID, channelID string, checkedAt time.Time) error {
	if f.stamped == nil {
		f.stamped = map[string]time.Time{}
	}
	f.stamped[channelID] = checkedAt
	return nil
}

func daysAgo(now time.Time, days int) *time.Time {
	t := now.Add(-time.Duration(days) * 24 * time.Hour)
	return &t
}

func TestChannelDue_RatingTiers(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name    string
		channel model.TrackedChannel
		want    bool
	}{
		{"five star checked 4 days ago", model.TrackedChannel{Rating: 5, LastCheckedAt: daysAgo(now, 4)}, false},
		{"five star checked 6 days ago", model.TrackedChannel{Rating: 5, LastCheckedAt: daysAgo(now, 6)}, true},
		{"four star checked 6 days ago", model.TrackedChannel{Rating: 4, LastCheckedAt: daysAgo(now, 6)}, false},
		{"four star checked 8 days ago", model.TrackedChannel{Rating: 4, LastCheckedAt: daysAgo(now, 8)}, true},
		{"three star checked 9 days ago", model.TrackedChannel{Rating: 3, LastCheckedAt: daysAgo(now, 9)}, false},
		{"three star checked 11 days ago", model.TrackedChannel{Rating: 3, LastCheckedAt: daysAgo(now, 11)}, true},
		{"two star checked 15 days ago", model.TrackedChannel{Rating: 2, LastCheckedAt: daysAgo(now, 15)}, true},
		{"one star checked a year ago", model.TrackedChannel{Rating: 1, LastCheckedAt: daysAgo(now, 365)}, false},
		{"unrated checked a year ago", model.TrackedChannel{Rating: 0, LastCheckedAt: daysAgo(now, 365)}, false},
		{"never checked five star", model.TrackedChannel{Rating: 5}, true},
		{"never checked unrated", model.TrackedChannel{Rating: 0}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, channelDue(tc.channel, now))
		})
	}
}

func TestFetchChannelUpdates_PollsOnlyDueChannels(t *testing.T) {
	now := time.Now()
	searcher := &fakeSearcher{
		channelResult: youtube.BulkResult{
			Items:           []youtube.Video{{ID: "v1", ChannelID: "UC-due"}},
			CheckedChannels: []string{"UC-due"},
		},
	}
	users := &fakeUserStore{
		channels: []model.TrackedChannel{
			{YouTubeID: "UC-due", Rating: 5, LastCheckedAt: daysAgo(now, 6)},
			{YouTubeID: "UC-fresh", Rating: 5, LastCheckedAt: daysAgo(now, 1)},
			{YouTubeID: "UC-dormant", Rating: 1, LastCheckedAt: daysAgo(now, 100)},
		},
	}

	o := NewOrchestrator(searcher, users, DefaultConfig())
	d := o.FetchChannelUpdates(context.Background(), "user-1")

	assert.Equal(t, 1, len(searcher.channelRequests))
	assert.Equal(t, "UC-due", searcher.channelRequests[0].ChannelID)
	assert.Equal(t, 1, len(d.ChannelVideos))
	assert.Equal(t, false, d.Truncated)

	// Only the polled channel gets a fresh last-checked stamp.
	_, stamped := users.stamped["UC-due"]
	assert.Equal(t, true, stamped)
	assert.Equal(t, 1, len(users.stamped))
}

func TestFetchChannelUpdates_TruncationFlagOnPartialFailure(t *testing.T) {
	searcher := &fakeSearcher{
		channelResult: youtube.BulkResult{
			Items:           []youtube.Video{{ID: "v1"}},
			CheckedChannels: []string{"UC-a"},
			Err:             &youtube.APIError{Kind: youtube.KindQuotaExceeded, Message: "quota"},
		},
	}
	users := &fakeUserStore{
		channels: []model.TrackedChannel{{YouTubeID: "UC-a", Rating: 5}, {YouTubeID: "UC-b", Rating: 4}},
	}

	o := NewOrchestrator(searcher, users, DefaultConfig())
	d := o.FetchChannelUpdates(context.Background(), "user-1")

	assert.Equal(t, true, d.Truncated)
	assert.Equal(t, 1, len(d.ChannelVideos))
	assert.Equal(t, 1, len(users.stamped))
}

func TestFetchChannelUpdates_StoreFailureReturnsEmpty(t *testing.T) {
	searcher := &fakeSearcher{}
	users := &fakeUserStore{channelsErr: errors.New("db down")}

	o := NewOrchestrator(searcher, users, DefaultConfig())
	d := o.FetchChannelUpdates(context.Background(), "user-1")

	assert.Equal(t, 0, len(d.ChannelVideos))
	assert.Equal(t, 0, len(searcher.channelRequests))
}

func TestFetchTopicMatches_UsesLookbackWindow(t *testing.T) {
	searcher := &fakeSearcher{
		topicResult: youtube.BulkResult{
			Items:        []youtube.Video{{ID: "v1"}},
			TopicMatches: map[string][]string{"v1": {"golang"}},
		},
	}
	users := &fakeUserStore{
		topics: []model.Topic{{ID: 1, Name: "golang"}, {ID: 2, Name: "rust"}},
	}

	cfg := DefaultConfig()
	o := NewOrchestrator(searcher, users, cfg)

	before := time.Now()
	d := o.FetchTopicMatches(context.Background(), "user-1")

	assert.Equal(t, []string{"golang", "rust"}, searcher.topicNames)
	assert.Equal(t, 1, len(d.TopicVideos))
	assert.Equal(t, []string{"golang"}, d.TopicMatches["v1"])

	wantAfter := before.Add(-cfg.TopicLookback)
	gap := searcher.publishedAfter.Sub(wantAfter)
	assert.Equal(t, true, gap >= 0 && gap < time.Minute)
}

func TestFetchTopicMatches_NoTopicsSkipsSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	users := &fakeUserStore{}

	o := NewOrchestrator(searcher, users, DefaultConfig())
	d := o.FetchTopicMatches(context.Background(), "user-1")

	assert.Equal(t, 0, len(d.TopicVideos))
	assert.Equal(t, 0, len(searcher.topicNames))
}

func TestDiscover_CombinesBothStrategies(t *testing.T) {
	searcher := &fakeSearcher{
		channelResult: youtube.BulkResult{
			Items:           []youtube.Video{{ID: "c1", ChannelID: "UC-a"}},
			CheckedChannels: []string{"UC-a"},
		},
		topicResult: youtube.BulkResult{
			Items:        []youtube.Video{{ID: "t1"}},
			TopicMatches: map[string][]string{"t1": {"golang"}},
		},
	}
	users := &fakeUserStore{
		topics:   []model.Topic{{ID: 1, Name: "golang"}},
		channels: []model.TrackedChannel{{YouTubeID: "UC-a", Rating: 5}},
	}

	o := NewOrchestrator(searcher, users, DefaultConfig())
	d, err := o.Discover(context.Background(), "user-1")

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(d.ChannelVideos))
	assert.Equal(t, 1, len(d.TopicVideos))
	assert.Equal(t, []string{"golang"}, d.TopicMatches["t1"])
	assert.Equal(t, false, d.Truncated)
}

func TestDiscover_CancelledContextReturnsError(t *testing.T) {
	searcher := &fakeSearcher{}
	users := &fakeUserStore{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(searcher, users, DefaultConfig())
	_, err := o.Discover(ctx, "user-1")

	assert.Equal(t, context.Canceled, err)
}
