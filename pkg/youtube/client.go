package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
)

// QuotaGate is the slice of the quota ledger the client needs: an atomic
// spend reservation before every network call and an audit record after it.
type QuotaGate interface {
	TryReserve(cost int) bool
	Release(cost int)
	Record(op string, cost int, success bool, duration time.Duration, errText string, items int)
	ResetsAt() time.Time
}

type Notifier interface {
	NotifyQuotaLimit(resource string, resetsAt time.Time)
	NotifyWarning(text string)
}

type Config struct {
	BaseURL          string
	SearchCost       int
	DetailsCost      int
	MaxConcurrent    int64
	DetailsBatchSize int
	CacheTTL         time.Duration
	CacheSize        int
	Timeout          time.Duration
}

// DefaultConfig mirrors the real platform's pricing: search costs 100 units,
// a detail list costs 1, and the provider caps detail lookups at 50 ids per
// call.
func DefaultConfig() Config {
	return Config{
		BaseURL:          "https://www.googleapis.com/youtube/v3",
		SearchCost:       100,
		DetailsCost:      1,
		MaxConcurrent:    3,
		DetailsBatchSize: 50,
		CacheTTL:         15 * time.Minute,
		CacheSize:        200,
		Timeout:          30 * time.Second,
	}
}

// Client is the only component that talks to the video platform API. Every
// outbound call passes the quota gate and the concurrency semaphore; search
// results are served from a short-TTL cache when possible.
type Client struct {
	apiKey     string
	cfg        Config
	httpClient *http.Client
	sem        *semaphore.Weighted
	cache      *resultCache
	quota      QuotaGate
	notifier   Notifier
}

func NewClient(apiKey string, quota QuotaGate, notifier Notifier, cfg Config) *Client {
	return &Client{
		apiKey:     apiKey,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sem:        semaphore.NewWeighted(cfg.MaxConcurrent),
		cache:      newResultCache(cfg.CacheTTL, cfg.CacheSize),
		quota:      quota,
		notifier:   notifier,
	}
}

// SearchByChannel returns recent uploads for a channel, newest first,
// enriched with detail data.
func (c *Client) SearchByChannel(ctx context.Context, channelID string, since time.Time, maxResults int) ([]Video, error) {
	params := url.Values{}
	params.Set("channelId", channelID)
	params.Set("order", "date")
	if !since.IsZero() {
		params.Set("publishedAfter", since.UTC().Format(time.RFC3339))
	}
	return c.search(ctx, "search.channel", params, maxResults)
}

// SearchByTopic returns videos matching a keyword query, enriched with
// detail data.
func (c *Client) SearchByTopic(ctx context.Context, query string, publishedAfter time.Time, maxResults int) ([]Video, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("order", "relevance")
	if !publishedAfter.IsZero() {
		params.Set("publishedAfter", publishedAfter.UTC().Format(time.RFC3339))
	}
	return c.search(ctx, "search.topic", params, maxResults)
}

func (c *Client) search(ctx context.Context, op string, params url.Values, maxResults int) ([]Video, error) {
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))

	cacheKey := op + "|" + params.Encode()
	if cached, ok := c.cache.get(cacheKey); ok {
		return cached, nil
	}

	var resp searchResponse
	duration, err := c.doGET(ctx, op, c.cfg.SearchCost, "/search", params, &resp)
	if err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, videoFromSnippet(item.ID.VideoID, item.Snippet))
	}

	c.quota.Record(op, c.cfg.SearchCost, true, duration, "", len(videos))

	videos = c.enrich(ctx, videos)
	c.cache.put(cacheKey, videos)
	return videos, nil
}

// enrich merges detail data (duration, counters) into search results.
// Failures degrade to unenriched results rather than failing the search.
func (c *Client) enrich(ctx context.Context, videos []Video) []Video {
	if len(videos) == 0 {
		return videos
	}

	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}

	details, err := c.GetDetails(ctx, ids)
	if err != nil {
		slog.Warn("detail enrichment failed, returning unenriched results", "error", err)
	}

	byID := make(map[string]Video, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	for i, v := range videos {
		d, ok := byID[v.ID]
		if !ok {
			continue
		}
		videos[i].Duration = d.Duration
		videos[i].Views = d.Views
		videos[i].Likes = d.Likes
		videos[i].Comments = d.Comments
	}
	return videos
}

// GetDetails fetches full video records, chunking ids into provider-sized
// batches and merging results by id. On quota exhaustion it stops issuing
// further chunks and returns what succeeded so far together with the error.
func (c *Client) GetDetails(ctx context.Context, ids []string) ([]Video, error) {
	var collected []Video
	seen := make(map[string]bool, len(ids))

	for start := 0; start < len(ids); start += c.cfg.DetailsBatchSize {
		end := start + c.cfg.DetailsBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		videos, err := c.detailsChunk(ctx, chunk)
		if err != nil {
			if IsQuotaExceeded(err) {
				return collected, err
			}
			slog.Warn("detail chunk failed, continuing", "error", err, "chunk_size", len(chunk))
			continue
		}

		for _, v := range videos {
			if seen[v.ID] {
				continue
			}
			seen[v.ID] = true
			collected = append(collected, v)
		}
	}

	return collected, nil
}

func (c *Client) detailsChunk(ctx context.Context, ids []string) ([]Video, error) {
	const op = "videos.details"

	params := url.Values{}
	params.Set("part", "snippet,contentDetails,statistics")
	params.Set("id", strings.Join(ids, ","))

	cacheKey := op + "|" + params.Encode()
	if cached, ok := c.cache.get(cacheKey); ok {
		return cached, nil
	}

	var resp videoListResponse
	duration, err := c.doGET(ctx, op, c.cfg.DetailsCost, "/videos", params, &resp)
	if err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		v := videoFromSnippet(item.ID, item.Snippet)
		v.Duration = item.ContentDetails.Duration
		v.Views = parseCount(item.Statistics.ViewCount)
		v.Likes = parseCount(item.Statistics.LikeCount)
		v.Comments = parseCount(item.Statistics.CommentCount)
		videos = append(videos, v)
	}

	c.quota.Record(op, c.cfg.DetailsCost, true, duration, "", len(videos))
	c.cache.put(cacheKey, videos)
	return videos, nil
}

// doGET performs one metered network call: quota reservation, semaphore
// permit, request, error classification. Failures are recorded here;
// successes are recorded by the caller once the item count is known.
func (c *Client) doGET(ctx context.Context, op string, cost int, path string, params url.Values, out any) (time.Duration, error) {
	if !c.quota.TryReserve(cost) {
		c.notifier.NotifyQuotaLimit("YouTube API", c.quota.ResetsAt())
		return 0, &APIError{Kind: KindQuotaExceeded, Op: op, Message: "daily quota budget exhausted"}
	}
	defer c.quota.Release(cost)

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return 0, fmt.Errorf("youtube %s: %w", op, err)
	}
	defer c.sem.Release(1)

	params.Set("key", c.apiKey)
	reqURL := c.cfg.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("youtube %s: %w", op, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.quota.Record(op, 0, false, duration, err.Error(), 0)
		return duration, &APIError{Kind: KindTransient, Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		message := providerMessage(body)

		apiErr := classifyStatus(op, resp.StatusCode, message)

		// A provider "forbidden" means the budget is already gone; record
		// zero cost so the local counter does not double-spend.
		recordedCost := cost
		if apiErr.Kind == KindQuotaExceeded {
			recordedCost = 0
			c.notifier.NotifyQuotaLimit("YouTube API", c.quota.ResetsAt())
		}
		c.quota.Record(op, recordedCost, false, duration, apiErr.Error(), 0)
		return duration, apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.quota.Record(op, cost, false, duration, err.Error(), 0)
		return duration, &APIError{Kind: KindTransient, Op: op, Message: "decode: " + err.Error()}
	}

	return duration, nil
}

func videoFromSnippet(id string, s snippet) Video {
	publishedAt, err := time.Parse(time.RFC3339, s.PublishedAt)
	if err != nil {
		publishedAt = time.Time{}
	}
	return Video{
		ID:           id,
		Title:        s.Title,
		ChannelID:    s.ChannelID,
		ChannelName:  s.ChannelTitle,
		PublishedAt:  publishedAt,
		ThumbnailURL: s.Thumbnails.Medium.URL,
		Description:  s.Description,
	}
}

func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func providerMessage(body []byte) string {
	var parsed apiErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(body))
}
