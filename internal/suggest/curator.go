package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"targetbrowse/internal/model"
	"targetbrowse/pkg/youtube"
)

var (
	ErrNotFound  = errors.New("suggestion not found")
	ErrQueueFull = errors.New("pending suggestion queue is full")
)

// SuggestionStore is the persistence contract for suggestions. The
// active-suggestion uniqueness it supports is a pre-insert existence check,
// so callers treat it as best-effort, not a hard constraint.
type SuggestionStore interface {
	HasActivePending(userID string, videoID int64) (bool, error)
	CountActivePending(userID string) (int, error)
	InsertWithTopics(s *model.Suggestion, topicIDs []int64) error
	GetByID(id int64) (*model.Suggestion, error)
	UpdateStatus(id int64, status string) error
	DeleteExpiredPending(olderThan time.Time) (int64, error)
}

// VideoStore upserts discovered videos and manages the user's library.
type VideoStore interface {
	EnsureVideoExists(v youtube.Video) (int64, error)
	IsInLibrary(userID string, videoID int64) (bool, error)
	AddToLibrary(userID string, videoID int64) error
}

type Notifier interface {
	NotifyInfo(text string)
	NotifySuccess(text string)
	NotifyWarning(text string)
}

type Discoverer interface {
	Discover(ctx context.Context, userID string) (Discovery, error)
}

// GenerationResult summarizes one generation run. It is always returned on
// a completed run, even a truncated one; a quota-starved run reports what
// it managed rather than pretending nothing was found.
type GenerationResult struct {
	Discovered      int
	FromChannels    int
	FromTopics      int
	FromBoth        int
	Duplicates      int
	BelowThreshold  int
	PersistFailures int
	Truncated       bool
	AverageScore    float64
	Created         []model.Suggestion
}

// Curator owns the suggestion business rules: queue cap, score threshold,
// duplicate prevention, per-request cap, and transactional persistence.
type Curator struct {
	disc        Discoverer
	users       UserStore
	videos      VideoStore
	suggestions SuggestionStore
	notifier    Notifier
	scorer      Scorer
	cfg         Config
	now         func() time.Time
}

func NewCurator(disc Discoverer, users UserStore, videos VideoStore, suggestions SuggestionStore, notifier Notifier, cfg Config) *Curator {
	return &Curator{
		disc:        disc,
		users:       users,
		videos:      videos,
		suggestions: suggestions,
		notifier:    notifier,
		scorer:      NewScorer(cfg),
		cfg:         cfg,
		now:         time.Now,
	}
}

type scoredCandidate struct {
	Sourced
	Score Score
}

// Generate discovers, scores, filters and persists suggestions for a user.
// Individual candidate failures are skipped; lookup failures before
// discovery abort the run since they indicate an infrastructure problem.
func (c *Curator) Generate(ctx context.Context, userID string, threshold float64) (*GenerationResult, error) {
	pending, err := c.suggestions.CountActivePending(userID)
	if err != nil {
		return nil, fmt.Errorf("counting pending suggestions: %w", err)
	}
	if pending >= c.cfg.MaxPendingPerUser {
		c.notifier.NotifyWarning(fmt.Sprintf(
			"You have %d pending suggestions; review some before generating more", pending))
		return nil, ErrQueueFull
	}

	topics, err := c.users.GetUserTopics(userID)
	if err != nil {
		return nil, fmt.Errorf("loading topics: %w", err)
	}
	ratings, err := c.users.GetUserRatings(userID)
	if err != nil {
		return nil, fmt.Errorf("loading ratings: %w", err)
	}

	discovery, err := c.disc.Discover(ctx, userID)
	if err != nil {
		return nil, err
	}

	topicNames := make([]string, len(topics))
	topicIDsByName := make(map[string]int64, len(topics))
	for i, t := range topics {
		topicNames[i] = t.Name
		topicIDsByName[strings.ToLower(t.Name)] = t.ID
	}

	sourced := Consolidate(discovery.ChannelVideos, discovery.TopicVideos, discovery.TopicMatches, ratings)

	now := c.now()
	result := &GenerationResult{
		Discovered: len(sourced),
		Truncated:  discovery.Truncated,
	}

	var accepted []scoredCandidate
	for _, s := range sourced {
		score := c.scorer.Score(s, topicNames, now)
		if score.Total < threshold {
			result.BelowThreshold++
			continue
		}
		accepted = append(accepted, scoredCandidate{Sourced: s, Score: score})
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Score.Total > accepted[j].Score.Total
	})

	var scoreSum float64
	for _, cand := range accepted {
		if len(result.Created) >= c.cfg.MaxPerGeneration {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		videoID, err := c.videos.EnsureVideoExists(cand.Video)
		if err != nil {
			slog.Error("error upserting video, skipping candidate", "youtube_id", cand.Video.ID, "error", err)
			result.PersistFailures++
			continue
		}

		dup, err := c.suggestions.HasActivePending(userID, videoID)
		if err != nil {
			slog.Error("error checking for duplicate suggestion, skipping candidate", "video_id", videoID, "error", err)
			result.PersistFailures++
			continue
		}
		if dup {
			result.Duplicates++
			continue
		}

		var topicIDs []int64
		for _, name := range cand.MatchedTopics {
			if id, ok := topicIDsByName[strings.ToLower(name)]; ok {
				topicIDs = append(topicIDs, id)
			}
		}

		sug := model.Suggestion{
			UserID:    userID,
			VideoID:   videoID,
			YouTubeID: cand.Video.ID,
			Title:     cand.Video.Title,
			Reason:    cand.Score.Reason,
			Status:    model.StatusPending,
			Score:     cand.Score.Total,
			CreatedAt: now,
		}
		if err := c.suggestions.InsertWithTopics(&sug, topicIDs); err != nil {
			slog.Error("error persisting suggestion, skipping candidate", "youtube_id", cand.Video.ID, "error", err)
			result.PersistFailures++
			continue
		}

		result.Created = append(result.Created, sug)
		scoreSum += cand.Score.Total
		switch cand.Origin {
		case OriginChannel:
			result.FromChannels++
		case OriginTopic:
			result.FromTopics++
		case OriginBoth:
			result.FromBoth++
		}
	}

	if len(result.Created) > 0 {
		result.AverageScore = scoreSum / float64(len(result.Created))
		c.notifier.NotifySuccess(fmt.Sprintf("Found %d new suggestions for you", len(result.Created)))
	} else {
		c.notifier.NotifyInfo("No new suggestions found this time")
	}

	return result, nil
}

// Approve marks a suggestion approved and adds the video to the user's
// library. Approving a video already in the library still marks the
// suggestion approved but reports the different outcome.
func (c *Curator) Approve(userID string, suggestionID int64) (string, error) {
	sug, err := c.lookup(userID, suggestionID)
	if err != nil {
		return "", err
	}

	inLibrary, err := c.videos.IsInLibrary(userID, sug.VideoID)
	if err != nil {
		return "", fmt.Errorf("checking library: %w", err)
	}

	if err := c.suggestions.UpdateStatus(suggestionID, model.StatusApproved); err != nil {
		return "", fmt.Errorf("approving suggestion: %w", err)
	}

	if inLibrary {
		return "Video is already in your library", nil
	}
	if err := c.videos.AddToLibrary(userID, sug.VideoID); err != nil {
		return "", fmt.Errorf("adding to library: %w", err)
	}
	return "Video added to your library", nil
}

// Deny marks a suggestion denied.
func (c *Curator) Deny(userID string, suggestionID int64) error {
	if _, err := c.lookup(userID, suggestionID); err != nil {
		return err
	}
	return c.suggestions.UpdateStatus(suggestionID, model.StatusDenied)
}

// CleanupExpired removes pending suggestions older than the expiry window.
func (c *Curator) CleanupExpired() (int64, error) {
	return c.suggestions.DeleteExpiredPending(c.now().Add(-model.ExpiryWindow))
}

func (c *Curator) lookup(userID string, suggestionID int64) (*model.Suggestion, error) {
	sug, err := c.suggestions.GetByID(suggestionID)
	if err != nil {
		return nil, err
	}
	if sug == nil || sug.UserID != userID {
		return nil, ErrNotFound
	}
	return sug, nil
}
