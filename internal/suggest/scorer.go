package suggest

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Scorer computes the weighted relevance score for a candidate. It does no
// I/O and is fully deterministic given its inputs.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) Scorer {
	return Scorer{cfg: cfg}
}

func (s Scorer) Score(c Sourced, userTopics []string, now time.Time) Score {
	rating := s.ratingScore(c.Rating)
	topic := s.topicScore(c.Video.Title, userTopics)
	recency := recencyScore(c.Video.PublishedAt, now)

	total := rating*s.cfg.RatingWeight + topic*s.cfg.TopicWeight + recency*s.cfg.RecencyWeight

	var bonus float64
	if c.Origin == OriginBoth {
		bonus = s.cfg.DualSourceBonus
		total += bonus
	}

	return Score{
		Rating:  rating,
		Topic:   topic,
		Recency: recency,
		Bonus:   bonus,
		Total:   total,
		Reason:  s.reason(c),
	}
}

// ratingScore maps a 1-5 star channel rating onto 0-10; unrated channels
// get a neutral default rather than a penalty.
func (s Scorer) ratingScore(stars int) float64 {
	if stars < 1 || stars > 5 {
		return s.cfg.NeutralRatingScore
	}
	return float64(stars) * 2
}

// topicScore measures how many topic words appear in the title,
// case-insensitive. A topic counts as matched when at least half its words
// are present; the score itself is word-proportional across all topics.
func (s Scorer) topicScore(title string, topics []string) float64 {
	if len(topics) == 0 {
		return s.cfg.NeutralTopicScore
	}

	lowerTitle := strings.ToLower(title)
	var totalWords, matchedWords int

	for _, topic := range topics {
		words := strings.Fields(strings.ToLower(topic))
		totalWords += len(words)
		for _, w := range words {
			if strings.Contains(lowerTitle, w) {
				matchedWords++
			}
		}
	}

	if totalWords == 0 {
		return s.cfg.NeutralTopicScore
	}
	return math.Min(10, 10*float64(matchedWords)/float64(totalWords))
}

// TopicMatchesTitle reports whether at least half of the topic's words
// appear in the title.
func TopicMatchesTitle(topic, title string) bool {
	words := strings.Fields(strings.ToLower(topic))
	if len(words) == 0 {
		return false
	}
	lowerTitle := strings.ToLower(title)
	matched := 0
	for _, w := range words {
		if strings.Contains(lowerTitle, w) {
			matched++
		}
	}
	return matched*2 >= len(words)
}

// recencyScore is bucketed, not continuous.
func recencyScore(publishedAt, now time.Time) float64 {
	age := now.Sub(publishedAt)
	switch {
	case age <= 24*time.Hour:
		return 10
	case age <= 3*24*time.Hour:
		return 8
	case age <= 7*24*time.Hour:
		return 6
	case age <= 14*24*time.Hour:
		return 4
	case age <= 30*24*time.Hour:
		return 2
	default:
		return 1
	}
}

// reason builds the durable, human-readable explanation persisted with the
// suggestion. It is never regenerated after the suggestion is created.
func (s Scorer) reason(c Sourced) string {
	switch c.Origin {
	case OriginChannel:
		return fmt.Sprintf("New upload from %s", c.Video.ChannelName)
	case OriginTopic:
		return fmt.Sprintf("Matches your topics: %s", strings.Join(c.MatchedTopics, ", "))
	case OriginBoth:
		return fmt.Sprintf("New upload from %s that also matches your topics: %s",
			c.Video.ChannelName, strings.Join(c.MatchedTopics, ", "))
	}
	return ""
}
