package suggest

import (
	"time"

	"targetbrowse/pkg/youtube"
)

// Origin tags which discovery path found a candidate. The set is closed;
// scoring and reason-building switch over it exhaustively.
type Origin int

const (
	OriginChannel Origin = iota
	OriginTopic
	OriginBoth
)

func (o Origin) String() string {
	switch o {
	case OriginChannel:
		return "channel"
	case OriginTopic:
		return "topic"
	case OriginBoth:
		return "both"
	}
	return "unknown"
}

// Sourced is a candidate annotated with provenance. Immutable once the
// consolidator has produced it; lives only for the duration of one
// generation request.
type Sourced struct {
	Video         youtube.Video
	Origin        Origin
	MatchedTopics []string
	Rating        int
}

// Score is the explainable breakdown for one candidate. Reason is the
// durable audit of why the suggestion was made and is persisted verbatim.
type Score struct {
	Rating  float64
	Topic   float64
	Recency float64
	Bonus   float64
	Total   float64
	Reason  string
}

type Config struct {
	RatingWeight    float64
	TopicWeight     float64
	RecencyWeight   float64
	DualSourceBonus float64

	NeutralRatingScore float64
	NeutralTopicScore  float64

	MaxPendingPerUser int
	MaxPerGeneration  int
	MaxPerChannel     int
	MaxPerTopic       int
	TopicLookback     time.Duration
}

func DefaultConfig() Config {
	return Config{
		RatingWeight:       0.6,
		TopicWeight:        0.25,
		RecencyWeight:      0.15,
		DualSourceBonus:    1.0,
		NeutralRatingScore: 6.0,
		NeutralTopicScore:  5.0,
		MaxPendingPerUser:  1000,
		MaxPerGeneration:   50,
		MaxPerChannel:      10,
		MaxPerTopic:        10,
		TopicLookback:      30 * 24 * time.Hour,
	}
}
