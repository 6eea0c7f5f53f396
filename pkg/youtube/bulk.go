package youtube

import (
	"context"
	"log/slog"
	"time"
)

// lowestRatingTier marks channels the user has rated at the bottom; those
// are never polled.
const lowestRatingTier = 1

// BulkChannelUpdates polls a set of channels for new uploads. Per-channel
// failures are collected and the loop continues; quota exhaustion stops the
// loop immediately, returning everything fetched up to that point.
func (c *Client) BulkChannelUpdates(ctx context.Context, requests []ChannelUpdateRequest, maxPerChannel int) BulkResult {
	var result BulkResult

	for _, req := range requests {
		if req.Rating == lowestRatingTier {
			slog.Debug("skipping bottom-rated channel", "channel_id", req.ChannelID)
			continue
		}

		videos, err := c.SearchByChannel(ctx, req.ChannelID, req.LastCheck, maxPerChannel)
		if err != nil {
			if IsQuotaExceeded(err) {
				result.Err = err
				return result
			}
			slog.Warn("channel update failed, continuing", "channel_id", req.ChannelID, "error", err)
			result.Failed = append(result.Failed, BulkError{Input: req.ChannelID, Err: err})
			continue
		}

		result.Items = append(result.Items, videos...)
		result.CheckedChannels = append(result.CheckedChannels, req.ChannelID)
	}

	return result
}

// BulkTopicSearch runs a keyword search per topic and deduplicates results
// across topics by video id, first occurrence winning. TopicMatches still
// records every topic that found a video, including duplicates.
func (c *Client) BulkTopicSearch(ctx context.Context, topics []string, publishedAfter time.Time, maxPerTopic int) BulkResult {
	result := BulkResult{TopicMatches: make(map[string][]string)}
	seen := make(map[string]bool)

	for _, topic := range topics {
		videos, err := c.SearchByTopic(ctx, topic, publishedAfter, maxPerTopic)
		if err != nil {
			if IsQuotaExceeded(err) {
				result.Err = err
				return result
			}
			slog.Warn("topic search failed, continuing", "topic", topic, "error", err)
			result.Failed = append(result.Failed, BulkError{Input: topic, Err: err})
			continue
		}

		for _, v := range videos {
			result.TopicMatches[v.ID] = append(result.TopicMatches[v.ID], topic)
			if seen[v.ID] {
				continue
			}
			seen[v.ID] = true
			result.Items = append(result.Items, v)
		}
	}

	return result
}
