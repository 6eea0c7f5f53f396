package suggest

import (
	"sort"

	"targetbrowse/pkg/youtube"
)

// Consolidate merges the two discovery lists into a deduplicated set keyed
// by video id. Channel-update candidates enter as OriginChannel; a topic
// result for the same video upgrades the entry to OriginBoth and unions in
// its matched topics. The merge is order-independent: origin upgrades never
// overwrite unrelated fields. Output order is unspecified.
func Consolidate(channelVideos, topicVideos []youtube.Video, topicMatches map[string][]string, ratings map[string]int) []Sourced {
	merged := make(map[string]*Sourced, len(channelVideos)+len(topicVideos))

	for _, v := range channelVideos {
		if _, ok := merged[v.ID]; ok {
			continue
		}
		merged[v.ID] = &Sourced{
			Video:  v,
			Origin: OriginChannel,
			Rating: ratings[v.ChannelID],
		}
	}

	for _, v := range topicVideos {
		topics := dedupeSorted(topicMatches[v.ID])

		if existing, ok := merged[v.ID]; ok {
			existing.Origin = OriginBoth
			existing.MatchedTopics = dedupeSorted(append(existing.MatchedTopics, topics...))
			continue
		}

		merged[v.ID] = &Sourced{
			Video:         v,
			Origin:        OriginTopic,
			MatchedTopics: topics,
			Rating:        ratings[v.ChannelID],
		}
	}

	out := make([]Sourced, 0, len(merged))
	for _, s := range merged {
		out = append(out, *s)
	}
	return out
}

func dedupeSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
