package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type GenerateRequest struct {
	Threshold *float64 `json:"threshold"`
}

type GenerateResponse struct {
	Discovered      int                  `json:"discovered"`
	FromChannels    int                  `json:"fromChannels"`
	FromTopics      int                  `json:"fromTopics"`
	FromBoth        int                  `json:"fromBoth"`
	Duplicates      int                  `json:"duplicates"`
	BelowThreshold  int                  `json:"belowThreshold"`
	PersistFailures int                  `json:"persistFailures"`
	Truncated       bool                 `json:"truncated"`
	AverageScore    float64              `json:"averageScore"`
	Suggestions     []SuggestionResponse `json:"suggestions"`
}

type SuggestionResponse struct {
	ID        int64   `json:"id"`
	YouTubeID string  `json:"youtubeId"`
	Title     string  `json:"title"`
	Reason    string  `json:"reason"`
	Status    string  `json:"status"`
	Score     float64 `json:"score"`
	CreatedAt string  `json:"createdAt"`
	ExpiresAt string  `json:"expiresAt"`
}

type SuggestionListResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

type QuotaResponse struct {
	Used       int    `json:"used"`
	Reserved   int    `json:"reserved"`
	Limit      int    `json:"limit"`
	Remaining  int    `json:"remaining"`
	ResetsAt   string `json:"resetsAt"`
	NearLimit  bool   `json:"nearLimit"`
	Critical   bool   `json:"critical"`
	CallsToday int    `json:"callsToday"`
}

const defaultScoreThreshold = 5.0

func getQueryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		return 10
	}
	return limit
}

func getQueryOffset(c *gin.Context) int {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
