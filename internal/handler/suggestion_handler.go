package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"targetbrowse/internal/model"
	"targetbrowse/internal/suggest"
)

type SuggestionService interface {
	Generate(ctx context.Context, userID string, threshold float64) (*suggest.GenerationResult, error)
	Approve(userID string, suggestionID int64) (string, error)
	Deny(userID string, suggestionID int64) error
	CleanupExpired() (int64, error)
}

type SuggestionStore interface {
	GetPending(userID string, limit, offset int) ([]model.Suggestion, error)
}

type SuggestionHandler struct {
	service SuggestionService
	store   SuggestionStore
}

func NewSuggestionHandler(service SuggestionService, store SuggestionStore) *SuggestionHandler {
	return &SuggestionHandler{service: service, store: store}
}

func getUserID(c *gin.Context) (string, bool) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return "", false
	}
	return userID, true
}

func (h *SuggestionHandler) Generate(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	threshold := defaultScoreThreshold
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Threshold != nil {
		threshold = *req.Threshold
	}

	result, err := h.service.Generate(c.Request.Context(), userID, threshold)
	if err != nil {
		if errors.Is(err, suggest.ErrQueueFull) {
			c.JSON(http.StatusConflict, gin.H{"error": "Too many pending suggestions, review some first"})
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		slog.Error("error generating suggestions", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Suggestion generation failed"})
		return
	}

	res := GenerateResponse{
		Discovered:      result.Discovered,
		FromChannels:    result.FromChannels,
		FromTopics:      result.FromTopics,
		FromBoth:        result.FromBoth,
		Duplicates:      result.Duplicates,
		BelowThreshold:  result.BelowThreshold,
		PersistFailures: result.PersistFailures,
		Truncated:       result.Truncated,
		AverageScore:    result.AverageScore,
		Suggestions:     toSuggestionResponses(result.Created),
	}

	c.JSON(http.StatusOK, res)
}

func (h *SuggestionHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	limit := getQueryLimit(c)
	offset := getQueryOffset(c)

	suggestions, err := h.store.GetPending(userID, limit, offset)
	if err != nil {
		slog.Error("error fetching suggestions", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, SuggestionListResponse{
		Suggestions: toSuggestionResponses(suggestions),
		Limit:       limit,
		Offset:      offset,
	})
}

func (h *SuggestionHandler) Approve(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid suggestion id"})
		return
	}

	message, err := h.service.Approve(userID, id)
	if err != nil {
		if errors.Is(err, suggest.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Suggestion not found"})
			return
		}
		slog.Error("error approving suggestion", "suggestion_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *SuggestionHandler) Deny(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid suggestion id"})
		return
	}

	if err := h.service.Deny(userID, id); err != nil {
		if errors.Is(err, suggest.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Suggestion not found"})
			return
		}
		slog.Error("error denying suggestion", "suggestion_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Suggestion denied"})
}

func (h *SuggestionHandler) Cleanup(c *gin.Context) {
	removed, err := h.service.CleanupExpired()
	if err != nil {
		slog.Error("error cleaning up expired suggestions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func toSuggestionResponses(suggestions []model.Suggestion) []SuggestionResponse {
	res := make([]SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		res = append(res, SuggestionResponse{
			ID:        s.ID,
			YouTubeID: s.YouTubeID,
			Title:     s.Title,
			Reason:    s.Reason,
			Status:    s.Status,
			Score:     s.Score,
			CreatedAt: s.CreatedAt.Format(time.RFC3339),
			ExpiresAt: s.ExpiresAt().Format(time.RFC3339),
		})
	}
	return res
}
