package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"targetbrowse/internal/model"
)

type QuotaReader interface {
	Status() model.QuotaStatus
}

type CallCounter interface {
	CallCountToday() (int, error)
}

type QuotaHandler struct {
	ledger QuotaReader
	calls  CallCounter
}

func NewQuotaHandler(ledger QuotaReader, calls CallCounter) *QuotaHandler {
	return &QuotaHandler{ledger: ledger, calls: calls}
}

func (h *QuotaHandler) GetQuota(c *gin.Context) {
	status := h.ledger.Status()

	callsToday, err := h.calls.CallCountToday()
	if err != nil {
		slog.Error("error counting today's API calls", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, QuotaResponse{
		Used:       status.Used,
		Reserved:   status.Reserved,
		Limit:      status.Limit,
		Remaining:  status.Remaining(),
		ResetsAt:   status.ResetsAt.Format(time.RFC3339),
		NearLimit:  status.NearLimit,
		Critical:   status.Critical,
		CallsToday: callsToday,
	})
}

func (h *QuotaHandler) GetHealth(c *gin.Context) {
	_, err := h.calls.CallCountToday()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}
