package api

import (
	"errors"
	"net/http"
	"time"

	"learning-api/internal/middleware"
	"learning-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RecordAttemptRequest represents one practice attempt submission. Correct is
// a pointer so that an explicit false still passes required validation.
type RecordAttemptRequest struct {
	LessonID string `json:"lessonId" binding:"required"`
	ItemID   string `json:"itemId" binding:"required"`
	Correct  *bool  `json:"correct" binding:"required"`
}

// RecordAttempt records one attempt and returns the recomputed lesson
// snapshot.
// POST /api/progress
func (h *Handlers) RecordAttempt(c *gin.Context) {
	userID := middleware.UserID(c)

	if h.Limiter != nil {
		allowed, err := h.Limiter.Allow(c.Request.Context(), userID)
		if err != nil {
			// Throttling is best effort; the store-level upsert keeps the
			// data correct either way.
			logging.Errorf("Rate limit check failed for user %s: %v", userID, err)
		} else if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many attempts, slow down",
			})
			return
		}
	}

	var req RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request format: " + err.Error(),
		})
		return
	}

	snapshot, err := h.Progress.RecordAttempt(userID, req.LessonID, req.ItemID, *req.Correct)
	if err != nil {
		logging.Errorf("Failed to record attempt - user: %s, item: %s, error: %v", userID, req.ItemID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to save progress",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"completedItems": snapshot.CompletedItems,
		"totalItems":     snapshot.TotalItems,
		"completed":      snapshot.Completed,
	})
}

// RefreshProgressRequest asks for a lesson's aggregates to be re-derived.
type RefreshProgressRequest struct {
	LessonID string `json:"lessonId" binding:"required"`
}

// RefreshProgress re-runs the recompute for one lesson and the user stats
// without recording an attempt.
// POST /api/progress/refresh
func (h *Handlers) RefreshProgress(c *gin.Context) {
	userID := middleware.UserID(c)

	var req RefreshProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request format: " + err.Error(),
		})
		return
	}

	snapshot, err := h.Progress.RefreshLesson(userID, req.LessonID)
	if err != nil {
		logging.Errorf("Failed to refresh progress - user: %s, lesson: %s, error: %v", userID, req.LessonID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to refresh progress",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"completedItems": snapshot.CompletedItems,
		"totalItems":     snapshot.TotalItems,
		"completed":      snapshot.Completed,
	})
}

// StatsResponse is the user's stats snapshot as served to clients.
type StatsResponse struct {
	TotalLessonsCompleted int        `json:"totalLessonsCompleted"`
	TotalItemsCompleted   int        `json:"totalItemsCompleted"`
	CurrentStreak         int        `json:"currentStreak"`
	LongestStreak         int        `json:"longestStreak"`
	LastStudyDate         *time.Time `json:"lastStudyDate"`
}

// GetStats returns the user's stats snapshot, zeroed defaults when none
// exists yet.
// GET /api/progress
func (h *Handlers) GetStats(c *gin.Context) {
	userID := middleware.UserID(c)

	stats, err := h.Store.GetUserStats(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, StatsResponse{})
		return
	}
	if err != nil {
		logging.Errorf("Failed to load stats for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch stats",
		})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		TotalLessonsCompleted: stats.TotalLessonsCompleted,
		TotalItemsCompleted:   stats.TotalItemsCompleted,
		CurrentStreak:         stats.CurrentStreak,
		LongestStreak:         stats.LongestStreak,
		LastStudyDate:         stats.LastStudyDate,
	})
}
