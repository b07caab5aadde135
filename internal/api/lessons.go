package api

import (
	"errors"
	"net/http"

	"learning-api/internal/middleware"
	"learning-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetLesson returns one lesson with its ordered items, gated by the
// entitlement check.
// GET /api/lessons/:lessonId
func (h *Handlers) GetLesson(c *gin.Context) {
	userID := middleware.UserID(c)
	lessonID := c.Param("lessonId")

	allowed, err := h.Entitlement.CanAccessLesson(userID, lessonID)
	if err != nil {
		logging.Errorf("Failed to check lesson access - user: %s, lesson: %s, error: %v", userID, lessonID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Lesson not unlocked"})
		return
	}

	lesson, err := h.Store.GetLesson(lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
		return
	}
	if err != nil {
		logging.Errorf("Failed to load lesson %s: %v", lessonID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lesson"})
		return
	}

	items, err := h.Store.GetLessonItems(lessonID)
	if err != nil {
		logging.Errorf("Failed to load items for lesson %s: %v", lessonID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lesson"})
		return
	}

	itemViews := make([]gin.H, 0, len(items))
	for _, item := range items {
		itemViews = append(itemViews, gin.H{
			"item_id": item.ItemID,
			"type":    item.Type,
			"en":      item.En,
			"zh":      item.Zh,
			"py":      item.Pinyin,
			"audio":   item.Audio,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"lesson_id":      lesson.LessonID,
		"title_en":       lesson.TitleEn,
		"title_zh":       lesson.TitleZh,
		"description_en": lesson.DescriptionEn,
		"cover":          lesson.Cover,
		"tag":            lesson.Tag,
		"order":          lesson.SortOrder,
		"items":          itemViews,
	})
}
