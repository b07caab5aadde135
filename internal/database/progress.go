package database

import (
	"time"

	"learning-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordAttempt upserts the (user, item) progress row. The increments run
// inside the upsert statement itself, not as a read-modify-write, so
// concurrent submissions for the same item cannot lose updates. Completed is
// only ever set, never cleared.
func (s *Store) RecordAttempt(userID, itemID, lessonID string, correct bool, now time.Time) error {
	row := models.UserItemProgress{
		UserID:        userID,
		ItemID:        itemID,
		LessonID:      lessonID,
		Attempts:      1,
		Completed:     correct,
		LastAttemptAt: now,
	}
	if correct {
		row.CorrectAttempts = 1
	}

	assignments := map[string]interface{}{
		"attempts":        gorm.Expr("user_item_progress.attempts + 1"),
		"last_attempt_at": now,
	}
	if correct {
		assignments["correct_attempts"] = gorm.Expr("user_item_progress.correct_attempts + 1")
		assignments["completed"] = true
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&row).Error
}

// GetItemProgress fetches one (user, item) progress row.
func (s *Store) GetItemProgress(userID, itemID string) (*models.UserItemProgress, error) {
	var row models.UserItemProgress
	err := s.db.Where("user_id = ? AND item_id = ?", userID, itemID).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CountCompletedItems counts the user's completed items within one lesson.
func (s *Store) CountCompletedItems(userID, lessonID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.UserItemProgress{}).
		Where("user_id = ? AND lesson_id = ? AND completed = ?", userID, lessonID, true).
		Count(&count).Error
	return count, err
}

// CountCompletedItemsTotal counts the user's completed items across all
// lessons.
func (s *Store) CountCompletedItemsTotal(userID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.UserItemProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	return count, err
}

// SaveLessonProgress persists a recomputed lesson snapshot, overwriting any
// existing row for the (user, lesson) pair.
func (s *Store) SaveLessonProgress(progress *models.UserLessonProgress) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"completed_items", "total_items", "completed", "last_studied_at", "updated_at",
		}),
	}).Create(progress).Error
}

// GetLessonProgress fetches one (user, lesson) snapshot.
func (s *Store) GetLessonProgress(userID, lessonID string) (*models.UserLessonProgress, error) {
	var progress models.UserLessonProgress
	err := s.db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// CountCompletedLessons counts the user's fully completed lessons.
func (s *Store) CountCompletedLessons(userID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.UserLessonProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	return count, err
}

// GetUserStats fetches the user's stats row; gorm.ErrRecordNotFound when none
// exists yet.
func (s *Store) GetUserStats(userID string) (*models.UserStats, error) {
	var stats models.UserStats
	err := s.db.Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// SaveUserStats persists a recomputed stats snapshot, overwriting any existing
// row for the user. The upsert path covers the race where two recomputes
// create the row concurrently.
func (s *Store) SaveUserStats(stats *models.UserStats) error {
	if stats.ID != 0 {
		return s.db.Save(stats).Error
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_lessons_completed", "total_items_completed",
			"current_streak", "longest_streak", "last_study_date", "updated_at",
		}),
	}).Create(stats).Error
}
