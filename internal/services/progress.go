package services

import (
	"errors"
	"fmt"
	"time"

	"learning-api/internal/database"
	"learning-api/internal/models"

	"gorm.io/gorm"
)

// LessonSnapshot is the recomputed lesson-level aggregate returned to the
// client after an attempt or refresh.
type LessonSnapshot struct {
	CompletedItems int  `json:"completedItems"`
	TotalItems     int  `json:"totalItems"`
	Completed      bool `json:"completed"`
}

// ProgressService records attempts and re-derives the lesson and user
// aggregates from the authoritative attempt history. Aggregates are full
// overwrites, never increments, so any sequence of duplicate or racing
// submissions converges to the same state.
type ProgressService struct {
	store *database.Store
	now   func() time.Time
}

// NewProgressService creates a progress service over the given store.
func NewProgressService(store *database.Store) *ProgressService {
	return &ProgressService{store: store, now: time.Now}
}

// RecordAttempt records one practice attempt and recomputes the lesson and
// user aggregates, including the streak.
func (s *ProgressService) RecordAttempt(userID, lessonID, itemID string, correct bool) (*LessonSnapshot, error) {
	if err := s.store.RecordAttempt(userID, itemID, lessonID, correct, s.now()); err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	snapshot, err := s.RecomputeLesson(userID, lessonID)
	if err != nil {
		return nil, err
	}
	if err := s.RecomputeUserStats(userID); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// RefreshLesson re-derives the lesson aggregate and the user stats without
// recording a new attempt. Repair operation; still a qualifying study event
// for the streak.
func (s *ProgressService) RefreshLesson(userID, lessonID string) (*LessonSnapshot, error) {
	snapshot, err := s.RecomputeLesson(userID, lessonID)
	if err != nil {
		return nil, err
	}
	if err := s.RecomputeUserStats(userID); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// RecomputeLesson derives the lesson aggregate fresh from the catalog item
// count and the recorded item progress, then persists it as a full snapshot
// overwrite.
func (s *ProgressService) RecomputeLesson(userID, lessonID string) (*LessonSnapshot, error) {
	total, err := s.store.CountLessonItems(lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to count lesson items: %w", err)
	}
	completed, err := s.store.CountCompletedItems(userID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed items: %w", err)
	}

	// Clamp before any equality computation; duplicate or orphaned progress
	// rows must not push the count past the catalog total.
	if completed > total {
		completed = total
	}

	progress := &models.UserLessonProgress{
		UserID:         userID,
		LessonID:       lessonID,
		CompletedItems: int(completed),
		TotalItems:     int(total),
		Completed:      completed == total,
		LastStudiedAt:  s.now(),
	}
	if err := s.store.SaveLessonProgress(progress); err != nil {
		return nil, fmt.Errorf("failed to save lesson progress: %w", err)
	}

	return &LessonSnapshot{
		CompletedItems: progress.CompletedItems,
		TotalItems:     progress.TotalItems,
		Completed:      progress.Completed,
	}, nil
}

// RecomputeUserStats re-derives the user's global counters from the stored
// progress rows and advances the day-boundary streak.
func (s *ProgressService) RecomputeUserStats(userID string) error {
	lessonsCompleted, err := s.store.CountCompletedLessons(userID)
	if err != nil {
		return fmt.Errorf("failed to count completed lessons: %w", err)
	}
	itemsCompleted, err := s.store.CountCompletedItemsTotal(userID)
	if err != nil {
		return fmt.Errorf("failed to count completed items: %w", err)
	}

	stats, err := s.store.GetUserStats(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = &models.UserStats{UserID: userID}
	} else if err != nil {
		return fmt.Errorf("failed to load user stats: %w", err)
	}

	stats.TotalLessonsCompleted = int(lessonsCompleted)
	stats.TotalItemsCompleted = int(itemsCompleted)

	now := s.now()
	stats.CurrentStreak = nextStreak(stats.LastStudyDate, stats.CurrentStreak, now)
	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	stats.LastStudyDate = &now

	if err := s.store.SaveUserStats(stats); err != nil {
		return fmt.Errorf("failed to save user stats: %w", err)
	}
	return nil
}

// nextStreak applies the day-boundary streak rules. Same calendar day leaves
// the streak unchanged, the next day extends it, any other gap (including
// negative ones from clock anomalies) resets it to 1.
func nextStreak(lastStudy *time.Time, current int, now time.Time) int {
	if lastStudy == nil {
		return 1
	}

	last := calendarDate(*lastStudy)
	today := calendarDate(now)
	days := int(today.Sub(last) / (24 * time.Hour))

	switch days {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}

// calendarDate truncates a time to its calendar date in its own location.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
