package models

import (
	"time"
)

// UserItemProgress tracks a user's attempts at a single exercise item. One row
// per (user, item); the increment is done at the store level so concurrent
// submissions cannot lose updates. Completed is monotonic: once true it is
// never cleared by a later incorrect attempt.
type UserItemProgress struct {
	BaseModel

	UserID   string `json:"user_id" gorm:"not null;size:64;uniqueIndex:idx_user_item,priority:1"`
	ItemID   string `json:"item_id" gorm:"not null;size:100;uniqueIndex:idx_user_item,priority:2"`
	LessonID string `json:"lesson_id" gorm:"not null;size:100;index"`

	Attempts        int  `json:"attempts" gorm:"not null;default:0"`
	CorrectAttempts int  `json:"correct_attempts" gorm:"not null;default:0"`
	Completed       bool `json:"completed" gorm:"not null;default:false;index"`

	LastAttemptAt time.Time `json:"last_attempt_at"`
}

// UserLessonProgress is a derived snapshot, fully overwritten on every
// recompute from the catalog count and the item progress rows. It is never
// incremented in place.
type UserLessonProgress struct {
	BaseModel

	UserID   string `json:"user_id" gorm:"not null;size:64;uniqueIndex:idx_user_lesson,priority:1"`
	LessonID string `json:"lesson_id" gorm:"not null;size:100;uniqueIndex:idx_user_lesson,priority:2"`

	CompletedItems int  `json:"completed_items" gorm:"not null;default:0"`
	TotalItems     int  `json:"total_items" gorm:"not null;default:0"`
	Completed      bool `json:"completed" gorm:"not null;default:false;index"`

	LastStudiedAt time.Time `json:"last_studied_at"`
}

// UserStats holds the per-user global aggregates. The counters are re-derived
// on every recompute; the streak is the one stateful piece, carried forward
// from the previous value.
type UserStats struct {
	BaseModel

	UserID string `json:"user_id" gorm:"not null;size:64;uniqueIndex"`

	TotalLessonsCompleted int `json:"total_lessons_completed" gorm:"not null;default:0"`
	TotalItemsCompleted   int `json:"total_items_completed" gorm:"not null;default:0"`

	CurrentStreak int        `json:"current_streak" gorm:"not null;default:0"`
	LongestStreak int        `json:"longest_streak" gorm:"not null;default:0"`
	LastStudyDate *time.Time `json:"last_study_date"`
}
