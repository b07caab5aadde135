package database

import (
	"fmt"

	"learning-api/internal/models"
	"learning-api/pkg/logging"
)

// GetLesson fetches one catalog lesson by its external id.
func (s *Store) GetLesson(lessonID string) (*models.Lesson, error) {
	var lesson models.Lesson
	err := s.db.Where("lesson_id = ?", lessonID).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// GetLessonItems returns a lesson's exercise items in display order.
func (s *Store) GetLessonItems(lessonID string) ([]models.LessonItem, error) {
	var items []models.LessonItem
	err := s.db.Where("lesson_id = ?", lessonID).Order("sort_order").Find(&items).Error
	return items, err
}

// CountLessonItems returns the authoritative item count for a lesson. Progress
// recomputation uses this, never a cached total.
func (s *Store) CountLessonItems(lessonID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.LessonItem{}).
		Where("lesson_id = ?", lessonID).
		Count(&count).Error
	return count, err
}

// CreateLesson inserts a catalog lesson (content import and fixtures).
func (s *Store) CreateLesson(lesson *models.Lesson) error {
	return s.db.Create(lesson).Error
}

// CreateLessonItem inserts a catalog item (content import and fixtures).
func (s *Store) CreateLessonItem(item *models.LessonItem) error {
	return s.db.Create(item).Error
}

// seedCatalog inserts the free lesson so a fresh development database is
// usable immediately. Content import for the full catalog is external.
func (s *Store) seedCatalog() error {
	freeLesson := models.Lesson{
		LessonID:      "greetings_l1",
		TitleEn:       "Greetings",
		TitleZh:       "问候",
		DescriptionEn: "Basic greetings and introductions",
		Tag:           "beginner",
		SortOrder:     1,
	}
	result := s.db.Where("lesson_id = ?", freeLesson.LessonID).FirstOrCreate(&freeLesson)
	if result.Error != nil {
		return fmt.Errorf("failed to seed free lesson: %w", result.Error)
	}

	items := []models.LessonItem{
		{ItemID: "greetings_l1_i1", LessonID: freeLesson.LessonID, Type: "listen", En: "Hello", Zh: "你好", Pinyin: "nǐ hǎo", SortOrder: 1},
		{ItemID: "greetings_l1_i2", LessonID: freeLesson.LessonID, Type: "listen", En: "Thank you", Zh: "谢谢", Pinyin: "xiè xie", SortOrder: 2},
		{ItemID: "greetings_l1_i3", LessonID: freeLesson.LessonID, Type: "speak", En: "Goodbye", Zh: "再见", Pinyin: "zài jiàn", SortOrder: 3},
	}
	for i := range items {
		result := s.db.Where("item_id = ?", items[i].ItemID).FirstOrCreate(&items[i])
		if result.Error != nil {
			return fmt.Errorf("failed to seed lesson item %s: %w", items[i].ItemID, result.Error)
		}
	}

	logging.Infof("Catalog seed data in place")
	return nil
}
