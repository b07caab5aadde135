package models

// Lesson is one catalog entry. LessonID is the stable external identifier used
// by clients, purchases and progress rows.
type Lesson struct {
	BaseModel

	LessonID      string `json:"lesson_id" gorm:"not null;size:100;uniqueIndex"`
	TitleEn       string `json:"title_en" gorm:"size:200"`
	TitleZh       string `json:"title_zh" gorm:"size:200"`
	DescriptionEn string `json:"description_en" gorm:"type:text"`
	Cover         string `json:"cover" gorm:"size:500"`
	Tag           string `json:"tag" gorm:"size:50"`
	SortOrder     int    `json:"sort_order" gorm:"not null;default:0"`
}

// LessonItem is one exercise item inside a lesson. The count of items per
// lesson is the authoritative total for progress recomputation.
type LessonItem struct {
	BaseModel

	ItemID   string `json:"item_id" gorm:"not null;size:100;uniqueIndex"`
	LessonID string `json:"lesson_id" gorm:"not null;size:100;index"`

	Type      string `json:"type" gorm:"size:20"`
	En        string `json:"en" gorm:"type:text"`
	Zh        string `json:"zh" gorm:"type:text"`
	Pinyin    string `json:"py" gorm:"type:text"`
	Audio     string `json:"audio" gorm:"size:500"`
	SortOrder int    `json:"sort_order" gorm:"not null;default:0"`
}
