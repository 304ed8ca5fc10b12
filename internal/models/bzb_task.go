package models

import "time"

// Difficulty levels shared by BZB tasks and assignments.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// BZBTask is a standardized unit-assessment file shared with a whole class.
type BZBTask struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TeacherID       uint      `gorm:"not null;index" json:"teacher_id"`
	ClassID         uint      `gorm:"not null;index" json:"class_id"`
	TaskName        string    `gorm:"size:255;not null" json:"task_name"`
	TaskFile        []byte    `json:"-"`
	FileType        string    `gorm:"size:255" json:"file_type"`
	UploadDate      time.Time `gorm:"autoCreateTime" json:"upload_date"`
	CompletionRate  int       `gorm:"default:0" json:"completion_rate"`
	DifficultyLevel string    `gorm:"size:32" json:"difficulty_level"`
	AISolution      string    `gorm:"column:ai_solution;type:text" json:"ai_solution"`
}

// TableName pins the table name.
func (BZBTask) TableName() string {
	return "bzb_tasks"
}
