package models

import "time"

// Class groups students under a single teacher.
type Class struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TeacherID   uint      `gorm:"not null;index" json:"teacher_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Subject     string    `gorm:"size:255" json:"subject"`
	GradeLevel  string    `gorm:"size:64" json:"grade_level"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName pins the table name.
func (Class) TableName() string {
	return "classes"
}
