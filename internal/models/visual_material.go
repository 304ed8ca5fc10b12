package models

import "time"

// VisualMaterial is a teacher-owned reference file stored inline.
type VisualMaterial struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TeacherID  uint      `gorm:"not null;index" json:"teacher_id"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	FileData   []byte    `json:"-"`
	FileType   string    `gorm:"size:255" json:"file_type"`
	FileSize   int64     `json:"file_size"`
	Category   string    `gorm:"size:128" json:"category"`
	PublicURL  string    `gorm:"size:512" json:"public_url"`
	UploadDate time.Time `gorm:"autoCreateTime" json:"upload_date"`
}

// TableName pins the table name.
func (VisualMaterial) TableName() string {
	return "visual_materials"
}
