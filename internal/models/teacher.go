package models

import "time"

// LegacyDigestPrefix marks an unsalted SHA-256 hex digest carried over from
// stores written by the legacy application.
const LegacyDigestPrefix = "sha256:"

// Teacher is a portal account that owns classes, uploaded files and assignments.
type Teacher struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:255;uniqueIndex;not null" json:"username"`
	PasswordDigest string    `gorm:"column:password_digest;size:255;not null" json:"-"`
	Email          string    `gorm:"size:255" json:"email"`
	FullName       string    `gorm:"size:255" json:"full_name"`
	School         string    `gorm:"size:255" json:"school"`
	City           string    `gorm:"size:255" json:"city"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName pins the table name.
func (Teacher) TableName() string {
	return "teachers"
}
