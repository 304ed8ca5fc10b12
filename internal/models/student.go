package models

import "time"

// Qualitative performance labels a teacher can give a student.
const (
	PerformanceExcellent    = "Excellent"
	PerformanceGood         = "Good"
	PerformanceAverage      = "Average"
	PerformanceSatisfactory = "Satisfactory"
	PerformanceWeak         = "Weak"
)

// Grade point bounds.
const (
	MinGradePoints     = 1
	MaxGradePoints     = 10
	DefaultGradePoints = 5
)

// Student represents a learner enrolled in exactly one class.
type Student struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	ClassID             uint      `gorm:"not null;index" json:"class_id"`
	FullName            string    `gorm:"size:255;not null" json:"full_name"`
	StudentCode         string    `gorm:"size:64;uniqueIndex;not null" json:"student_code"`
	GradePoints         int       `gorm:"not null;default:5" json:"grade_points"`
	AcademicPerformance string    `gorm:"size:64;default:Average" json:"academic_performance"`
	CreatedAt           time.Time `json:"created_at"`
}

// TableName pins the table name.
func (Student) TableName() string {
	return "students"
}

// StudentLogin holds the single credential a student may own.
type StudentLogin struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StudentID      uint      `gorm:"not null;uniqueIndex" json:"student_id"`
	Username       string    `gorm:"size:255;not null;uniqueIndex" json:"username"`
	PasswordDigest string    `gorm:"column:password_digest;size:255;not null" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName pins the table name.
func (StudentLogin) TableName() string {
	return "student_logins"
}

// ClampGradePoints keeps grade points within the 1..10 scale.
func ClampGradePoints(points int) int {
	if points < MinGradePoints {
		return MinGradePoints
	}
	if points > MaxGradePoints {
		return MaxGradePoints
	}
	return points
}
