package models

import (
	"time"

	"gorm.io/datatypes"
)

// Persisted assignment statuses. Transitions run Assigned -> Submitted -> Reviewed.
const (
	AssignmentStatusAssigned  = "Assigned"
	AssignmentStatusSubmitted = "Submitted"
	AssignmentStatusReviewed  = "Reviewed"
)

// AssignmentStatusLate is derived at read time and never written to the store.
const AssignmentStatusLate = "Late"

// DefaultAssignmentPoints is the point value used when a teacher gives none.
const DefaultAssignmentPoints = 10

// Assignment is a per-student task instance living in the student_tasks table.
//
// TeacherName, StudentName and ClassName are snapshots taken when the row is
// created. They are intentionally stale after a rename and are never resynced.
type Assignment struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	TeacherID uint `gorm:"not null;index:idx_student_tasks_teacher_id" json:"teacher_id"`
	StudentID uint `gorm:"not null;index:idx_student_tasks_student_id" json:"student_id"`
	ClassID   uint `gorm:"not null" json:"class_id"`

	TaskName        string `gorm:"size:255;not null" json:"task_name"`
	TaskDescription string `gorm:"type:text" json:"task_description"`
	TaskFile        []byte `json:"-"`
	TaskFileType    string `gorm:"size:255" json:"task_file_type"`
	TaskFileName    string `gorm:"size:255" json:"task_file_name"`
	TaskFileSize    int64  `gorm:"default:0" json:"task_file_size"`

	TeacherName string `gorm:"size:255" json:"teacher_name"`
	StudentName string `gorm:"size:255" json:"student_name"`
	ClassName   string `gorm:"size:255" json:"class_name"`

	AssignedDate time.Time       `gorm:"autoCreateTime" json:"assigned_date"`
	DueDate      *datatypes.Date `gorm:"index:idx_student_tasks_due_date" json:"due_date"`
	Status       string          `gorm:"size:32;not null;default:Assigned;index:idx_student_tasks_status" json:"status"`

	StudentAnswerText     string     `gorm:"type:text" json:"student_answer_text"`
	StudentAnswerFile     []byte     `json:"-"`
	StudentAnswerFileType string     `gorm:"size:255" json:"student_answer_file_type"`
	StudentAnswerFileName string     `gorm:"size:255" json:"student_answer_file_name"`
	StudentAnswerFileSize int64      `gorm:"default:0" json:"student_answer_file_size"`
	StudentSubmittedDate  *time.Time `json:"student_submitted_date"`

	Points          int        `gorm:"default:10" json:"points"`
	Score           *int       `json:"score"`
	TeacherFeedback string     `gorm:"type:text" json:"teacher_feedback"`
	CheckedDate     *time.Time `json:"checked_date"`

	Tags       string `gorm:"type:text" json:"tags"`
	Difficulty string `gorm:"size:32;default:Medium" json:"difficulty"`
}

// TableName keeps the historical table name.
func (Assignment) TableName() string {
	return "student_tasks"
}

// HasDueDate reports whether a due date was recorded.
func (a Assignment) HasDueDate() bool {
	return a.DueDate != nil && !time.Time(*a.DueDate).IsZero()
}

// DueDay returns the due date as a UTC midnight timestamp.
func (a Assignment) DueDay() time.Time {
	if a.DueDate == nil {
		return time.Time{}
	}
	return Day(time.Time(*a.DueDate))
}

// IsLate reports whether the assignment is still open after its due day.
func (a Assignment) IsLate(today time.Time) bool {
	if !a.HasDueDate() || a.Status != AssignmentStatusAssigned {
		return false
	}
	return a.DueDay().Before(Day(today))
}

// DisplayStatus returns the status shown to users, substituting Late when due.
func (a Assignment) DisplayStatus(today time.Time) string {
	if a.IsLate(today) {
		return AssignmentStatusLate
	}
	return a.Status
}

// HasTaskFile reports whether the teacher attached a file.
func (a Assignment) HasTaskFile() bool {
	return len(a.TaskFile) > 0 || a.TaskFileSize > 0
}

// HasAnswerFile reports whether the student attached a file.
func (a Assignment) HasAnswerFile() bool {
	return len(a.StudentAnswerFile) > 0 || a.StudentAnswerFileSize > 0
}

// Day truncates a timestamp to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StatusPriority orders display statuses for listings.
func StatusPriority(displayStatus string) int {
	switch displayStatus {
	case AssignmentStatusLate:
		return 1
	case AssignmentStatusAssigned:
		return 2
	case AssignmentStatusSubmitted:
		return 3
	case AssignmentStatusReviewed:
		return 4
	default:
		return 5
	}
}
