package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/qazaq-teachers/internal/models"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// PointsInput accepts grade points as a JSON number or string.
type PointsInput string

// UnmarshalJSON implements json.Unmarshaler.
func (p *PointsInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*p = PointsInput(text)
		return nil
	}

	*p = PointsInput(string(data))
	return nil
}

// Value parses the input into 1..10 points. Fractions are truncated and
// anything unparsable falls back to the default.
func (p PointsInput) Value() int {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(string(p)), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return models.DefaultGradePoints
	}
	parsed = math.Max(models.MinGradePoints, math.Min(models.MaxGradePoints, parsed))
	return models.ClampGradePoints(int(parsed))
}

// StudentCreateRequest adds a student to a class.
type StudentCreateRequest struct {
	FullName            string      `json:"full_name" form:"full_name" validate:"required,max=255"`
	StudentCode         string      `json:"student_code" form:"student_code" validate:"required,max=64"`
	GradePoints         PointsInput `json:"grade_points" form:"grade_points"`
	AcademicPerformance string      `json:"academic_performance" form:"academic_performance" validate:"omitempty,oneof=Excellent Good Average Satisfactory Weak"`
}

// StudentUpdateRequest edits grade points and performance.
type StudentUpdateRequest struct {
	GradePoints         *PointsInput `json:"grade_points" form:"grade_points"`
	AcademicPerformance *string      `json:"academic_performance" form:"academic_performance" validate:"omitempty,oneof=Excellent Good Average Satisfactory Weak"`
}

// StudentResponse is the teacher portal view of a student.
type StudentResponse struct {
	ID                  uint      `json:"id"`
	ClassID             uint      `json:"class_id"`
	FullName            string    `json:"full_name"`
	StudentCode         string    `json:"student_code"`
	GradePoints         int       `json:"grade_points"`
	Grade               string    `json:"grade"`
	AcademicPerformance string    `json:"academic_performance"`
	CreatedAt           time.Time `json:"created_at"`
}

// NewStudentResponse converts a model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	performance := model.AcademicPerformance
	if performance == "" {
		performance = models.PerformanceAverage
	}

	return StudentResponse{
		ID:                  model.ID,
		ClassID:             model.ClassID,
		FullName:            model.FullName,
		StudentCode:         model.StudentCode,
		GradePoints:         model.GradePoints,
		Grade:               utils.GradeForPoints(model.GradePoints),
		AcademicPerformance: performance,
		CreatedAt:           model.CreatedAt,
	}
}

// NewStudentResponseSlice converts models into DTOs.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}
	return responses
}

// LoginRegisterRequest issues credentials to a student. An empty password
// asks the server to generate one.
type LoginRegisterRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" form:"password" validate:"omitempty,min=6,max=128"`
}

// PasswordResetRequest replaces a student's password.
type PasswordResetRequest struct {
	Password string `json:"password" form:"password" validate:"omitempty,min=6,max=128"`
}

// StudentLoginResponse describes a student's credential. GeneratedPassword is
// only populated on the response that created it.
type StudentLoginResponse struct {
	ID                uint      `json:"id"`
	StudentID         uint      `json:"student_id"`
	Username          string    `json:"username"`
	GeneratedPassword string    `json:"generated_password,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewStudentLoginResponse converts a model into a DTO.
func NewStudentLoginResponse(model models.StudentLogin) StudentLoginResponse {
	return StudentLoginResponse{
		ID:        model.ID,
		StudentID: model.StudentID,
		Username:  model.Username,
		CreatedAt: model.CreatedAt,
	}
}

// GradesResponse is the student portal grade card.
type GradesResponse struct {
	StudentID           uint              `json:"student_id"`
	FullName            string            `json:"full_name"`
	GradePoints         int               `json:"grade_points"`
	Grade               string            `json:"grade"`
	AcademicPerformance string            `json:"academic_performance"`
	ReviewedCount       int               `json:"reviewed_count"`
	AverageScore        float64           `json:"average_score"`
	Reviewed            []AssignmentGrade `json:"reviewed"`
}

// AssignmentGrade is a reviewed assignment on the grade card.
type AssignmentGrade struct {
	AssignmentID    uint   `json:"assignment_id"`
	TaskName        string `json:"task_name"`
	Score           *int   `json:"score"`
	Points          int    `json:"points"`
	TeacherFeedback string `json:"teacher_feedback"`
	CheckedDate     string `json:"checked_date"`
}

// PerformanceOverview summarises grade points across a teacher's roster.
type PerformanceOverview struct {
	TotalStudents           int                  `json:"total_students"`
	AveragePoints           float64              `json:"average_points"`
	MaxPoints               int                  `json:"max_points"`
	MinPoints               int                  `json:"min_points"`
	ExcellentCount          int                  `json:"excellent_count"`
	WeakCount               int                  `json:"weak_count"`
	GradeDistribution       map[string]int       `json:"grade_distribution"`
	PerformanceDistribution map[string]int       `json:"performance_distribution"`
	Classes                 []ClassPerformance   `json:"classes"`
	Students                []StudentPerformance `json:"students"`
}

// ClassPerformance is the average grade points of one class.
type ClassPerformance struct {
	ClassID       uint    `json:"class_id"`
	ClassName     string  `json:"class_name"`
	StudentCount  int     `json:"student_count"`
	AveragePoints float64 `json:"average_points"`
}

// StudentPerformance is one row of the performance table.
type StudentPerformance struct {
	StudentID           uint   `json:"student_id"`
	ClassID             uint   `json:"class_id"`
	ClassName           string `json:"class_name"`
	FullName            string `json:"full_name"`
	StudentCode         string `json:"student_code"`
	GradePoints         int    `json:"grade_points"`
	Grade               string `json:"grade"`
	AcademicPerformance string `json:"academic_performance"`
}
