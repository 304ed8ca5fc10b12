package dto

import (
	"time"

	"github.com/noah-isme/qazaq-teachers/internal/models"
)

// ClassCreateRequest describes a new class.
type ClassCreateRequest struct {
	Name        string `json:"name" form:"name" validate:"required,max=255"`
	Subject     string `json:"subject" form:"subject" validate:"omitempty,max=255"`
	GradeLevel  string `json:"grade_level" form:"grade_level" validate:"omitempty,max=64"`
	Description string `json:"description" form:"description" validate:"omitempty,max=2000"`
}

// ClassResponse is the serialized representation of a class.
type ClassResponse struct {
	ID          uint      `json:"id"`
	TeacherID   uint      `json:"teacher_id"`
	Name        string    `json:"name"`
	Subject     string    `json:"subject"`
	GradeLevel  string    `json:"grade_level"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewClassResponse converts a model into a DTO.
func NewClassResponse(model models.Class) ClassResponse {
	return ClassResponse{
		ID:          model.ID,
		TeacherID:   model.TeacherID,
		Name:        model.Name,
		Subject:     model.Subject,
		GradeLevel:  model.GradeLevel,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
	}
}

// NewClassResponseSlice converts models into DTOs.
func NewClassResponseSlice(classes []models.Class) []ClassResponse {
	responses := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewClassResponse(class))
	}
	return responses
}

// ClassCounts summarises the teacher's roster.
type ClassCounts struct {
	Classes  int64 `json:"classes"`
	Students int64 `json:"students"`
}

// DashboardResponse aggregates the teacher portal landing view.
type DashboardResponse struct {
	Counts     ClassCounts          `json:"counts"`
	Statistics AssignmentStatistics `json:"statistics"`
}
