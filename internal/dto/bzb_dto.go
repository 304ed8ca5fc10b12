package dto

import (
	"time"

	"github.com/noah-isme/qazaq-teachers/internal/models"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// BZBCreateRequest attaches a standardized assessment to a class.
type BZBCreateRequest struct {
	ClassID         uint   `json:"class_id" form:"class_id" validate:"required"`
	TaskName        string `json:"task_name" form:"task_name" validate:"required,max=255"`
	CompletionRate  int    `json:"completion_rate" form:"completion_rate" validate:"min=0,max=100"`
	DifficultyLevel string `json:"difficulty_level" form:"difficulty_level" validate:"required,oneof=Easy Medium Hard"`
}

// BZBTaskResponse describes a BZB task without its blob.
type BZBTaskResponse struct {
	ID              uint      `json:"id"`
	TeacherID       uint      `json:"teacher_id"`
	ClassID         uint      `json:"class_id"`
	ClassName       string    `json:"class_name"`
	TaskName        string    `json:"task_name"`
	FileType        string    `json:"file_type"`
	UploadDate      time.Time `json:"upload_date"`
	UploadDateText  string    `json:"upload_date_text"`
	CompletionRate  int       `json:"completion_rate"`
	DifficultyLevel string    `json:"difficulty_level"`
	AISolution      string    `json:"ai_solution"`
}

// NewBZBTaskResponse converts a model into a DTO.
func NewBZBTaskResponse(model models.BZBTask, className string) BZBTaskResponse {
	return BZBTaskResponse{
		ID:              model.ID,
		TeacherID:       model.TeacherID,
		ClassID:         model.ClassID,
		ClassName:       className,
		TaskName:        model.TaskName,
		FileType:        model.FileType,
		UploadDate:      model.UploadDate,
		UploadDateText:  utils.FormatDateTime(&model.UploadDate),
		CompletionRate:  model.CompletionRate,
		DifficultyLevel: model.DifficultyLevel,
		AISolution:      model.AISolution,
	}
}
