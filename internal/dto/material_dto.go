package dto

import (
	"time"

	"github.com/noah-isme/qazaq-teachers/internal/models"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// MaterialUploadRequest carries the form fields sent with a visual material.
type MaterialUploadRequest struct {
	FileName string `json:"file_name" form:"file_name" validate:"omitempty,max=255"`
	Category string `json:"category" form:"category" validate:"omitempty,max=128"`
}

// MaterialResponse describes a visual material without its blob.
type MaterialResponse struct {
	ID             uint      `json:"id"`
	TeacherID      uint      `json:"teacher_id"`
	FileName       string    `json:"file_name"`
	FileType       string    `json:"file_type"`
	FileSize       int64     `json:"file_size"`
	FileSizeText   string    `json:"file_size_text"`
	Category       string    `json:"category"`
	PublicURL      string    `json:"public_url,omitempty"`
	UploadDate     time.Time `json:"upload_date"`
	UploadDateText string    `json:"upload_date_text"`
}

// NewMaterialResponse converts a model into a DTO.
func NewMaterialResponse(model models.VisualMaterial) MaterialResponse {
	return MaterialResponse{
		ID:             model.ID,
		TeacherID:      model.TeacherID,
		FileName:       model.FileName,
		FileType:       model.FileType,
		FileSize:       model.FileSize,
		FileSizeText:   utils.FormatFileSize(model.FileSize),
		Category:       model.Category,
		PublicURL:      model.PublicURL,
		UploadDate:     model.UploadDate,
		UploadDateText: utils.FormatDateTime(&model.UploadDate),
	}
}

// NewMaterialResponseSlice converts models into DTOs.
func NewMaterialResponseSlice(materials []models.VisualMaterial) []MaterialResponse {
	responses := make([]MaterialResponse, 0, len(materials))
	for _, material := range materials {
		responses = append(responses, NewMaterialResponse(material))
	}
	return responses
}
