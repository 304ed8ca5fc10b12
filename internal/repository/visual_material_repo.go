package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/models"
)

// VisualMaterialRepository persists teacher reference files.
type VisualMaterialRepository interface {
	Create(ctx context.Context, material *models.VisualMaterial) error
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.VisualMaterial, error)
	ListForClass(ctx context.Context, classID uint) ([]models.VisualMaterial, error)
	GetByID(ctx context.Context, id uint) (models.VisualMaterial, error)
	SetPublicURL(ctx context.Context, id uint, url string) error
	Delete(ctx context.Context, id uint) error
}

type visualMaterialRepository struct {
	db *gorm.DB
}

// NewVisualMaterialRepository instantiates a GORM-backed repository.
func NewVisualMaterialRepository(db *gorm.DB) VisualMaterialRepository {
	return &visualMaterialRepository{db: db}
}

func (r *visualMaterialRepository) Create(ctx context.Context, material *models.VisualMaterial) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *visualMaterialRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.VisualMaterial, error) {
	var materials []models.VisualMaterial
	if err := r.db.WithContext(ctx).
		Omit("file_data").
		Where("teacher_id = ?", teacherID).
		Order("upload_date DESC").
		Order("id DESC").
		Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

// ListForClass returns the materials uploaded by the class's teacher.
func (r *visualMaterialRepository) ListForClass(ctx context.Context, classID uint) ([]models.VisualMaterial, error) {
	var materials []models.VisualMaterial
	if err := r.db.WithContext(ctx).
		Omit("file_data").
		Where("teacher_id IN (?)", r.db.Model(&models.Class{}).Select("teacher_id").Where("id = ?", classID)).
		Order("upload_date DESC").
		Order("id DESC").
		Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *visualMaterialRepository) GetByID(ctx context.Context, id uint) (models.VisualMaterial, error) {
	var material models.VisualMaterial
	if err := r.db.WithContext(ctx).First(&material, id).Error; err != nil {
		return models.VisualMaterial{}, err
	}
	return material, nil
}

func (r *visualMaterialRepository) SetPublicURL(ctx context.Context, id uint, url string) error {
	return r.db.WithContext(ctx).Model(&models.VisualMaterial{}).Where("id = ?", id).Update("public_url", url).Error
}

func (r *visualMaterialRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.VisualMaterial{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
