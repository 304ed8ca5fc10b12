package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/models"
)

// TeacherRepository persists teacher accounts.
type TeacherRepository interface {
	Create(ctx context.Context, teacher *models.Teacher) error
	GetByID(ctx context.Context, id uint) (models.Teacher, error)
	GetByUsername(ctx context.Context, username string) (models.Teacher, error)
	UpdatePassword(ctx context.Context, id uint, digest string) error
}

type teacherRepository struct {
	db *gorm.DB
}

// NewTeacherRepository instantiates a GORM-backed repository.
func NewTeacherRepository(db *gorm.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *teacherRepository) GetByID(ctx context.Context, id uint) (models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.WithContext(ctx).First(&teacher, id).Error; err != nil {
		return models.Teacher{}, err
	}
	return teacher, nil
}

func (r *teacherRepository) GetByUsername(ctx context.Context, username string) (models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&teacher).Error; err != nil {
		return models.Teacher{}, err
	}
	return teacher, nil
}

func (r *teacherRepository) UpdatePassword(ctx context.Context, id uint, digest string) error {
	result := r.db.WithContext(ctx).Model(&models.Teacher{}).Where("id = ?", id).Update("password_digest", digest)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
