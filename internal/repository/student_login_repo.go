package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/models"
)

// StudentLoginRepository persists student credentials.
type StudentLoginRepository interface {
	GetByID(ctx context.Context, id uint) (models.StudentLogin, error)
	GetByStudentID(ctx context.Context, studentID uint) (models.StudentLogin, error)
	GetByUsername(ctx context.Context, username string) (models.StudentLogin, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, login *models.StudentLogin) error
	UpdatePassword(ctx context.Context, id uint, digest string) error
	Delete(ctx context.Context, id uint) error
}

type studentLoginRepository struct {
	db *gorm.DB
}

// NewStudentLoginRepository instantiates a GORM-backed repository.
func NewStudentLoginRepository(db *gorm.DB) StudentLoginRepository {
	return &studentLoginRepository{db: db}
}

func (r *studentLoginRepository) GetByID(ctx context.Context, id uint) (models.StudentLogin, error) {
	var login models.StudentLogin
	if err := r.db.WithContext(ctx).First(&login, id).Error; err != nil {
		return models.StudentLogin{}, err
	}
	return login, nil
}

func (r *studentLoginRepository) GetByStudentID(ctx context.Context, studentID uint) (models.StudentLogin, error) {
	var login models.StudentLogin
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&login).Error; err != nil {
		return models.StudentLogin{}, err
	}
	return login, nil
}

func (r *studentLoginRepository) GetByUsername(ctx context.Context, username string) (models.StudentLogin, error) {
	var login models.StudentLogin
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&login).Error; err != nil {
		return models.StudentLogin{}, err
	}
	return login, nil
}

func (r *studentLoginRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.StudentLogin{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *studentLoginRepository) Create(ctx context.Context, login *models.StudentLogin) error {
	return r.db.WithContext(ctx).Create(login).Error
}

func (r *studentLoginRepository) UpdatePassword(ctx context.Context, id uint, digest string) error {
	result := r.db.WithContext(ctx).Model(&models.StudentLogin{}).Where("id = ?", id).Update("password_digest", digest)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentLoginRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.StudentLogin{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
