package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/models"
)

// ClassRepository persists classes and runs the class-level cascade.
type ClassRepository interface {
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error)
	GetByID(ctx context.Context, id uint) (models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	DeleteCascade(ctx context.Context, id uint) error
	CountByTeacher(ctx context.Context, teacherID uint) (int64, error)
	CountStudentsByTeacher(ctx context.Context, teacherID uint) (int64, error)
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository instantiates a GORM-backed repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("name ASC").
		Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) GetByID(ctx context.Context, id uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

// DeleteCascade removes the class together with its students, their logins
// and its BZB tasks. Assignments issued to the class are kept.
func (r *classRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		students := tx.Model(&models.Student{}).Select("id").Where("class_id = ?", id)

		if err := tx.Where("student_id IN (?)", students).Delete(&models.StudentLogin{}).Error; err != nil {
			return err
		}
		if err := tx.Where("class_id = ?", id).Delete(&models.Student{}).Error; err != nil {
			return err
		}
		if err := tx.Where("class_id = ?", id).Delete(&models.BZBTask{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Class{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *classRepository) CountByTeacher(ctx context.Context, teacherID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Class{}).Where("teacher_id = ?", teacherID).Count(&count).Error
	return count, err
}

func (r *classRepository) CountStudentsByTeacher(ctx context.Context, teacherID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Joins("JOIN classes ON classes.id = students.class_id").
		Where("classes.teacher_id = ?", teacherID).
		Count(&count).Error
	return count, err
}
