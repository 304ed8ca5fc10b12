package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/models"
)

// StudentWithClass is a student row joined with its class.
type StudentWithClass struct {
	models.Student
	ClassName string
	Subject   string
	TeacherID uint
}

// StudentRepository persists students.
type StudentRepository interface {
	ListByClass(ctx context.Context, classID uint) ([]models.Student, error)
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetWithClass(ctx context.Context, id uint) (StudentWithClass, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]StudentWithClass, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Student, error)
	DeleteCascade(ctx context.Context, id uint) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository instantiates a GORM-backed repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) ListByClass(ctx context.Context, classID uint) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("full_name ASC").
		Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) GetWithClass(ctx context.Context, id uint) (StudentWithClass, error) {
	var row StudentWithClass
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Select("students.*, classes.name AS class_name, classes.subject AS subject, classes.teacher_id AS teacher_id").
		Joins("JOIN classes ON classes.id = students.class_id").
		Where("students.id = ?", id).
		Take(&row).Error
	if err != nil {
		return StudentWithClass{}, err
	}
	return row, nil
}

// ListByTeacher returns every student in the teacher's classes ordered by
// class name and then student name.
func (r *studentRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]StudentWithClass, error) {
	var rows []StudentWithClass
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Select("students.*, classes.name AS class_name, classes.subject AS subject, classes.teacher_id AS teacher_id").
		Joins("JOIN classes ON classes.id = students.class_id").
		Where("classes.teacher_id = ?", teacherID).
		Order("classes.name ASC").
		Order("students.full_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *studentRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Student{}).Where("student_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Student, error) {
	result := r.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.Student{}, result.Error
	}
	return r.GetByID(ctx, id)
}

// DeleteCascade removes the student and its login.
func (r *studentRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&models.StudentLogin{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Student{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
