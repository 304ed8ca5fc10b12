package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/models"
)

// BZBTaskRow is a BZB task listed together with its class name.
type BZBTaskRow struct {
	models.BZBTask
	ClassName string
}

// BZBTaskRepository persists standardized assessment tasks.
type BZBTaskRepository interface {
	Create(ctx context.Context, task *models.BZBTask) error
	ListByTeacher(ctx context.Context, teacherID uint) ([]BZBTaskRow, error)
	ListByClass(ctx context.Context, classID uint) ([]BZBTaskRow, error)
	GetByID(ctx context.Context, id uint) (models.BZBTask, error)
	Delete(ctx context.Context, id uint) error
}

type bzbTaskRepository struct {
	db *gorm.DB
}

// NewBZBTaskRepository instantiates a GORM-backed repository.
func NewBZBTaskRepository(db *gorm.DB) BZBTaskRepository {
	return &bzbTaskRepository{db: db}
}

func (r *bzbTaskRepository) Create(ctx context.Context, task *models.BZBTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *bzbTaskRepository) listQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.BZBTask{}).
		Select("bzb_tasks.id, bzb_tasks.teacher_id, bzb_tasks.class_id, bzb_tasks.task_name, bzb_tasks.file_type, " +
			"bzb_tasks.upload_date, bzb_tasks.completion_rate, bzb_tasks.difficulty_level, bzb_tasks.ai_solution, " +
			"classes.name AS class_name").
		Joins("LEFT JOIN classes ON classes.id = bzb_tasks.class_id").
		Order("bzb_tasks.upload_date DESC").
		Order("bzb_tasks.id DESC")
}

func (r *bzbTaskRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]BZBTaskRow, error) {
	var rows []BZBTaskRow
	if err := r.listQuery(ctx).Where("bzb_tasks.teacher_id = ?", teacherID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *bzbTaskRepository) ListByClass(ctx context.Context, classID uint) ([]BZBTaskRow, error) {
	var rows []BZBTaskRow
	if err := r.listQuery(ctx).Where("bzb_tasks.class_id = ?", classID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *bzbTaskRepository) GetByID(ctx context.Context, id uint) (models.BZBTask, error) {
	var task models.BZBTask
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return models.BZBTask{}, err
	}
	return task, nil
}

func (r *bzbTaskRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.BZBTask{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
