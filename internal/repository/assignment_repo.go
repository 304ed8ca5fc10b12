package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/models"
)

// blobColumns are skipped by listing queries.
var blobColumns = []string{"task_file", "student_answer_file"}

// AssignmentCounts is the aggregate behind the teacher statistics panel.
type AssignmentCounts struct {
	Total     int64
	Assigned  int64
	Submitted int64
	Reviewed  int64
	Overdue   int64
}

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	GetWithFiles(ctx context.Context, id uint) (models.Assignment, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Assignment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Assignment, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	Statistics(ctx context.Context, teacherID uint, today time.Time) (AssignmentCounts, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).Omit(blobColumns...).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (r *assignmentRepository) GetWithFiles(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (r *assignmentRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Assignment, error) {
	return r.list(ctx, "teacher_id = ?", teacherID)
}

func (r *assignmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Assignment, error) {
	return r.list(ctx, "student_id = ?", studentID)
}

// list orders by due date with undated rows last on every driver.
func (r *assignmentRepository) list(ctx context.Context, where string, id uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Omit(blobColumns...).
		Where(where, id).
		Order("due_date IS NULL").
		Order("due_date ASC").
		Order("assigned_date DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Assignment{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Statistics counts a teacher's assignments per stored status in one query.
// Overdue rows are still Assigned with a due day before today.
func (r *assignmentRepository) Statistics(ctx context.Context, teacherID uint, today time.Time) (AssignmentCounts, error) {
	var counts AssignmentCounts
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS assigned, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS submitted, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS reviewed, "+
				"COALESCE(SUM(CASE WHEN status = ? AND due_date IS NOT NULL AND due_date < ? THEN 1 ELSE 0 END), 0) AS overdue",
			models.AssignmentStatusAssigned,
			models.AssignmentStatusSubmitted,
			models.AssignmentStatusReviewed,
			models.AssignmentStatusAssigned,
			datatypes.Date(models.Day(today)),
		).
		Where("teacher_id = ?", teacherID).
		Scan(&counts).Error
	if err != nil {
		return AssignmentCounts{}, err
	}
	return counts, nil
}
