package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/models"
	"github.com/noah-isme/qazaq-teachers/internal/repository"
)

// ClassService exposes class management for the teacher portal.
type ClassService interface {
	List(ctx context.Context, teacherID uint) ([]dto.ClassResponse, error)
	Create(ctx context.Context, teacherID uint, payload dto.ClassCreateRequest) (dto.ClassResponse, error)
	Get(ctx context.Context, teacherID, classID uint) (dto.ClassResponse, error)
	Delete(ctx context.Context, teacherID, classID uint) error
	Counts(ctx context.Context, teacherID uint) (dto.ClassCounts, error)
}

type classService struct {
	repo      repository.ClassRepository
	students  repository.StudentRepository
	sessions  SessionRevoker
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewClassService builds the class service. sessions may be nil.
func NewClassService(repo repository.ClassRepository, students repository.StudentRepository, sessions SessionRevoker, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		repo:      repo,
		students:  students,
		sessions:  sessions,
		validator: validate,
		logger:    logger.With().Str("component", "class_service").Logger(),
	}
}

func (s *classService) List(ctx context.Context, teacherID uint) ([]dto.ClassResponse, error) {
	classes, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return dto.NewClassResponseSlice(classes), nil
}

func (s *classService) Create(ctx context.Context, teacherID uint, payload dto.ClassCreateRequest) (dto.ClassResponse, error) {
	payload.Name = strings.TrimSpace(payload.Name)
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class := models.Class{
		TeacherID:   teacherID,
		Name:        payload.Name,
		Subject:     strings.TrimSpace(payload.Subject),
		GradeLevel:  strings.TrimSpace(payload.GradeLevel),
		Description: strings.TrimSpace(payload.Description),
	}
	if err := s.repo.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Uint("teacher_id", teacherID).Msg("class created")
	return dto.NewClassResponse(class), nil
}

func (s *classService) Get(ctx context.Context, teacherID, classID uint) (dto.ClassResponse, error) {
	class, err := ownedClass(ctx, s.repo, teacherID, classID)
	if err != nil {
		return dto.ClassResponse{}, err
	}
	return dto.NewClassResponse(class), nil
}

func (s *classService) Delete(ctx context.Context, teacherID, classID uint) error {
	if _, err := ownedClass(ctx, s.repo, teacherID, classID); err != nil {
		return err
	}

	roster, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteCascade(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	ids := make([]uint, 0, len(roster))
	for _, student := range roster {
		ids = append(ids, student.ID)
	}
	revokeStudentSessions(ctx, s.sessions, s.logger, ids...)

	s.logger.Info().Uint("class_id", classID).Uint("teacher_id", teacherID).Msg("class deleted")
	return nil
}

func (s *classService) Counts(ctx context.Context, teacherID uint) (dto.ClassCounts, error) {
	classes, err := s.repo.CountByTeacher(ctx, teacherID)
	if err != nil {
		return dto.ClassCounts{}, err
	}
	students, err := s.repo.CountStudentsByTeacher(ctx, teacherID)
	if err != nil {
		return dto.ClassCounts{}, err
	}
	return dto.ClassCounts{Classes: classes, Students: students}, nil
}

// ownedClass loads a class and hides classes owned by other teachers.
func ownedClass(ctx context.Context, repo repository.ClassRepository, teacherID, classID uint) (models.Class, error) {
	class, err := repo.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Class{}, ErrClassNotFound
		}
		return models.Class{}, err
	}
	if class.TeacherID != teacherID {
		return models.Class{}, ErrClassNotFound
	}
	return class, nil
}
