package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/models"
	"github.com/noah-isme/qazaq-teachers/internal/repository"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// NoGuidance is returned for difficulty levels outside the guidance table.
const NoGuidance = "No suggestion available"

var guidanceTable = map[string][3]string{
	models.DifficultyEasy: {
		"• Simple explanations\n• Step-by-step instructions\n• Worked examples",
		"• Full explanation\n• Walk through the formulas\n• Practical examples",
		"• Analysis and solution\n• Alternative approaches\n• In-depth exploration",
	},
	models.DifficultyMedium: {
		"• Core explanations\n• Step-by-step guidance\n• Simplified approach",
		"• Complete analysis\n• Formulas and rules\n• Explanation through examples",
		"• Comprehensive explanation\n• Scientific approaches\n• Additional resources",
	},
	models.DifficultyHard: {
		"• Key takeaways\n• Starting approaches\n• Explanation through examples",
		"• Deep analysis\n• Advanced formulas\n• Multi-level solutions",
		"• Research and analysis\n• Innovative approaches\n• Scientific grounding",
	},
}

// Guidance picks the static guidance text for a completion rate and
// difficulty. Rates below 30 are low, below 70 medium, otherwise high.
func Guidance(completionRate int, difficulty string) string {
	row, ok := guidanceTable[difficulty]
	if !ok {
		return NoGuidance
	}

	switch {
	case completionRate < 30:
		return row[0]
	case completionRate < 70:
		return row[1]
	default:
		return row[2]
	}
}

// BZBService manages standardized assessment tasks.
type BZBService interface {
	Create(ctx context.Context, teacherID uint, payload dto.BZBCreateRequest, file *dto.FileUpload) (dto.BZBTaskResponse, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]dto.BZBTaskResponse, error)
	ListByClass(ctx context.Context, classID uint) ([]dto.BZBTaskResponse, error)
	File(ctx context.Context, access BZBAccess, id uint) (dto.FileDownload, error)
	Delete(ctx context.Context, teacherID, id uint) error
}

// BZBAccess identifies the reader of a BZB file: the owning teacher or a
// student of the task's class.
type BZBAccess struct {
	TeacherID uint
	ClassID   uint
}

type bzbService struct {
	repo      repository.BZBTaskRepository
	classes   repository.ClassRepository
	validator *validator.Validate
	logger    zerolog.Logger
	maxUpload int64
}

// NewBZBService builds the BZB task service.
func NewBZBService(repo repository.BZBTaskRepository, classes repository.ClassRepository, validate *validator.Validate, maxUploadBytes int64, logger zerolog.Logger) BZBService {
	return &bzbService{
		repo:      repo,
		classes:   classes,
		validator: validate,
		logger:    logger.With().Str("component", "bzb_service").Logger(),
		maxUpload: maxUploadBytes,
	}
}

func (s *bzbService) Create(ctx context.Context, teacherID uint, payload dto.BZBCreateRequest, file *dto.FileUpload) (dto.BZBTaskResponse, error) {
	payload.TaskName = strings.TrimSpace(payload.TaskName)
	if err := s.validator.Struct(payload); err != nil {
		return dto.BZBTaskResponse{}, err
	}
	if file == nil || len(file.Data) == 0 {
		return dto.BZBTaskResponse{}, ErrFileNotFound
	}
	if err := checkUpload(file, s.maxUpload); err != nil {
		return dto.BZBTaskResponse{}, err
	}

	class, err := ownedClass(ctx, s.classes, teacherID, payload.ClassID)
	if err != nil {
		return dto.BZBTaskResponse{}, err
	}

	task := models.BZBTask{
		TeacherID:       teacherID,
		ClassID:         class.ID,
		TaskName:        payload.TaskName,
		TaskFile:        file.Data,
		FileType:        file.ContentType,
		CompletionRate:  payload.CompletionRate,
		DifficultyLevel: payload.DifficultyLevel,
		AISolution:      Guidance(payload.CompletionRate, payload.DifficultyLevel),
	}
	if err := s.repo.Create(ctx, &task); err != nil {
		return dto.BZBTaskResponse{}, err
	}

	observeUpload("bzb", file)
	s.logger.Info().Uint("bzb_task_id", task.ID).Uint("class_id", class.ID).Msg("bzb task created")
	return dto.NewBZBTaskResponse(task, class.Name), nil
}

func (s *bzbService) ListByTeacher(ctx context.Context, teacherID uint) ([]dto.BZBTaskResponse, error) {
	rows, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return bzbResponses(rows), nil
}

func (s *bzbService) ListByClass(ctx context.Context, classID uint) ([]dto.BZBTaskResponse, error) {
	rows, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return bzbResponses(rows), nil
}

func (s *bzbService) File(ctx context.Context, access BZBAccess, id uint) (dto.FileDownload, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FileDownload{}, ErrBZBTaskNotFound
		}
		return dto.FileDownload{}, err
	}

	allowed := (access.TeacherID != 0 && task.TeacherID == access.TeacherID) ||
		(access.ClassID != 0 && task.ClassID == access.ClassID)
	if !allowed {
		return dto.FileDownload{}, ErrBZBTaskNotFound
	}
	if len(task.TaskFile) == 0 {
		return dto.FileDownload{}, ErrFileNotFound
	}

	contentType := task.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return dto.FileDownload{
		Name:        fmt.Sprintf("%s.%s", utils.SafeFileName(task.TaskName), utils.FileExtension(contentType)),
		ContentType: contentType,
		Data:        task.TaskFile,
	}, nil
}

func (s *bzbService) Delete(ctx context.Context, teacherID, id uint) error {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBZBTaskNotFound
		}
		return err
	}
	if task.TeacherID != teacherID {
		return ErrBZBTaskNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBZBTaskNotFound
		}
		return err
	}

	s.logger.Info().Uint("bzb_task_id", id).Msg("bzb task deleted")
	return nil
}

func bzbResponses(rows []repository.BZBTaskRow) []dto.BZBTaskResponse {
	responses := make([]dto.BZBTaskResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.NewBZBTaskResponse(row.BZBTask, row.ClassName))
	}
	return responses
}
