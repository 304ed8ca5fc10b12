package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/models"
	"github.com/noah-isme/qazaq-teachers/internal/repository"
)

// MaterialMirror publishes a copy of a material and returns its public URL.
type MaterialMirror interface {
	Mirror(ctx context.Context, name string, data []byte) (string, error)
}

// MaterialService manages visual reference materials.
type MaterialService interface {
	Upload(ctx context.Context, teacherID uint, payload dto.MaterialUploadRequest, file *dto.FileUpload) (dto.MaterialResponse, error)
	List(ctx context.Context, teacherID uint) ([]dto.MaterialResponse, error)
	ListForClass(ctx context.Context, classID uint) ([]dto.MaterialResponse, error)
	File(ctx context.Context, access MaterialAccess, id uint) (dto.FileDownload, error)
	Delete(ctx context.Context, teacherID, id uint) error
}

// MaterialAccess identifies the reader: the owning teacher, or a student
// whose class belongs to that teacher.
type MaterialAccess struct {
	TeacherID uint
	ClassID   uint
}

type materialService struct {
	repo      repository.VisualMaterialRepository
	classes   repository.ClassRepository
	mirror    MaterialMirror
	validator *validator.Validate
	logger    zerolog.Logger
	maxUpload int64
}

// NewMaterialService builds the visual material service. A nil mirror keeps
// materials in the store only.
func NewMaterialService(repo repository.VisualMaterialRepository, classes repository.ClassRepository, mirror MaterialMirror, validate *validator.Validate, maxUploadBytes int64, logger zerolog.Logger) MaterialService {
	return &materialService{
		repo:      repo,
		classes:   classes,
		mirror:    mirror,
		validator: validate,
		logger:    logger.With().Str("component", "material_service").Logger(),
		maxUpload: maxUploadBytes,
	}
}

func (s *materialService) Upload(ctx context.Context, teacherID uint, payload dto.MaterialUploadRequest, file *dto.FileUpload) (dto.MaterialResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MaterialResponse{}, err
	}
	if file == nil || len(file.Data) == 0 {
		return dto.MaterialResponse{}, ErrFileNotFound
	}
	if err := checkUpload(file, s.maxUpload); err != nil {
		return dto.MaterialResponse{}, err
	}

	name := strings.TrimSpace(payload.FileName)
	if name == "" {
		name = file.Name
	}
	if name == "" {
		name = "material"
	}

	material := models.VisualMaterial{
		TeacherID: teacherID,
		FileName:  name,
		FileData:  file.Data,
		FileType:  file.ContentType,
		FileSize:  file.Size(),
		Category:  strings.TrimSpace(payload.Category),
	}
	if err := s.repo.Create(ctx, &material); err != nil {
		return dto.MaterialResponse{}, err
	}
	observeUpload("material", file)

	if s.mirror != nil {
		url, err := s.mirror.Mirror(ctx, name, file.Data)
		if err != nil {
			s.logger.Warn().Err(err).Uint("material_id", material.ID).Msg("failed to mirror material")
		} else if err := s.repo.SetPublicURL(ctx, material.ID, url); err != nil {
			s.logger.Warn().Err(err).Uint("material_id", material.ID).Msg("failed to store mirror url")
		} else {
			material.PublicURL = url
		}
	}

	s.logger.Info().Uint("material_id", material.ID).Int64("size", material.FileSize).Msg("material uploaded")
	return dto.NewMaterialResponse(material), nil
}

func (s *materialService) List(ctx context.Context, teacherID uint) ([]dto.MaterialResponse, error) {
	materials, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return dto.NewMaterialResponseSlice(materials), nil
}

func (s *materialService) ListForClass(ctx context.Context, classID uint) ([]dto.MaterialResponse, error) {
	materials, err := s.repo.ListForClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return dto.NewMaterialResponseSlice(materials), nil
}

func (s *materialService) File(ctx context.Context, access MaterialAccess, id uint) (dto.FileDownload, error) {
	material, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FileDownload{}, ErrMaterialNotFound
		}
		return dto.FileDownload{}, err
	}

	if err := s.authorize(ctx, access, material); err != nil {
		return dto.FileDownload{}, err
	}
	if len(material.FileData) == 0 {
		return dto.FileDownload{}, ErrFileNotFound
	}

	contentType := material.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return dto.FileDownload{Name: material.FileName, ContentType: contentType, Data: material.FileData}, nil
}

func (s *materialService) Delete(ctx context.Context, teacherID, id uint) error {
	material, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMaterialNotFound
		}
		return err
	}
	if material.TeacherID != teacherID {
		return ErrMaterialNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMaterialNotFound
		}
		return err
	}

	s.logger.Info().Uint("material_id", id).Msg("material deleted")
	return nil
}

func (s *materialService) authorize(ctx context.Context, access MaterialAccess, material models.VisualMaterial) error {
	if access.TeacherID != 0 {
		if material.TeacherID != access.TeacherID {
			return ErrMaterialNotFound
		}
		return nil
	}
	if access.ClassID == 0 {
		return ErrMaterialNotFound
	}

	class, err := s.classes.GetByID(ctx, access.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMaterialNotFound
		}
		return err
	}
	if class.TeacherID != material.TeacherID {
		return ErrMaterialNotFound
	}
	return nil
}
