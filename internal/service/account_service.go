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

// AccountService handles sign-up and sign-in for both portals.
type AccountService interface {
	RegisterTeacher(ctx context.Context, payload dto.TeacherRegisterRequest) (dto.TeacherProfile, error)
	LoginTeacher(ctx context.Context, payload dto.LoginRequest) (dto.TeacherProfile, error)
	Teacher(ctx context.Context, teacherID uint) (dto.TeacherProfile, error)
	LoginStudent(ctx context.Context, payload dto.LoginRequest) (dto.StudentProfile, error)
	Student(ctx context.Context, studentID uint) (dto.StudentProfile, error)
	ChangeStudentPassword(ctx context.Context, studentID uint, payload dto.ChangePasswordRequest) error
}

type accountService struct {
	teachers  repository.TeacherRepository
	students  repository.StudentRepository
	logins    repository.StudentLoginRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAccountService builds the account service.
func NewAccountService(teachers repository.TeacherRepository, students repository.StudentRepository, logins repository.StudentLoginRepository, validate *validator.Validate, logger zerolog.Logger) AccountService {
	return &accountService{
		teachers:  teachers,
		students:  students,
		logins:    logins,
		validator: validate,
		logger:    logger.With().Str("component", "account_service").Logger(),
	}
}

func (s *accountService) RegisterTeacher(ctx context.Context, payload dto.TeacherRegisterRequest) (dto.TeacherProfile, error) {
	payload.Username = strings.TrimSpace(payload.Username)
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeacherProfile{}, err
	}

	if _, err := s.teachers.GetByUsername(ctx, payload.Username); err == nil {
		return dto.TeacherProfile{}, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.TeacherProfile{}, err
	}

	digest, err := hashPassword(payload.Password)
	if err != nil {
		return dto.TeacherProfile{}, err
	}

	teacher := models.Teacher{
		Username:       payload.Username,
		PasswordDigest: digest,
		Email:          strings.TrimSpace(payload.Email),
		FullName:       strings.TrimSpace(payload.FullName),
		School:         strings.TrimSpace(payload.School),
		City:           strings.TrimSpace(payload.City),
	}
	if err := s.teachers.Create(ctx, &teacher); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.TeacherProfile{}, ErrUsernameTaken
		}
		return dto.TeacherProfile{}, err
	}

	s.logger.Info().Uint("teacher_id", teacher.ID).Msg("teacher registered")
	return dto.NewTeacherProfile(teacher), nil
}

func (s *accountService) LoginTeacher(ctx context.Context, payload dto.LoginRequest) (dto.TeacherProfile, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeacherProfile{}, err
	}

	teacher, err := s.teachers.GetByUsername(ctx, strings.TrimSpace(payload.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherProfile{}, ErrInvalidCredentials
		}
		return dto.TeacherProfile{}, err
	}

	ok, rehash := checkPassword(teacher.PasswordDigest, payload.Password)
	if !ok {
		s.logger.Warn().Str("username", teacher.Username).Msg("teacher login rejected")
		return dto.TeacherProfile{}, ErrInvalidCredentials
	}
	if rehash {
		s.upgradeDigest(ctx, "teacher", teacher.ID, payload.Password, s.teachers.UpdatePassword)
	}

	return dto.NewTeacherProfile(teacher), nil
}

func (s *accountService) Teacher(ctx context.Context, teacherID uint) (dto.TeacherProfile, error) {
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherProfile{}, ErrSessionInvalid
		}
		return dto.TeacherProfile{}, err
	}
	return dto.NewTeacherProfile(teacher), nil
}

func (s *accountService) LoginStudent(ctx context.Context, payload dto.LoginRequest) (dto.StudentProfile, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentProfile{}, err
	}

	login, err := s.logins.GetByUsername(ctx, strings.TrimSpace(payload.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentProfile{}, ErrInvalidCredentials
		}
		return dto.StudentProfile{}, err
	}

	ok, rehash := checkPassword(login.PasswordDigest, payload.Password)
	if !ok {
		s.logger.Warn().Str("username", login.Username).Msg("student login rejected")
		return dto.StudentProfile{}, ErrInvalidCredentials
	}
	if rehash {
		s.upgradeDigest(ctx, "student_login", login.ID, payload.Password, s.logins.UpdatePassword)
	}

	return s.studentProfile(ctx, login)
}

func (s *accountService) Student(ctx context.Context, studentID uint) (dto.StudentProfile, error) {
	login, err := s.logins.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentProfile{}, ErrStudentNotFound
		}
		return dto.StudentProfile{}, err
	}
	return s.studentProfile(ctx, login)
}

func (s *accountService) ChangeStudentPassword(ctx context.Context, studentID uint, payload dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	login, err := s.logins.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLoginNotFound
		}
		return err
	}

	if ok, _ := checkPassword(login.PasswordDigest, payload.OldPassword); !ok {
		return ErrInvalidCredentials
	}

	digest, err := hashPassword(payload.NewPassword)
	if err != nil {
		return err
	}

	if err := s.logins.UpdatePassword(ctx, login.ID, digest); err != nil {
		return err
	}

	s.logger.Info().Uint("student_id", studentID).Msg("student password changed")
	return nil
}

// upgradeDigest replaces a legacy digest with a bcrypt hash. Failures are
// logged only; the legacy digest keeps working until the next sign-in.
func (s *accountService) upgradeDigest(ctx context.Context, kind string, id uint, password string, update func(context.Context, uint, string) error) {
	digest, err := hashPassword(password)
	if err == nil {
		err = update(ctx, id, digest)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("account", kind).Uint("id", id).Msg("failed to upgrade legacy password digest")
		return
	}
	s.logger.Info().Str("account", kind).Uint("id", id).Msg("legacy password digest upgraded")
}

func (s *accountService) studentProfile(ctx context.Context, login models.StudentLogin) (dto.StudentProfile, error) {
	row, err := s.students.GetWithClass(ctx, login.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentProfile{}, ErrStudentNotFound
		}
		return dto.StudentProfile{}, err
	}

	performance := row.AcademicPerformance
	if performance == "" {
		performance = models.PerformanceAverage
	}

	return dto.StudentProfile{
		ID:                  row.ID,
		LoginID:             login.ID,
		Username:            login.Username,
		FullName:            row.FullName,
		StudentCode:         row.StudentCode,
		ClassID:             row.ClassID,
		ClassName:           row.ClassName,
		Subject:             row.Subject,
		GradePoints:         row.GradePoints,
		AcademicPerformance: performance,
	}, nil
}
