package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/models"
	"github.com/noah-isme/qazaq-teachers/internal/repository"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// StudentService manages class rosters and student credentials.
type StudentService interface {
	ListByClass(ctx context.Context, teacherID, classID uint) ([]dto.StudentResponse, error)
	Create(ctx context.Context, teacherID, classID uint, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	Update(ctx context.Context, teacherID, studentID uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, teacherID, studentID uint) error

	RegisterLogin(ctx context.Context, teacherID, studentID uint, payload dto.LoginRegisterRequest) (dto.StudentLoginResponse, error)
	GetLogin(ctx context.Context, teacherID, studentID uint) (dto.StudentLoginResponse, error)
	ResetPassword(ctx context.Context, teacherID, loginID uint, payload dto.PasswordResetRequest) (dto.StudentLoginResponse, error)
	DeleteLogin(ctx context.Context, teacherID, loginID uint) error

	PerformanceOverview(ctx context.Context, teacherID, classID uint) (dto.PerformanceOverview, error)
}

// SessionRevoker drops the live sessions of one account.
type SessionRevoker interface {
	RevokeSubject(ctx context.Context, subjectID uint, role string) error
}

type studentService struct {
	classes   repository.ClassRepository
	students  repository.StudentRepository
	logins    repository.StudentLoginRepository
	sessions  SessionRevoker
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService builds the student service. sessions may be nil.
func NewStudentService(classes repository.ClassRepository, students repository.StudentRepository, logins repository.StudentLoginRepository, sessions SessionRevoker, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		classes:   classes,
		students:  students,
		logins:    logins,
		sessions:  sessions,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) ListByClass(ctx context.Context, teacherID, classID uint) ([]dto.StudentResponse, error) {
	if _, err := ownedClass(ctx, s.classes, teacherID, classID); err != nil {
		return nil, err
	}

	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return dto.NewStudentResponseSlice(students), nil
}

func (s *studentService) Create(ctx context.Context, teacherID, classID uint, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	payload.FullName = strings.TrimSpace(payload.FullName)
	payload.StudentCode = strings.TrimSpace(payload.StudentCode)
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	if _, err := ownedClass(ctx, s.classes, teacherID, classID); err != nil {
		return dto.StudentResponse{}, err
	}

	exists, err := s.students.ExistsByCode(ctx, payload.StudentCode)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	if exists {
		return dto.StudentResponse{}, ErrDuplicateStudentCode
	}

	performance := payload.AcademicPerformance
	if performance == "" {
		performance = models.PerformanceAverage
	}

	student := models.Student{
		ClassID:             classID,
		FullName:            payload.FullName,
		StudentCode:         payload.StudentCode,
		GradePoints:         payload.GradePoints.Value(),
		AcademicPerformance: performance,
	}
	if err := s.students.Create(ctx, &student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentResponse{}, ErrDuplicateStudentCode
		}
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Uint("class_id", classID).Msg("student added")
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Update(ctx context.Context, teacherID, studentID uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	if _, err := s.ownedStudent(ctx, teacherID, studentID); err != nil {
		return dto.StudentResponse{}, err
	}

	updates := map[string]interface{}{}
	if payload.GradePoints != nil {
		updates["grade_points"] = payload.GradePoints.Value()
	}
	if payload.AcademicPerformance != nil {
		updates["academic_performance"] = *payload.AcademicPerformance
	}

	if len(updates) == 0 {
		student, err := s.students.GetByID(ctx, studentID)
		if err != nil {
			return dto.StudentResponse{}, translateStudentErr(err)
		}
		return dto.NewStudentResponse(student), nil
	}

	student, err := s.students.Update(ctx, studentID, updates)
	if err != nil {
		return dto.StudentResponse{}, translateStudentErr(err)
	}

	s.logger.Info().Uint("student_id", studentID).Msg("student updated")
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Delete(ctx context.Context, teacherID, studentID uint) error {
	if _, err := s.ownedStudent(ctx, teacherID, studentID); err != nil {
		return err
	}

	if err := s.students.DeleteCascade(ctx, studentID); err != nil {
		return translateStudentErr(err)
	}
	revokeStudentSessions(ctx, s.sessions, s.logger, studentID)

	s.logger.Info().Uint("student_id", studentID).Msg("student deleted")
	return nil
}

func (s *studentService) RegisterLogin(ctx context.Context, teacherID, studentID uint, payload dto.LoginRegisterRequest) (dto.StudentLoginResponse, error) {
	payload.Username = strings.TrimSpace(payload.Username)
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentLoginResponse{}, err
	}

	if _, err := s.ownedStudent(ctx, teacherID, studentID); err != nil {
		return dto.StudentLoginResponse{}, err
	}

	taken, err := s.logins.UsernameTaken(ctx, payload.Username)
	if err != nil {
		return dto.StudentLoginResponse{}, err
	}
	if taken {
		return dto.StudentLoginResponse{}, ErrUsernameTaken
	}

	if _, err := s.logins.GetByStudentID(ctx, studentID); err == nil {
		return dto.StudentLoginResponse{}, ErrStudentHasLogin
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StudentLoginResponse{}, err
	}

	password, generated, err := passwordOrRandom(payload.Password)
	if err != nil {
		return dto.StudentLoginResponse{}, err
	}
	digest, err := hashPassword(password)
	if err != nil {
		return dto.StudentLoginResponse{}, err
	}

	login := models.StudentLogin{
		StudentID:      studentID,
		Username:       payload.Username,
		PasswordDigest: digest,
	}
	if err := s.logins.Create(ctx, &login); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentLoginResponse{}, ErrUsernameTaken
		}
		return dto.StudentLoginResponse{}, err
	}

	s.logger.Info().Uint("student_id", studentID).Bool("generated_password", generated).Msg("student login registered")

	response := dto.NewStudentLoginResponse(login)
	if generated {
		response.GeneratedPassword = password
	}
	return response, nil
}

func (s *studentService) GetLogin(ctx context.Context, teacherID, studentID uint) (dto.StudentLoginResponse, error) {
	if _, err := s.ownedStudent(ctx, teacherID, studentID); err != nil {
		return dto.StudentLoginResponse{}, err
	}

	login, err := s.logins.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentLoginResponse{}, ErrLoginNotFound
		}
		return dto.StudentLoginResponse{}, err
	}
	return dto.NewStudentLoginResponse(login), nil
}

func (s *studentService) ResetPassword(ctx context.Context, teacherID, loginID uint, payload dto.PasswordResetRequest) (dto.StudentLoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentLoginResponse{}, err
	}

	login, err := s.ownedLogin(ctx, teacherID, loginID)
	if err != nil {
		return dto.StudentLoginResponse{}, err
	}

	password, generated, err := passwordOrRandom(payload.Password)
	if err != nil {
		return dto.StudentLoginResponse{}, err
	}
	digest, err := hashPassword(password)
	if err != nil {
		return dto.StudentLoginResponse{}, err
	}

	if err := s.logins.UpdatePassword(ctx, loginID, digest); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentLoginResponse{}, ErrLoginNotFound
		}
		return dto.StudentLoginResponse{}, err
	}

	revokeStudentSessions(ctx, s.sessions, s.logger, login.StudentID)
	s.logger.Info().Uint("login_id", loginID).Msg("student password reset")

	response := dto.NewStudentLoginResponse(login)
	if generated {
		response.GeneratedPassword = password
	}
	return response, nil
}

func (s *studentService) DeleteLogin(ctx context.Context, teacherID, loginID uint) error {
	login, err := s.ownedLogin(ctx, teacherID, loginID)
	if err != nil {
		return err
	}

	if err := s.logins.Delete(ctx, loginID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLoginNotFound
		}
		return err
	}
	revokeStudentSessions(ctx, s.sessions, s.logger, login.StudentID)

	s.logger.Info().Uint("login_id", loginID).Msg("student login deleted")
	return nil
}

// PerformanceOverview aggregates grade points over the teacher's roster, or
// over one class when classID is set.
func (s *studentService) PerformanceOverview(ctx context.Context, teacherID, classID uint) (dto.PerformanceOverview, error) {
	if classID != 0 {
		if _, err := ownedClass(ctx, s.classes, teacherID, classID); err != nil {
			return dto.PerformanceOverview{}, err
		}
	}

	rows, err := s.students.ListByTeacher(ctx, teacherID)
	if err != nil {
		return dto.PerformanceOverview{}, err
	}

	overview := dto.PerformanceOverview{
		GradeDistribution: map[string]int{"A": 0, "B": 0, "C": 0, "D": 0, "F": 0},
		PerformanceDistribution: map[string]int{
			models.PerformanceExcellent:    0,
			models.PerformanceGood:         0,
			models.PerformanceAverage:      0,
			models.PerformanceSatisfactory: 0,
			models.PerformanceWeak:         0,
		},
		Classes:  []dto.ClassPerformance{},
		Students: []dto.StudentPerformance{},
	}

	total := 0
	classIndex := map[uint]int{}
	classTotals := []int{}
	for _, row := range rows {
		if classID != 0 && row.ClassID != classID {
			continue
		}

		grade := utils.GradeForPoints(row.GradePoints)
		performance := row.AcademicPerformance
		if performance == "" {
			performance = models.PerformanceAverage
		}

		overview.Students = append(overview.Students, dto.StudentPerformance{
			StudentID:           row.ID,
			ClassID:             row.ClassID,
			ClassName:           row.ClassName,
			FullName:            row.FullName,
			StudentCode:         row.StudentCode,
			GradePoints:         row.GradePoints,
			Grade:               grade,
			AcademicPerformance: performance,
		})
		overview.GradeDistribution[grade]++
		overview.PerformanceDistribution[performance]++

		if len(overview.Students) == 1 || row.GradePoints > overview.MaxPoints {
			overview.MaxPoints = row.GradePoints
		}
		if len(overview.Students) == 1 || row.GradePoints < overview.MinPoints {
			overview.MinPoints = row.GradePoints
		}
		total += row.GradePoints

		idx, ok := classIndex[row.ClassID]
		if !ok {
			idx = len(overview.Classes)
			classIndex[row.ClassID] = idx
			overview.Classes = append(overview.Classes, dto.ClassPerformance{ClassID: row.ClassID, ClassName: row.ClassName})
			classTotals = append(classTotals, 0)
		}
		overview.Classes[idx].StudentCount++
		classTotals[idx] += row.GradePoints
	}

	overview.TotalStudents = len(overview.Students)
	overview.ExcellentCount = overview.GradeDistribution["A"]
	overview.WeakCount = overview.GradeDistribution["F"]
	if overview.TotalStudents > 0 {
		overview.AveragePoints = roundTenth(float64(total) / float64(overview.TotalStudents))
	}
	for i := range overview.Classes {
		overview.Classes[i].AveragePoints = roundTenth(float64(classTotals[i]) / float64(overview.Classes[i].StudentCount))
	}

	return overview, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func (s *studentService) ownedStudent(ctx context.Context, teacherID, studentID uint) (repository.StudentWithClass, error) {
	row, err := s.students.GetWithClass(ctx, studentID)
	if err != nil {
		return repository.StudentWithClass{}, translateStudentErr(err)
	}
	if row.TeacherID != teacherID {
		return repository.StudentWithClass{}, ErrStudentNotFound
	}
	return row, nil
}

func (s *studentService) ownedLogin(ctx context.Context, teacherID, loginID uint) (models.StudentLogin, error) {
	login, err := s.logins.GetByID(ctx, loginID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StudentLogin{}, ErrLoginNotFound
		}
		return models.StudentLogin{}, err
	}
	if _, err := s.ownedStudent(ctx, teacherID, login.StudentID); err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return models.StudentLogin{}, ErrLoginNotFound
		}
		return models.StudentLogin{}, err
	}
	return login, nil
}

// revokeStudentSessions is best effort; the sessions expire on their own if redis is unavailable.
func revokeStudentSessions(ctx context.Context, sessions SessionRevoker, logger zerolog.Logger, studentIDs ...uint) {
	if sessions == nil {
		return
	}
	for _, id := range studentIDs {
		if err := sessions.RevokeSubject(ctx, id, RoleStudent); err != nil {
			logger.Error().Err(err).Uint("student_id", id).Msg("failed to revoke student sessions")
		}
	}
}

func passwordOrRandom(password string) (string, bool, error) {
	if password != "" {
		return password, false, nil
	}
	generated, err := RandomPassword(generatedPasswordLength)
	if err != nil {
		return "", false, err
	}
	return generated, true, nil
}

func translateStudentErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrStudentNotFound
	}
	return err
}
