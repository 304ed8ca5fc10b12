package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/models"
	"github.com/noah-isme/qazaq-teachers/internal/observability"
	"github.com/noah-isme/qazaq-teachers/internal/repository"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
	"github.com/noah-isme/qazaq-teachers/pkg/events"
)

// File kinds stored on an assignment.
const (
	FileKindTask   = "task"
	FileKindAnswer = "answer"
)

// Access identifies who is reading an assignment. Exactly one field is set.
type Access struct {
	TeacherID uint
	StudentID uint
}

func (a Access) allows(assignment models.Assignment) bool {
	switch {
	case a.TeacherID != 0:
		return assignment.TeacherID == a.TeacherID
	case a.StudentID != 0:
		return assignment.StudentID == a.StudentID
	default:
		return false
	}
}

// AssignmentService exposes the assignment lifecycle shared by both portals.
type AssignmentService interface {
	Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest, file *dto.FileUpload) (dto.AssignmentResponse, error)
	CreateBatch(ctx context.Context, teacherID uint, payload dto.AssignmentBatchRequest, file *dto.FileUpload) ([]dto.BatchResult, error)
	Get(ctx context.Context, access Access, id uint) (dto.AssignmentResponse, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]dto.AssignmentResponse, error)
	ListByStudent(ctx context.Context, studentID uint) ([]dto.AssignmentResponse, error)
	SubmitAnswer(ctx context.Context, studentID, id uint, payload dto.AnswerRequest, file *dto.FileUpload) (dto.AssignmentResponse, error)
	Review(ctx context.Context, teacherID, id uint, payload dto.ReviewRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, teacherID, id uint) error
	Statistics(ctx context.Context, teacherID uint) (dto.AssignmentStatistics, error)
	File(ctx context.Context, access Access, id uint, kind string) (dto.FileDownload, error)
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	students  repository.StudentRepository
	teachers  repository.TeacherRepository
	validator *validator.Validate
	publisher events.Publisher
	logger    zerolog.Logger
	tracer    trace.Tracer
	maxUpload int64
	now       func() time.Time
}

// NewAssignmentService builds a new assignment service. A nil publisher disables events.
func NewAssignmentService(repo repository.AssignmentRepository, students repository.StudentRepository, teachers repository.TeacherRepository, validate *validator.Validate, publisher events.Publisher, maxUploadBytes int64, logger zerolog.Logger) AssignmentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &assignmentService{
		repo:      repo,
		students:  students,
		teachers:  teachers,
		validator: validate,
		publisher: publisher,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/qazaq-teachers/internal/service/assignment"),
		maxUpload: maxUploadBytes,
		now:       time.Now,
	}
}

func (s *assignmentService) today() time.Time {
	return models.Day(s.now())
}

func (s *assignmentService) Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest, file *dto.FileUpload) (dto.AssignmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.create")
	defer span.End()
	span.SetAttributes(attribute.Int("assignment.teacher_id", int(teacherID)), attribute.Int("assignment.student_id", int(payload.StudentID)))

	payload.TaskName = strings.TrimSpace(payload.TaskName)
	if err := s.validator.Struct(payload); err != nil {
		recordSpanError(span, err, "validation failed")
		return dto.AssignmentResponse{}, err
	}
	if err := checkUpload(file, s.maxUpload); err != nil {
		recordSpanError(span, err, "file too large")
		return dto.AssignmentResponse{}, err
	}

	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		recordSpanError(span, err, "teacher lookup failed")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrForbidden
		}
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.insert(ctx, teacher, payload, file)
	if err != nil {
		recordSpanError(span, err, "insert failed")
		return dto.AssignmentResponse{}, err
	}

	span.SetStatus(codes.Ok, "created")
	return dto.NewAssignmentResponse(assignment, s.today()), nil
}

func (s *assignmentService) CreateBatch(ctx context.Context, teacherID uint, payload dto.AssignmentBatchRequest, file *dto.FileUpload) ([]dto.BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.create_batch")
	defer span.End()
	span.SetAttributes(attribute.Int("assignment.teacher_id", int(teacherID)), attribute.Int("assignment.batch_size", len(payload.StudentIDs)))

	payload.TaskName = strings.TrimSpace(payload.TaskName)
	if err := s.validator.Struct(payload); err != nil {
		recordSpanError(span, err, "validation failed")
		return nil, err
	}
	if err := checkUpload(file, s.maxUpload); err != nil {
		recordSpanError(span, err, "file too large")
		return nil, err
	}

	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		recordSpanError(span, err, "teacher lookup failed")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	results := make([]dto.BatchResult, 0, len(payload.StudentIDs))
	failures := 0
	for _, studentID := range payload.StudentIDs {
		result := dto.BatchResult{StudentID: studentID}

		assignment, err := s.insert(ctx, teacher, payload.ForStudent(studentID), file)
		if err != nil {
			failures++
			result.Message = err.Error()
		} else {
			id := assignment.ID
			result.Success = true
			result.AssignmentID = &id
			result.Message = fmt.Sprintf("assigned to %s", assignment.StudentName)
		}
		results = append(results, result)
	}

	span.SetAttributes(attribute.Int("assignment.batch_failures", failures))
	if failures > 0 {
		span.SetStatus(codes.Error, "partial batch")
		s.logger.Warn().Uint("teacher_id", teacherID).Int("failures", failures).Int("total", len(results)).Msg("assignment batch partially failed")
	} else {
		span.SetStatus(codes.Ok, "created")
	}

	return results, nil
}

// insert writes a single row, snapshotting teacher, student and class names.
func (s *assignmentService) insert(ctx context.Context, teacher models.Teacher, payload dto.AssignmentCreateRequest, file *dto.FileUpload) (models.Assignment, error) {
	student, err := s.students.GetWithClass(ctx, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrStudentNotFound
		}
		return models.Assignment{}, err
	}
	if student.TeacherID != teacher.ID {
		return models.Assignment{}, ErrStudentNotFound
	}

	points := models.DefaultAssignmentPoints
	if payload.Points != nil {
		points = *payload.Points
	}

	difficulty := payload.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	teacherName := teacher.FullName
	if teacherName == "" {
		teacherName = teacher.Username
	}

	assignment := models.Assignment{
		TeacherID:       teacher.ID,
		StudentID:       student.ID,
		ClassID:         student.ClassID,
		TaskName:        payload.TaskName,
		TaskDescription: strings.TrimSpace(payload.TaskDescription),
		TeacherName:     teacherName,
		StudentName:     student.FullName,
		ClassName:       student.ClassName,
		AssignedDate:    s.now(),
		Status:          models.AssignmentStatusAssigned,
		Points:          points,
		Tags:            utils.JoinTags(strings.Split(payload.Tags, ",")),
		Difficulty:      difficulty,
	}

	if payload.DueDate != "" {
		due, err := time.Parse(utils.DueDateLayout, payload.DueDate)
		if err != nil {
			return models.Assignment{}, fmt.Errorf("invalid due date: %w", err)
		}
		date := datatypes.Date(models.Day(due))
		assignment.DueDate = &date
	}

	if file != nil && len(file.Data) > 0 {
		assignment.TaskFile = file.Data
		assignment.TaskFileType = file.ContentType
		assignment.TaskFileName = file.Name
		assignment.TaskFileSize = file.Size()
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return models.Assignment{}, err
	}

	observeUpload("task", file)
	observability.AssignmentTransitions().WithLabelValues(models.AssignmentStatusAssigned).Inc()
	s.publish(ctx, events.AssignmentCreated, assignment)
	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("student_id", assignment.StudentID).Msg("assignment created")

	return assignment, nil
}

func (s *assignmentService) Get(ctx context.Context, access Access, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.load(ctx, access, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	return dto.NewAssignmentResponse(assignment, s.today()), nil
}

func (s *assignmentService) ListByTeacher(ctx context.Context, teacherID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return s.present(assignments), nil
}

func (s *assignmentService) ListByStudent(ctx context.Context, studentID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.present(assignments), nil
}

// present derives display fields and orders rows by status priority. The
// repository already orders by due date then assigned date, so a stable sort
// keeps those as the secondary keys.
func (s *assignmentService) present(assignments []models.Assignment) []dto.AssignmentResponse {
	responses := dto.NewAssignmentResponseSlice(assignments, s.today())
	sort.SliceStable(responses, func(i, j int) bool {
		return models.StatusPriority(responses[i].DisplayStatus) < models.StatusPriority(responses[j].DisplayStatus)
	})
	return responses
}

func (s *assignmentService) SubmitAnswer(ctx context.Context, studentID, id uint, payload dto.AnswerRequest, file *dto.FileUpload) (dto.AssignmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.submit")
	defer span.End()
	span.SetAttributes(attribute.Int("assignment.id", int(id)), attribute.Int("assignment.student_id", int(studentID)))

	if err := s.validator.Struct(payload); err != nil {
		recordSpanError(span, err, "validation failed")
		return dto.AssignmentResponse{}, err
	}
	if err := checkUpload(file, s.maxUpload); err != nil {
		recordSpanError(span, err, "file too large")
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.load(ctx, Access{StudentID: studentID}, id)
	if err != nil {
		recordSpanError(span, err, "lookup failed")
		return dto.AssignmentResponse{}, err
	}
	if assignment.Status == models.AssignmentStatusReviewed {
		recordSpanError(span, ErrAssignmentReviewed, "already reviewed")
		return dto.AssignmentResponse{}, ErrAssignmentReviewed
	}

	submittedAt := s.now()
	updates := map[string]interface{}{
		"student_answer_text":    strings.TrimSpace(payload.AnswerText),
		"status":                 models.AssignmentStatusSubmitted,
		"student_submitted_date": submittedAt,
	}
	if file != nil && len(file.Data) > 0 {
		updates["student_answer_file"] = file.Data
		updates["student_answer_file_type"] = file.ContentType
		updates["student_answer_file_name"] = file.Name
		updates["student_answer_file_size"] = file.Size()
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		recordSpanError(span, err, "update failed")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	observeUpload("answer", file)
	observability.AssignmentTransitions().WithLabelValues(models.AssignmentStatusSubmitted).Inc()

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		recordSpanError(span, err, "reload failed")
		return dto.AssignmentResponse{}, err
	}

	s.publish(ctx, events.AssignmentSubmitted, updated)
	s.logger.Info().Uint("assignment_id", id).Uint("student_id", studentID).Msg("answer submitted")
	span.SetStatus(codes.Ok, "submitted")

	return dto.NewAssignmentResponse(updated, s.today()), nil
}

// Review records the teacher's verdict. The score is stored as given; the
// review date is only stamped when a Reviewed status comes with a score.
func (s *assignmentService) Review(ctx context.Context, teacherID, id uint, payload dto.ReviewRequest) (dto.AssignmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.review")
	defer span.End()
	span.SetAttributes(attribute.Int("assignment.id", int(id)), attribute.String("assignment.status", payload.Status))

	if err := s.validator.Struct(payload); err != nil {
		recordSpanError(span, err, "validation failed")
		return dto.AssignmentResponse{}, err
	}

	if _, err := s.load(ctx, Access{TeacherID: teacherID}, id); err != nil {
		recordSpanError(span, err, "lookup failed")
		return dto.AssignmentResponse{}, err
	}

	updates := map[string]interface{}{
		"status":           payload.Status,
		"teacher_feedback": strings.TrimSpace(payload.Feedback),
	}
	if payload.Status == models.AssignmentStatusReviewed && payload.Score != nil {
		updates["score"] = *payload.Score
		updates["checked_date"] = s.now()
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		recordSpanError(span, err, "update failed")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	observability.AssignmentTransitions().WithLabelValues(payload.Status).Inc()

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		recordSpanError(span, err, "reload failed")
		return dto.AssignmentResponse{}, err
	}

	if payload.Status == models.AssignmentStatusReviewed {
		s.publish(ctx, events.AssignmentReviewed, updated)
	}
	s.logger.Info().Uint("assignment_id", id).Str("status", payload.Status).Msg("assignment reviewed")
	span.SetStatus(codes.Ok, "reviewed")

	return dto.NewAssignmentResponse(updated, s.today()), nil
}

func (s *assignmentService) Delete(ctx context.Context, teacherID, id uint) error {
	ctx, span := s.tracer.Start(ctx, "assignment.delete")
	defer span.End()
	span.SetAttributes(attribute.Int("assignment.id", int(id)))

	assignment, err := s.load(ctx, Access{TeacherID: teacherID}, id)
	if err != nil {
		recordSpanError(span, err, "lookup failed")
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		recordSpanError(span, err, "delete failed")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.publish(ctx, events.AssignmentDeleted, assignment)
	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	span.SetStatus(codes.Ok, "deleted")
	return nil
}

func (s *assignmentService) Statistics(ctx context.Context, teacherID uint) (dto.AssignmentStatistics, error) {
	counts, err := s.repo.Statistics(ctx, teacherID, s.today())
	if err != nil {
		return dto.AssignmentStatistics{}, err
	}
	return dto.AssignmentStatistics{
		Total:     counts.Total,
		Assigned:  counts.Assigned,
		Submitted: counts.Submitted,
		Reviewed:  counts.Reviewed,
		Overdue:   counts.Overdue,
	}, nil
}

func (s *assignmentService) File(ctx context.Context, access Access, id uint, kind string) (dto.FileDownload, error) {
	assignment, err := s.repo.GetWithFiles(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FileDownload{}, ErrAssignmentNotFound
		}
		return dto.FileDownload{}, err
	}
	if !access.allows(assignment) {
		return dto.FileDownload{}, ErrAssignmentNotFound
	}

	var (
		data        []byte
		contentType string
		name        string
		prefix      string
	)
	switch kind {
	case FileKindTask:
		data, contentType, name, prefix = assignment.TaskFile, assignment.TaskFileType, assignment.TaskFileName, "Task"
	case FileKindAnswer:
		data, contentType, name, prefix = assignment.StudentAnswerFile, assignment.StudentAnswerFileType, assignment.StudentAnswerFileName, "Answer"
	default:
		return dto.FileDownload{}, ErrFileNotFound
	}

	if len(data) == 0 {
		return dto.FileDownload{}, ErrFileNotFound
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("%s_%s.%s", prefix, utils.SafeFileName(assignment.TaskName), utils.FileExtension(contentType))
	}

	return dto.FileDownload{Name: name, ContentType: contentType, Data: data}, nil
}

func (s *assignmentService) load(ctx context.Context, access Access, id uint) (models.Assignment, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	if !access.allows(assignment) {
		return models.Assignment{}, ErrAssignmentNotFound
	}
	return assignment, nil
}

// publish is best effort; a broker outage never fails the lifecycle call.
func (s *assignmentService) publish(ctx context.Context, eventType string, assignment models.Assignment) {
	event := events.AssignmentEvent{
		Type:         eventType,
		AssignmentID: assignment.ID,
		TeacherID:    assignment.TeacherID,
		StudentID:    assignment.StudentID,
		ClassID:      assignment.ClassID,
		Status:       assignment.Status,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("type", eventType).Uint("assignment_id", assignment.ID).Msg("failed to publish assignment event")
	}
}

func recordSpanError(span trace.Span, err error, description string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, description)
}
