package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/models"
	"github.com/noah-isme/qazaq-teachers/internal/repository"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// GradeService builds the student grade card.
type GradeService interface {
	Grades(ctx context.Context, studentID uint) (dto.GradesResponse, error)
}

type gradeService struct {
	students    repository.StudentRepository
	assignments repository.AssignmentRepository
	logger      zerolog.Logger
}

// NewGradeService builds the grade service.
func NewGradeService(students repository.StudentRepository, assignments repository.AssignmentRepository, logger zerolog.Logger) GradeService {
	return &gradeService{
		students:    students,
		assignments: assignments,
		logger:      logger.With().Str("component", "grade_service").Logger(),
	}
}

func (s *gradeService) Grades(ctx context.Context, studentID uint) (dto.GradesResponse, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return dto.GradesResponse{}, translateStudentErr(err)
	}

	assignments, err := s.assignments.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.GradesResponse{}, err
	}

	performance := student.AcademicPerformance
	if performance == "" {
		performance = models.PerformanceAverage
	}

	response := dto.GradesResponse{
		StudentID:           student.ID,
		FullName:            student.FullName,
		GradePoints:         student.GradePoints,
		Grade:               utils.GradeForPoints(student.GradePoints),
		AcademicPerformance: performance,
		Reviewed:            []dto.AssignmentGrade{},
	}

	scored := 0
	total := 0
	for _, assignment := range assignments {
		if assignment.Status != models.AssignmentStatusReviewed {
			continue
		}
		response.Reviewed = append(response.Reviewed, dto.AssignmentGrade{
			AssignmentID:    assignment.ID,
			TaskName:        assignment.TaskName,
			Score:           assignment.Score,
			Points:          assignment.Points,
			TeacherFeedback: assignment.TeacherFeedback,
			CheckedDate:     utils.FormatDateTime(assignment.CheckedDate),
		})
		if assignment.Score != nil {
			scored++
			total += *assignment.Score
		}
	}

	response.ReviewedCount = len(response.Reviewed)
	if scored > 0 {
		response.AverageScore = float64(total) / float64(scored)
	}

	return response, nil
}
