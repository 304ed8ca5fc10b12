package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/models"
	"github.com/noah-isme/qazaq-teachers/pkg/events"
)

func TestAssignmentLifecycle(t *testing.T) {
	f := newPortalFixture(t)
	teacher := f.teacher(t, "aruzhan", "Aruzhan Bekova")
	class := f.class(t, teacher.ID, "7A")
	student := f.student(t, class.ID, "Dana Serik", "S-001")

	publisher := &recordingPublisher{}
	svc := f.assignmentService(publisher)
	ctx := context.Background()

	created, err := svc.Create(ctx, teacher.ID, dto.AssignmentCreateRequest{
		StudentID:       student.ID,
		TaskName:        "  Fractions  ",
		TaskDescription: "Show that x < 5 & y > 3",
		DueDate:         "2025-03-15",
		Points:          intPtr(20),
		Tags:            "math, homework,",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "Fractions", created.TaskName)
	require.Equal(t, "Show that x < 5 & y > 3", created.TaskDescription)
	require.Equal(t, models.AssignmentStatusAssigned, created.Status)
	require.Equal(t, models.AssignmentStatusAssigned, created.DisplayStatus)
	require.Equal(t, 5, created.DaysLeft)
	require.Equal(t, "15.03.2025", created.DueDateText)
	require.Equal(t, 20, created.Points)
	require.Equal(t, models.DifficultyMedium, created.Difficulty)
	require.Equal(t, []string{"math", "homework"}, created.Tags)
	require.Equal(t, "Aruzhan Bekova", created.TeacherName)
	require.Equal(t, "Dana Serik", created.StudentName)
	require.Equal(t, "7A", created.ClassName)

	submitted, err := svc.SubmitAnswer(ctx, student.ID, created.ID, dto.AnswerRequest{AnswerText: " a < b & b > c, so a < c "}, &dto.FileUpload{
		Name:        "work.txt",
		ContentType: "text/plain",
		Data:        []byte("worked solution"),
	})
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusSubmitted, submitted.Status)
	require.True(t, submitted.HasAnswerFile)
	require.Equal(t, "a < b & b > c, so a < c", submitted.StudentAnswerText)
	require.NotNil(t, submitted.StudentSubmittedDate)

	reviewed, err := svc.Review(ctx, teacher.ID, created.ID, dto.ReviewRequest{
		Status:   models.AssignmentStatusReviewed,
		Feedback: "Well done & note 1/2 < 3/4",
		Score:    intPtr(18),
	})
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusReviewed, reviewed.Status)
	require.NotNil(t, reviewed.Score)
	require.Equal(t, 18, *reviewed.Score)
	require.Equal(t, "Well done & note 1/2 < 3/4", reviewed.TeacherFeedback)

	stored, err := svc.Get(ctx, Access{StudentID: student.ID}, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Show that x < 5 & y > 3", stored.TaskDescription)
	require.Equal(t, "a < b & b > c, so a < c", stored.StudentAnswerText)
	require.NotNil(t, reviewed.CheckedDate)

	_, err = svc.SubmitAnswer(ctx, student.ID, created.ID, dto.AnswerRequest{AnswerText: "again"}, nil)
	require.ErrorIs(t, err, ErrAssignmentReviewed)

	require.Equal(t, []string{events.AssignmentCreated, events.AssignmentSubmitted, events.AssignmentReviewed}, publisher.types())
}

func TestAssignmentCreateDefaultsAndValidation(t *testing.T) {
	f := newPortalFixture(t)
	teacher := f.teacher(t, "marat", "")
	class := f.class(t, teacher.ID, "8B")
	student := f.student(t, class.ID, "Ali", "S-002")
	svc := f.assignmentService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, teacher.ID, dto.AssignmentCreateRequest{StudentID: student.ID, TaskName: "Reading"}, nil)
	require.NoError(t, err)
	require.Equal(t, models.DefaultAssignmentPoints, created.Points)
	require.Equal(t, "marat", created.TeacherName)
	require.Nil(t, created.DueDate)
	require.Empty(t, created.Tags)

	_, err = svc.Create(ctx, teacher.ID, dto.AssignmentCreateRequest{StudentID: student.ID, TaskName: "   "}, nil)
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))

	_, err = svc.Create(ctx, teacher.ID, dto.AssignmentCreateRequest{StudentID: student.ID, TaskName: "Bad", DueDate: "15.03.2025"}, nil)
	require.True(t, errors.As(err, &validationErrs))

	_, err = svc.Create(ctx, teacher.ID, dto.AssignmentCreateRequest{StudentID: student.ID, TaskName: "Big"}, &dto.FileUpload{
		Name: "big.bin",
		Data: make([]byte, 2048),
	})
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestAssignmentCreateRejectsForeignStudent(t *testing.T) {
	f := newPortalFixture(t)
	owner := f.teacher(t, "owner", "Owner")
	other := f.teacher(t, "other", "Other")
	class := f.class(t, owner.ID, "9C")
	student := f.student(t, class.ID, "Erlan", "S-003")
	svc := f.assignmentService(nil)

	_, err := svc.Create(context.Background(), other.ID, dto.AssignmentCreateRequest{StudentID: student.ID, TaskName: "Essay"}, nil)
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestAssignmentLateDisplayAndOrdering(t *testing.T) {
	f := newPortalFixture(t)
	teacher := f.teacher(t, "gulnara", "Gulnara")
	class := f.class(t, teacher.ID, "10A")
	student := f.student(t, class.ID, "Timur", "S-004")
	svc := f.assignmentService(nil)
	ctx := context.Background()

	onTime, err := svc.Create(ctx, teacher.ID, dto.AssignmentCreateRequest{StudentID: student.ID, TaskName: "Upcoming", DueDate: "2025-03-20"}, nil)
	require.NoError(t, err)
	late, err := svc.Create(ctx, teacher.ID, dto.AssignmentCreateRequest{StudentID: student.ID, TaskName: "Overdue", DueDate: "2025-03-01"}, nil)
	require.NoError(t, err)
	done, err := svc.Create(ctx, teacher.ID, dto.AssignmentCreateRequest{StudentID: student.ID, TaskName: "Handed in", DueDate: "2025-03-02"}, nil)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, student.ID, done.ID, dto.AnswerRequest{AnswerText: "done"}, nil)
	require.NoError(t, err)

	require.Equal(t, models.AssignmentStatusLate, late.DisplayStatus)
	require.True(t, late.IsOverdue)
	require.Equal(t, 9, late.DaysOverdue)
	require.Equal(t, models.AssignmentStatusAssigned, late.Status)

	list, err := svc.ListByStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, late.ID, list[0].ID)
	require.Equal(t, onTime.ID, list[1].ID)
	require.Equal(t, done.ID, list[2].ID)
	require.Equal(t, models.AssignmentStatusSubmitted, list[2].DisplayStatus)

	teacherList, err := svc.ListByTeacher(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, teacherList, 3)
	require.Equal(t, late.ID, teacherList[0].ID)

	stats, err := svc.Statistics(ctx, teacher.ID)
	require.NoError(t, err)
	require.Equal(t, dto.AssignmentStatistics{Total: 3, Assigned: 2, Submitted: 1, Reviewed: 0, Overdue: 1}, stats)
}

func TestAssignmentBatchReportsPerStudent(t *testing.T) {
	f := newPortalFixture(t)
	teacher := f.teacher(t, "saule", "Saule")
	other := f.teacher(t, "someone", "Someone")
	class := f.class(t, teacher.ID, "11A")
	foreignClass := f.class(t, other.ID, "11B")
	first := f.student(t, class.ID, "Aida", "S-010")
	second := f.student(t, class.ID, "Bolat", "S-011")
	foreign := f.student(t, foreignClass.ID, "Zarina", "S-012")

	publisher := &recordingPublisher{}
	svc := f.assignmentService(publisher)

	results, err := svc.CreateBatch(context.Background(), teacher.ID, dto.AssignmentBatchRequest{
		StudentIDs: []uint{first.ID, 9999, foreign.ID, second.ID},
		TaskName:   "Quiz",
		Points:     intPtr(5),
	}, &dto.FileUpload{Name: "quiz.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	require.Len(t, results, 4)

	require.True(t, results[0].Success)
	require.NotNil(t, results[0].AssignmentID)
	require.False(t, results[1].Success)
	require.Equal(t, ErrStudentNotFound.Error(), results[1].Message)
	require.False(t, results[2].Success)
	require.True(t, results[3].Success)

	var count int64
	require.NoError(t, f.db.Model(&models.Assignment{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
	require.Len(t, publisher.types(), 2)

	file, err := svc.File(context.Background(), Access{StudentID: second.ID}, *results[3].AssignmentID, FileKindTask)
	require.NoError(t, err)
	require.Equal(t, "quiz.pdf", file.Name)
	require.Equal(t, []byte("%PDF-1.4"), file.Data)
}

func TestAssignmentReviewWithoutScoreKeepsScoreEmpty(t *testing.T) {
	f := newPortalFixture(t)
	teacher := f.teacher(t, "nurlan", "Nurlan")
	class := f.class(t, teacher.ID, "6A")
	student := f.student(t, class.ID, "Asel", "S-020")
	svc := f.assignmentService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, teacher.ID, dto.AssignmentCreateRequest{StudentID: student.ID, TaskName: "Poem"}, nil)
	require.NoError(t, err)

	reviewed, err := svc.Review(ctx, teacher.ID, created.ID, dto.ReviewRequest{Status: models.AssignmentStatusReviewed, Feedback: "Seen"})
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusReviewed, reviewed.Status)
	require.Nil(t, reviewed.Score)
	require.Nil(t, reviewed.CheckedDate)

	reopened, err := svc.Review(ctx, teacher.ID, created.ID, dto.ReviewRequest{Status: models.AssignmentStatusAssigned, Score: intPtr(3)})
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusAssigned, reopened.Status)
	require.Nil(t, reopened.Score)

	_, err = svc.Review(ctx, teacher.ID, created.ID, dto.ReviewRequest{Status: "Late"})
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))
}

func TestAssignmentSubmitWithoutFileKeepsPreviousFile(t *testing.T) {
	f := newPortalFixture(t)
	teacher := f.teacher(t, "aigul", "Aigul")
	class := f.class(t, teacher.ID, "5A")
	student := f.student(t, class.ID, "Miras", "S-030")
	svc := f.assignmentService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, teacher.ID, dto.AssignmentCreateRequest{StudentID: student.ID, TaskName: "Drawing"}, nil)
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(ctx, student.ID, created.ID, dto.AnswerRequest{AnswerText: "first"}, &dto.FileUpload{
		Name:        "",
		ContentType: "image/png",
		Data:        []byte("png-bytes"),
	})
	require.NoError(t, err)

	second, err := svc.SubmitAnswer(ctx, student.ID, created.ID, dto.AnswerRequest{AnswerText: "second"}, nil)
	require.NoError(t, err)
	require.Equal(t, "second", second.StudentAnswerText)
	require.True(t, second.HasAnswerFile)

	file, err := svc.File(ctx, Access{TeacherID: teacher.ID}, created.ID, FileKindAnswer)
	require.NoError(t, err)
	require.Equal(t, "Answer_Drawing.png", file.Name)
	require.Equal(t, "image/png", file.ContentType)
	require.Equal(t, []byte("png-bytes"), file.Data)

	_, err = svc.File(ctx, Access{TeacherID: teacher.ID}, created.ID, FileKindTask)
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestAssignmentAccessIsScoped(t *testing.T) {
	f := newPortalFixture(t)
	teacher := f.teacher(t, "baurzhan", "Baurzhan")
	intruder := f.teacher(t, "intruder", "Intruder")
	class := f.class(t, teacher.ID, "4A")
	student := f.student(t, class.ID, "Sanzhar", "S-040")
	classmate := f.student(t, class.ID, "Kamila", "S-041")
	svc := f.assignmentService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, teacher.ID, dto.AssignmentCreateRequest{StudentID: student.ID, TaskName: "Map"}, nil)
	require.NoError(t, err)

	_, err = svc.Get(ctx, Access{StudentID: classmate.ID}, created.ID)
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	_, err = svc.SubmitAnswer(ctx, classmate.ID, created.ID, dto.AnswerRequest{AnswerText: "not mine"}, nil)
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	_, err = svc.Review(ctx, intruder.ID, created.ID, dto.ReviewRequest{Status: models.AssignmentStatusReviewed})
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	require.ErrorIs(t, svc.Delete(ctx, intruder.ID, created.ID), ErrAssignmentNotFound)

	got, err := svc.Get(ctx, Access{StudentID: student.ID}, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestAssignmentDeleteAndPublisherFailure(t *testing.T) {
	f := newPortalFixture(t)
	teacher := f.teacher(t, "zhanna", "Zhanna")
	class := f.class(t, teacher.ID, "3A")
	student := f.student(t, class.ID, "Arman", "S-050")

	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := f.assignmentService(publisher)
	ctx := context.Background()

	created, err := svc.Create(ctx, teacher.ID, dto.AssignmentCreateRequest{StudentID: student.ID, TaskName: "Song"}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, teacher.ID, created.ID))
	_, err = svc.Get(ctx, Access{TeacherID: teacher.ID}, created.ID)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
	require.ErrorIs(t, svc.Delete(ctx, teacher.ID, created.ID), ErrAssignmentNotFound)
}
