package dto

import (
	"time"

	"github.com/noah-isme/qazaq-teachers/internal/models"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// AssignmentCreateRequest describes a task for a single student.
type AssignmentCreateRequest struct {
	StudentID       uint   `json:"student_id" form:"student_id" validate:"required"`
	TaskName        string `json:"task_name" form:"task_name" validate:"required,max=255"`
	TaskDescription string `json:"task_description" form:"task_description" validate:"omitempty,max=10000"`
	DueDate         string `json:"due_date" form:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Points          *int   `json:"points" form:"points" validate:"omitempty,min=0,max=100"`
	Difficulty      string `json:"difficulty" form:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	Tags            string `json:"tags" form:"tags" validate:"omitempty,max=1000"`
}

// AssignmentBatchRequest sends the same task to several students.
type AssignmentBatchRequest struct {
	StudentIDs      []uint `json:"student_ids" form:"student_ids" validate:"required,min=1,dive,required"`
	TaskName        string `json:"task_name" form:"task_name" validate:"required,max=255"`
	TaskDescription string `json:"task_description" form:"task_description" validate:"omitempty,max=10000"`
	DueDate         string `json:"due_date" form:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Points          *int   `json:"points" form:"points" validate:"omitempty,min=0,max=100"`
	Difficulty      string `json:"difficulty" form:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	Tags            string `json:"tags" form:"tags" validate:"omitempty,max=1000"`
}

// ForStudent expands the batch into the request for one student.
func (r AssignmentBatchRequest) ForStudent(studentID uint) AssignmentCreateRequest {
	return AssignmentCreateRequest{
		StudentID:       studentID,
		TaskName:        r.TaskName,
		TaskDescription: r.TaskDescription,
		DueDate:         r.DueDate,
		Points:          r.Points,
		Difficulty:      r.Difficulty,
		Tags:            r.Tags,
	}
}

// BatchResult reports the outcome of one insert in a batch.
type BatchResult struct {
	StudentID    uint   `json:"student_id"`
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AssignmentID *uint  `json:"assignment_id,omitempty"`
}

// AnswerRequest is a student's submission.
type AnswerRequest struct {
	AnswerText string `json:"answer_text" form:"answer_text" validate:"omitempty,max=20000"`
}

// ReviewRequest is the teacher's verdict on a submission.
type ReviewRequest struct {
	Status   string `json:"status" form:"status" validate:"required,oneof=Assigned Submitted Reviewed"`
	Feedback string `json:"feedback" form:"feedback" validate:"omitempty,max=10000"`
	Score    *int   `json:"score" form:"score"`
}

// AssignmentStatistics aggregates a teacher's assignments.
type AssignmentStatistics struct {
	Total     int64 `json:"total"`
	Assigned  int64 `json:"assigned"`
	Submitted int64 `json:"submitted"`
	Reviewed  int64 `json:"reviewed"`
	Overdue   int64 `json:"overdue"`
}

// AssignmentResponse is an assignment row plus its read-time display fields.
type AssignmentResponse struct {
	ID              uint   `json:"id"`
	TeacherID       uint   `json:"teacher_id"`
	StudentID       uint   `json:"student_id"`
	ClassID         uint   `json:"class_id"`
	TeacherName     string `json:"teacher_name"`
	StudentName     string `json:"student_name"`
	ClassName       string `json:"class_name"`
	TaskName        string `json:"task_name"`
	TaskDescription string `json:"task_description"`

	HasTaskFile      bool   `json:"has_task_file"`
	TaskFileName     string `json:"task_file_name"`
	TaskFileType     string `json:"task_file_type"`
	TaskFileSize     int64  `json:"task_file_size"`
	TaskFileSizeText string `json:"task_file_size_text"`

	Status        string     `json:"status"`
	DisplayStatus string     `json:"display_status"`
	IsOverdue     bool       `json:"is_overdue"`
	DaysLeft      int        `json:"days_left"`
	DaysOverdue   int        `json:"days_overdue"`
	AssignedDate  time.Time  `json:"assigned_date"`
	DueDate       *time.Time `json:"due_date"`

	AssignedDateText  string `json:"assigned_date_text"`
	DueDateText       string `json:"due_date_text"`
	SubmittedDateText string `json:"submitted_date_text"`
	CheckedDateText   string `json:"checked_date_text"`

	StudentAnswerText     string     `json:"student_answer_text"`
	HasAnswerFile         bool       `json:"has_answer_file"`
	StudentAnswerFileName string     `json:"student_answer_file_name"`
	StudentAnswerFileType string     `json:"student_answer_file_type"`
	StudentAnswerFileSize int64      `json:"student_answer_file_size"`
	AnswerFileSizeText    string     `json:"answer_file_size_text"`
	StudentSubmittedDate  *time.Time `json:"student_submitted_date"`

	Points          int        `json:"points"`
	Score           *int       `json:"score"`
	TeacherFeedback string     `json:"teacher_feedback"`
	CheckedDate     *time.Time `json:"checked_date"`

	Tags       []string `json:"tags"`
	Difficulty string   `json:"difficulty"`
}

// NewAssignmentResponse converts a model into a DTO, deriving display fields
// relative to today.
func NewAssignmentResponse(model models.Assignment, today time.Time) AssignmentResponse {
	displayStatus := model.DisplayStatus(today)

	response := AssignmentResponse{
		ID:                    model.ID,
		TeacherID:             model.TeacherID,
		StudentID:             model.StudentID,
		ClassID:               model.ClassID,
		TeacherName:           model.TeacherName,
		StudentName:           model.StudentName,
		ClassName:             model.ClassName,
		TaskName:              model.TaskName,
		TaskDescription:       model.TaskDescription,
		HasTaskFile:           model.HasTaskFile(),
		TaskFileName:          model.TaskFileName,
		TaskFileType:          model.TaskFileType,
		TaskFileSize:          model.TaskFileSize,
		TaskFileSizeText:      utils.FormatFileSize(model.TaskFileSize),
		Status:                model.Status,
		DisplayStatus:         displayStatus,
		IsOverdue:             displayStatus == models.AssignmentStatusLate,
		AssignedDate:          model.AssignedDate,
		AssignedDateText:      utils.FormatDateTime(&model.AssignedDate),
		SubmittedDateText:     utils.FormatDateTime(model.StudentSubmittedDate),
		CheckedDateText:       utils.FormatDateTime(model.CheckedDate),
		StudentAnswerText:     model.StudentAnswerText,
		HasAnswerFile:         model.HasAnswerFile(),
		StudentAnswerFileName: model.StudentAnswerFileName,
		StudentAnswerFileType: model.StudentAnswerFileType,
		StudentAnswerFileSize: model.StudentAnswerFileSize,
		AnswerFileSizeText:    utils.FormatFileSize(model.StudentAnswerFileSize),
		StudentSubmittedDate:  model.StudentSubmittedDate,
		Points:                model.Points,
		Score:                 model.Score,
		TeacherFeedback:       model.TeacherFeedback,
		CheckedDate:           model.CheckedDate,
		Tags:                  utils.SplitTags(model.Tags),
		Difficulty:            model.Difficulty,
	}

	if model.HasDueDate() {
		due := model.DueDay()
		day := models.Day(today)
		response.DueDate = &due
		response.DueDateText = utils.FormatDate(due)

		days := int(due.Sub(day).Hours() / 24)
		if days >= 0 {
			response.DaysLeft = days
		} else {
			response.DaysOverdue = -days
		}
	}

	return response
}

// NewAssignmentResponseSlice converts models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment, today time.Time) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment, today))
	}
	return responses
}
