package dto

import (
	"time"

	"github.com/noah-isme/qazaq-teachers/internal/models"
)

// TeacherRegisterRequest captures a new teacher account.
type TeacherRegisterRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=128"`
	Email    string `json:"email" form:"email" validate:"omitempty,email"`
	FullName string `json:"full_name" form:"full_name" validate:"required,max=255"`
	School   string `json:"school" form:"school" validate:"omitempty,max=255"`
	City     string `json:"city" form:"city" validate:"omitempty,max=255"`
}

// LoginRequest is shared by both portals.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ChangePasswordRequest lets a student rotate their own password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password" validate:"required"`
	NewPassword string `json:"new_password" form:"new_password" validate:"required,min=6,max=128"`
}

// TeacherProfile is the public view of a teacher account.
type TeacherProfile struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	School    string    `json:"school"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTeacherProfile converts a model into a profile.
func NewTeacherProfile(model models.Teacher) TeacherProfile {
	return TeacherProfile{
		ID:        model.ID,
		Username:  model.Username,
		Email:     model.Email,
		FullName:  model.FullName,
		School:    model.School,
		City:      model.City,
		CreatedAt: model.CreatedAt,
	}
}

// StudentProfile is the student portal view of the signed-in student.
type StudentProfile struct {
	ID                  uint   `json:"id"`
	LoginID             uint   `json:"login_id"`
	Username            string `json:"username"`
	FullName            string `json:"full_name"`
	StudentCode         string `json:"student_code"`
	ClassID             uint   `json:"class_id"`
	ClassName           string `json:"class_name"`
	Subject             string `json:"subject"`
	GradePoints         int    `json:"grade_points"`
	AcademicPerformance string `json:"academic_performance"`
}
