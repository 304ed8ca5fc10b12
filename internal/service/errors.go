package service

import "errors"

var (
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrAssignmentReviewed blocks answer submission once a teacher has reviewed the work.
	ErrAssignmentReviewed = errors.New("assignment has already been reviewed")
	// ErrClassNotFound indicates the class does not exist or belongs to someone else.
	ErrClassNotFound = errors.New("class not found")
	// ErrStudentNotFound indicates the student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrDuplicateStudentCode indicates the student code is already in use.
	ErrDuplicateStudentCode = errors.New("student code already exists")
	// ErrUsernameTaken indicates the login name is already in use.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrStudentHasLogin indicates the student already owns a login.
	ErrStudentHasLogin = errors.New("student already has a login")
	// ErrLoginNotFound indicates the student login does not exist.
	ErrLoginNotFound = errors.New("student login not found")
	// ErrInvalidCredentials is returned for any failed sign-in.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrFileNotFound indicates there is no stored file for the request.
	ErrFileNotFound = errors.New("file not found")
	// ErrFileTooLarge indicates an upload exceeded the configured limit.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrBZBTaskNotFound indicates the BZB task does not exist.
	ErrBZBTaskNotFound = errors.New("bzb task not found")
	// ErrMaterialNotFound indicates the visual material does not exist.
	ErrMaterialNotFound = errors.New("visual material not found")
	// ErrForbidden indicates the caller does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrSessionInvalid indicates a missing, expired or revoked session.
	ErrSessionInvalid = errors.New("session is invalid or expired")
)
