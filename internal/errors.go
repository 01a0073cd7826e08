package internal

import (
	"errors"

	"github.com/NYCU-SDC/summer/pkg/problem"
)

var (
	// Generic Errors
	ErrPermissionDenied    = errors.New("permission denied")
	ErrUnauthorizedError   = errors.New("unauthorized error")
	ErrInternalServerError = errors.New("internal server error")
	ErrNotFound            = errors.New("not found")
	ErrInvalidRequestBody  = errors.New("invalid request body")

	// Session Errors
	ErrNoUserInContext = errors.New("no user found in request context")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// User Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDatabaseError      = errors.New("database error")

	// Form Errors
	ErrFormNotFound        = errors.New("form not found")
	ErrNotFormOwner        = errors.New("not the owner of this form")
	ErrDuplicateQuestionID = errors.New("duplicate question id within form")
	ErrInvalidQuestionType = errors.New("invalid question type")

	// Response Errors
	ErrResponseNotFound = errors.New("response not found")
	ErrEmptySubmission  = errors.New("submission contains no answers")

	// Upload Errors
	ErrFileTooLarge     = errors.New("file exceeds maximum size")
	ErrInvalidFileType  = errors.New("file type is not allowed")
	ErrInvalidMultipart = errors.New("failed to parse multipart form")
	ErrNoFileUploaded   = errors.New("no file uploaded")
	ErrStorageFailure   = errors.New("media storage request failed")
)

func NewProblemWriter() *problem.HttpWriter {
	return problem.NewWithMapping(ErrorHandler)
}

func ErrorHandler(err error) problem.Problem {
	switch {
	// Generic Errors
	case errors.Is(err, ErrPermissionDenied):
		return problem.NewForbiddenProblem("permission denied")
	case errors.Is(err, ErrUnauthorizedError):
		return problem.NewUnauthorizedProblem("unauthorized error")
	case errors.Is(err, ErrInternalServerError):
		return problem.NewInternalServerProblem("internal server error")
	case errors.Is(err, ErrNotFound):
		return problem.NewNotFoundProblem("not found")
	case errors.Is(err, ErrInvalidRequestBody):
		return problem.NewBadRequestProblem("invalid request body")

	// Session Errors
	case errors.Is(err, ErrNoUserInContext):
		return problem.NewUnauthorizedProblem("you must be logged in")
	case errors.Is(err, ErrSessionNotFound):
		return problem.NewUnauthorizedProblem("you must be logged in")
	case errors.Is(err, ErrSessionExpired):
		return problem.NewUnauthorizedProblem("session expired")

	// User Errors
	case errors.Is(err, ErrUserNotFound):
		return problem.NewNotFoundProblem("user not found")
	case errors.Is(err, ErrAccountExists):
		return problem.NewValidateProblem("account already exists")
	case errors.Is(err, ErrInvalidCredentials):
		return problem.NewBadRequestProblem("invalid credentials")
	case errors.Is(err, ErrDatabaseError):
		return problem.NewInternalServerProblem("database error")

	// Form Errors
	case errors.Is(err, ErrFormNotFound):
		return problem.NewNotFoundProblem("form not found")
	case errors.Is(err, ErrNotFormOwner):
		return problem.NewForbiddenProblem("not authorized to modify this form")
	case errors.Is(err, ErrDuplicateQuestionID):
		return problem.NewValidateProblem("question ids must be unique within a form")
	case errors.Is(err, ErrInvalidQuestionType):
		return problem.NewValidateProblem("invalid question type")

	// Response Errors
	case errors.Is(err, ErrResponseNotFound):
		return problem.NewNotFoundProblem("response not found")
	case errors.Is(err, ErrEmptySubmission):
		return problem.NewValidateProblem("invalid form submission")

	// Upload Errors
	case errors.Is(err, ErrFileTooLarge):
		return problem.NewValidateProblem("file exceeds maximum size")
	case errors.Is(err, ErrInvalidFileType):
		return problem.NewValidateProblem("file type is not allowed")
	case errors.Is(err, ErrInvalidMultipart):
		return problem.NewBadRequestProblem("failed to parse multipart form")
	case errors.Is(err, ErrNoFileUploaded):
		return problem.NewBadRequestProblem("no file uploaded")
	case errors.Is(err, ErrStorageFailure):
		return problem.NewInternalServerProblem("media storage request failed")
	}
	return problem.Problem{}
}
