package errors

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials is returned for an unknown email and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountInactive is returned when the user account is not active.
	ErrAccountInactive = errors.New("account is not active")
	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid, revoked or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrUnauthorized is returned when a request carries no usable session.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden is returned on role or ownership mismatch.
	ErrForbidden = errors.New("you do not have access to this resource")

	ErrInvalidID    = errors.New("invalid id")
	ErrInvalidInput = errors.New("invalid input")

	ErrUserNotFound           = errors.New("user not found")
	ErrCandidateNotFound      = errors.New("candidate not found")
	ErrRecruiterNotFound      = errors.New("recruiter not found")
	ErrPlanNotFound           = errors.New("plan not found")
	ErrJobApplicationNotFound = errors.New("job application not found")
	ErrResumeNotFound         = errors.New("resume not found")

	// ErrRecruiterInactive is returned when assigning to a deactivated recruiter.
	ErrRecruiterInactive = errors.New("recruiter is not active")
	// ErrRecruiterAtCapacity is returned when a recruiter already holds maxCandidates candidates.
	ErrRecruiterAtCapacity = errors.New("recruiter has reached maximum candidates")
	// ErrAlreadyAssigned is returned when the candidate is already assigned to the recruiter.
	ErrAlreadyAssigned = errors.New("candidate is already assigned to this recruiter")
	// ErrNotAssigned is returned when unassigning a candidate without a recruiter.
	ErrNotAssigned = errors.New("candidate is not assigned to a recruiter")

	ErrPlanIDTaken   = errors.New("plan id already exists")
	ErrPlanInactive  = errors.New("plan is not active")
	ErrInvalidStatus = errors.New("invalid status")

	// ErrJobDescriptionRequired is returned when generation is requested without a job description.
	ErrJobDescriptionRequired = errors.New("job description is required")
	// ErrEmptyGeneration is returned when the model answered with no text.
	ErrEmptyGeneration = errors.New("failed to generate resume content")
	// ErrGenerationFailed is returned when the model could not be reached or refused the prompt.
	ErrGenerationFailed = errors.New("resume generation service unavailable")
	// ErrRateLimited is returned when a recruiter exceeds the generation rate.
	ErrRateLimited = errors.New("too many resume generation requests, try again later")

	ErrEmptyResumeText = errors.New("resume text is required")

	ErrInvalidFileType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Message: e.Message,
		Code:    e.Code,
	}
}

type mapping struct {
	err    error
	status int
	code   string
}

var mappings = []mapping{
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrAccountInactive, http.StatusUnauthorized, "ACCOUNT_INACTIVE"},
	{ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
	{ErrInvalidID, http.StatusBadRequest, "INVALID_ID"},
	{ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrCandidateNotFound, http.StatusNotFound, "CANDIDATE_NOT_FOUND"},
	{ErrRecruiterNotFound, http.StatusNotFound, "RECRUITER_NOT_FOUND"},
	{ErrPlanNotFound, http.StatusNotFound, "PLAN_NOT_FOUND"},
	{ErrJobApplicationNotFound, http.StatusNotFound, "JOB_APPLICATION_NOT_FOUND"},
	{ErrResumeNotFound, http.StatusNotFound, "RESUME_NOT_FOUND"},
	{ErrRecruiterInactive, http.StatusConflict, "RECRUITER_INACTIVE"},
	{ErrRecruiterAtCapacity, http.StatusConflict, "RECRUITER_AT_CAPACITY"},
	{ErrAlreadyAssigned, http.StatusConflict, "ALREADY_ASSIGNED"},
	{ErrNotAssigned, http.StatusConflict, "NOT_ASSIGNED"},
	{ErrPlanIDTaken, http.StatusConflict, "PLAN_ID_TAKEN"},
	{ErrPlanInactive, http.StatusBadRequest, "PLAN_INACTIVE"},
	{ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{ErrJobDescriptionRequired, http.StatusBadRequest, "JOB_DESCRIPTION_REQUIRED"},
	{ErrEmptyResumeText, http.StatusBadRequest, "RESUME_TEXT_REQUIRED"},
	{ErrEmptyGeneration, http.StatusInternalServerError, "EMPTY_GENERATION"},
	{ErrGenerationFailed, http.StatusBadGateway, "GENERATION_FAILED"},
	{ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
	{ErrInvalidFileType, http.StatusBadRequest, "INVALID_FILE_TYPE"},
	{ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	{gorm.ErrRecordNotFound, http.StatusNotFound, "NOT_FOUND"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are matched with errors.Is.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// Validation builds a 400 error with a custom message.
func Validation(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, "VALIDATION_ERROR")
}
