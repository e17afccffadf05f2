package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotAssigned      = errors.New("instructor is not assigned to this course offering")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Offering errors
var (
	ErrOfferingNotFound      = errors.New("course offering not found")
	ErrOfferingAlreadyClosed = errors.New("course offering is already closed")
	ErrOfferingNotClosed     = errors.New("course offering is not closed")
)

// Evaluation scheme errors
var (
	ErrComponentNotFound = errors.New("evaluation component not found")
	ErrOverAllocation    = errors.New("active component percentages would exceed 100")
	ErrInvalidRange      = errors.New("value is out of the allowed range")
)

// Grade ledger errors
var (
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrDuplicateGradeEntry = errors.New("a grade entry already exists for this enrollment and component")
)

// Prerequisite errors
var (
	ErrCourseNotFound        = errors.New("course not found")
	ErrSelfPrerequisite      = errors.New("a course cannot be its own prerequisite")
	ErrPrerequisiteOrdering  = errors.New("prerequisite must belong to an earlier curriculum level")
	ErrDuplicatePrerequisite = errors.New("prerequisite edge already exists")
)

// User errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrStudentNotFound = errors.New("student not found")
)

// Infrastructure errors
var (
	// ErrTransactionFailed marks a transaction that could not commit. The
	// operation left no partial state behind and is safe to retry.
	ErrTransactionFailed = errors.New("transaction failed")
)

// Is returns whether target matches err or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError wraps a sentinel with a caller-facing message and structured
// details. errors.Is still matches the sentinel through Unwrap, so the
// middleware's status mapping is unaffected by the extra context.
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
