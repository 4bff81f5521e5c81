// Package errors contains helper functions and types to work with errors
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryNoError is used when an operation succeeded but a category is still reported.
	CategoryNoError Category = iota
	// CategoryValidation The input fails a business rule, for example a pledge
	// outside the campaign contribution bounds or a duplicate interest.
	CategoryValidation
	// CategoryUnauthorized The caller did not present a valid identity
	CategoryUnauthorized
	// CategoryForbidden The caller lacks the required ownership or identity
	// relationship for the operation
	CategoryForbidden
	// CategoryNotFound A referenced record id does not exist
	CategoryNotFound
	// CategoryInvalidState The operation is not legal from the record's current status
	CategoryInvalidState
	// CategoryConflict The write collides with existing data (unique constraint)
	CategoryConflict
	// CategoryConcurrencyConflict An aggregate write lost a race and should be retried
	CategoryConcurrencyConflict
	// CategoryDependencyFailure A collaborator (ledger, directory) is failing
	CategoryDependencyFailure
	// CategoryGeneralError The service failed in an unexpected way
	CategoryGeneralError
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "CategoryValidation"
	case CategoryUnauthorized:
		return "CategoryUnauthorized"
	case CategoryForbidden:
		return "CategoryForbidden"
	case CategoryNotFound:
		return "CategoryNotFound"
	case CategoryInvalidState:
		return "CategoryInvalidState"
	case CategoryConflict:
		return "CategoryConflict"
	case CategoryConcurrencyConflict:
		return "CategoryConcurrencyConflict"
	case CategoryDependencyFailure:
		return "CategoryDependencyFailure"
	default:
		return "CategoryGeneralError"
	}
}

// ServiceError represents service specific type that
// is used all over the services.
type ServiceError struct {
	Category Category
	Message  string
	Err      error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is implements the custom condition to check an error is equal to a service error
func (err ServiceError) Is(target error) bool {
	return err.Message == target.Error()
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category == cat {
		return true
	}
	return false
}

// IsRetryable reports whether the error is a lost aggregate race that the
// caller may retry before surfacing it.
func IsRetryable(err error) bool {
	return Is(err, CategoryConcurrencyConflict)
}

// GeneralError returns a general service error
// this error mesage sent to the user is "Internal Server Error"
// the error passed is logged in the logger
func GeneralError(err error) error {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{
		Category: CategoryGeneralError,
		Message:  "Internal Server Error",
		Err:      err,
	}
}

// NotFoundError returns an error with category NotFound
// the error message provided is returned to the user
// the err object provided is logged in logger
func NotFoundError(err error, message string) error {
	if err == nil {
		err = errors.New("not found: " + message)
	}
	return &ServiceError{
		Category: CategoryNotFound,
		Message:  message,
		Err:      err,
	}
}

// ValidationError returns an error with category Validation
// the error message provided is returned to the user
// the error object provided is logged in logger
func ValidationError(err error, message string) error {
	if err == nil {
		err = errors.New("validation: " + message)
	}
	return &ServiceError{
		Category: CategoryValidation,
		Message:  message,
		Err:      err,
	}
}

// InvalidStateError returns an error with category InvalidState
// the error message provided is returned to the user
// the error object provided is logged in logger
func InvalidStateError(err error, message string) error {
	if err == nil {
		err = errors.New("invalid state: " + message)
	}
	return &ServiceError{
		Category: CategoryInvalidState,
		Message:  message,
		Err:      err,
	}
}

// ForbiddenError returns an error with category CategoryForbidden
// the error message provided is returned to the user
// the error object provided is logged in logger
func ForbiddenError(err error, message string) error {
	if err == nil {
		err = errors.New("request forbidden")
	}
	return &ServiceError{
		Category: CategoryForbidden,
		Message:  message,
		Err:      err,
	}
}

// UnAuthorizedError returns an error with category CategoryUnauthorized
// the error message provided is returned to the user
// the error object provided is logged in logger
func UnAuthorizedError(err error, message string) error {
	if err == nil {
		err = errors.New("unauthorized")
	}
	return &ServiceError{
		Category: CategoryUnauthorized,
		Message:  message,
		Err:      err,
	}
}

// ConflictError returns an error with category CategoryConflict
// the error message provided is returned to the user
// the error object provided is logged in logger
func ConflictError(err error, message string) error {
	if err == nil {
		err = errors.New("conflict")
	}
	return &ServiceError{
		Category: CategoryConflict,
		Message:  message,
		Err:      err,
	}
}

// ConcurrencyConflictError returns an error with category ConcurrencyConflict
// the error message provided is returned to the user
// the error object provided is logged in logger
func ConcurrencyConflictError(err error, message string) error {
	if err == nil {
		err = errors.New("concurrency conflict")
	}
	return &ServiceError{
		Category: CategoryConcurrencyConflict,
		Message:  message,
		Err:      err,
	}
}

// DependencyError returns an error with category DependencyFailure
// the error message provided is returned to the user
// the error object provided is logged in logger
func DependencyError(err error, message string) error {
	if err == nil {
		err = errors.New("dependency failure: " + message)
	}
	return &ServiceError{
		Category: CategoryDependencyFailure,
		Message:  message,
		Err:      err,
	}
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryValidation:
		return http.StatusBadRequest
	case CategoryUnauthorized:
		return http.StatusUnauthorized
	case CategoryForbidden:
		return http.StatusForbidden
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryInvalidState, CategoryConflict, CategoryConcurrencyConflict:
		return http.StatusConflict
	case CategoryDependencyFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
