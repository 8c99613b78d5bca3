package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pavelkhrustalyov/energy-app-local/pkg/validation"
)

var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("user not found")

	ErrNotAdmin      = fmt.Errorf("%w: admin rights required", ErrForbidden)
	ErrSelfDelete    = fmt.Errorf("%w: cannot delete own account", ErrForbidden)
	ErrEditForbidden = fmt.Errorf("%w: not allowed to edit this profile", ErrForbidden)

	ErrInvalidFileType    = errors.New("only image uploads are allowed")
	ErrMissingFile        = errors.New("no file to upload")
	ErrFileTooLarge       = errors.New("file too large")
	ErrTranscodeFailure   = errors.New("image processing failed")
	ErrPersistenceFailure = errors.New("failed to store file")
)

// ValidationError lists every rejected field of an input.
type ValidationError struct {
	Violations []validation.Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+" "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func validate(in any) error {
	if err := validation.Struct(in); err != nil {
		return &ValidationError{Violations: validation.ToViolations(err)}
	}
	return nil
}
