package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("operation not permitted")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")

	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrUnauthorized)

	// ErrApplicantMismatch is returned when an approval names someone other than the applicant.
	ErrApplicantMismatch = fmt.Errorf("%w: username does not match the applicant", ErrConflict)
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
