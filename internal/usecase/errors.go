package usecase

import (
	"errors"
	"fmt"

	"skill-catalog/internal/domain/catalog"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternal        = errors.New("internal error")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrSkillNotFound   = errors.New("skill not found")
	ErrImportConflict  = errors.New("concurrent import conflict")

	ErrFinalizationInProgress = catalog.ErrFinalizationInProgress
	ErrAlreadyRunning         = catalog.ErrAlreadyRunning
	ErrNothingPending         = catalog.ErrNothingPending
)

func internal(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
