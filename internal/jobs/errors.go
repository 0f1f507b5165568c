package jobs

import "errors"

var (
	ErrNotFound          = errors.New("jobs: not found")
	ErrForbidden         = errors.New("jobs: forbidden")
	ErrDuplicate         = errors.New("jobs: application already exists")
	ErrJobClosed         = errors.New("jobs: job is closed")
	ErrInvalidStatus     = errors.New("jobs: invalid status")
	ErrInvalidTransition = errors.New("jobs: invalid status transition")
	ErrInvalidInput      = errors.New("jobs: invalid input")
)
