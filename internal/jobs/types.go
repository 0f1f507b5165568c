package jobs

import (
	"strings"
	"time"
)

// JobStatus is the lifecycle state of a posting.
type JobStatus string

const (
	JobActive JobStatus = "active"
	JobClosed JobStatus = "closed"
)

// JobPosting is owned by exactly one employer. Ownership is immutable.
type JobPosting struct {
	ID          string    `json:"id"`
	EmployerID  string    `json:"employer_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Status      JobStatus `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApplicationStatus is the bounded lifecycle of an application.
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusViewed      ApplicationStatus = "viewed"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusRejected    ApplicationStatus = "rejected"
)

// ParseApplicationStatus normalizes and validates a status string.
func ParseApplicationStatus(raw string) (ApplicationStatus, error) {
	switch ApplicationStatus(strings.TrimSpace(strings.ToLower(raw))) {
	case StatusPending:
		return StatusPending, nil
	case StatusViewed:
		return StatusViewed, nil
	case StatusShortlisted:
		return StatusShortlisted, nil
	case StatusRejected:
		return StatusRejected, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Terminal reports whether no further transition is allowed out of the status.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusShortlisted || s == StatusRejected
}

// CanTransition reports whether the forward-only transition table allows
// moving from s to next. Reassigning the same status is not a transition.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusViewed || next == StatusShortlisted || next == StatusRejected
	case StatusViewed:
		return next == StatusShortlisted || next == StatusRejected
	default:
		return false
	}
}

// Application links one seeker to one job posting. At most one
// application exists per (job, seeker) pair; the resume address is a
// point-in-time snapshot taken at creation.
type Application struct {
	ID        string            `json:"id"`
	JobID     string            `json:"job_id"`
	SeekerID  string            `json:"seeker_id"`
	Status    ApplicationStatus `json:"status"`
	ResumeURL string            `json:"resume_url,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
