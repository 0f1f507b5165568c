package jobs

import (
	"context"
	"time"
)

// JobStore manages job postings.
type JobStore interface {
	Create(ctx context.Context, job *JobPosting) error
	Find(ctx context.Context, id string) (*JobPosting, error)
	List(ctx context.Context) ([]JobPosting, error)
	UpdateStatus(ctx context.Context, id string, status JobStatus, updatedAt time.Time) error
	// DeleteCascade removes the posting and every application
	// referencing it within a single transaction.
	DeleteCascade(ctx context.Context, id string) error
}

// ApplicationStore manages application records. Create must surface
// ErrDuplicate when the (job_id, seeker_id) uniqueness constraint is
// violated; the store constraint, not the service fast path, is the
// source of truth for the invariant.
type ApplicationStore interface {
	Create(ctx context.Context, app *Application) error
	Find(ctx context.Context, id string) (*Application, error)
	FindByJobAndSeeker(ctx context.Context, jobID, seekerID string) (*Application, error)
	ListBySeeker(ctx context.Context, seekerID string) ([]Application, error)
	ListByEmployer(ctx context.Context, employerID string) ([]Application, error)
	UpdateStatus(ctx context.Context, id string, status ApplicationStatus, updatedAt time.Time) (*Application, error)
}

// ResumeLookup resolves a seeker's current resume address. Returns the
// empty string when the seeker has no resume on file. Implemented by the
// seeker profile store.
type ResumeLookup interface {
	ResumeURL(ctx context.Context, seekerID string) (string, error)
}
