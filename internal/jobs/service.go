package jobs

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobdesk.org/internal/auth"
	"jobdesk.org/internal/ids"
)

// Service owns the application state machine and the ownership and role
// rules for who may read or mutate postings and applications. Every
// operation takes the verified identity explicitly; handlers never pass
// client-supplied subject identifiers.
type Service struct {
	jobs         JobStore
	applications ApplicationStore
	resumes      ResumeLookup
	now          func() time.Time
}

// NewService constructs the lifecycle engine. The resume lookup may be
// nil, in which case applications are created without a snapshot.
func NewService(jobs JobStore, applications ApplicationStore, resumes ResumeLookup) (*Service, error) {
	if jobs == nil || applications == nil {
		return nil, errors.New("jobs: job and application stores are required")
	}
	return &Service{jobs: jobs, applications: applications, resumes: resumes, now: time.Now}, nil
}

// WithClock overrides the time source. Test use only.
func (s *Service) WithClock(fn func() time.Time) *Service {
	if fn != nil {
		s.now = fn
	}
	return s
}

// CreateJobParams carries posting input.
type CreateJobParams struct {
	Title       string
	Description string
	Location    string
}

// CreateJob registers a posting owned by the calling employer.
func (s *Service) CreateJob(ctx context.Context, identity auth.Identity, params CreateJobParams) (*JobPosting, error) {
	if identity.Role != auth.RoleEmployer {
		return nil, ErrForbidden
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	now := s.now().UTC()
	job := JobPosting{
		ID:          ids.New(),
		EmployerID:  identity.SubjectID,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		Location:    strings.TrimSpace(params.Location),
		Status:      JobActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.jobs.Create(ctx, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Job returns a posting by id. Public read.
func (s *Service) Job(ctx context.Context, id string) (*JobPosting, error) {
	return s.jobs.Find(ctx, id)
}

// Jobs lists postings. Public read.
func (s *Service) Jobs(ctx context.Context) ([]JobPosting, error) {
	return s.jobs.List(ctx)
}

// CloseJob marks a posting closed. Owner only.
func (s *Service) CloseJob(ctx context.Context, identity auth.Identity, jobID string) (*JobPosting, error) {
	job, err := s.ownedJob(ctx, identity, jobID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.jobs.UpdateStatus(ctx, job.ID, JobClosed, now); err != nil {
		return nil, err
	}
	job.Status = JobClosed
	job.UpdatedAt = now
	return job, nil
}

// DeleteJob removes a posting and cascades to every application
// referencing it. Owner only. The cascade runs in one store
// transaction so no orphaned application stays reachable.
func (s *Service) DeleteJob(ctx context.Context, identity auth.Identity, jobID string) error {
	job, err := s.ownedJob(ctx, identity, jobID)
	if err != nil {
		return err
	}
	return s.jobs.DeleteCascade(ctx, job.ID)
}

// Apply creates an application from the calling seeker to the target
// job, snapshotting the seeker's current resume address. The duplicate
// check here is a fast path only; two racing calls are resolved by the
// store's uniqueness constraint.
func (s *Service) Apply(ctx context.Context, identity auth.Identity, jobID string) (*Application, error) {
	if identity.Role != auth.RoleSeeker {
		return nil, ErrForbidden
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, ErrInvalidInput
	}
	job, err := s.jobs.Find(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != JobActive {
		return nil, ErrJobClosed
	}
	if _, err := s.applications.FindByJobAndSeeker(ctx, job.ID, identity.SubjectID); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var resumeURL string
	if s.resumes != nil {
		url, err := s.resumes.ResumeURL(ctx, identity.SubjectID)
		if err != nil {
			return nil, err
		}
		resumeURL = url
	}

	now := s.now().UTC()
	app := Application{
		ID:        ids.New(),
		JobID:     job.ID,
		SeekerID:  identity.SubjectID,
		Status:    StatusPending,
		ResumeURL: resumeURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.applications.Create(ctx, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Application returns a single application after verifying the caller's
// authority over it: the owning seeker, or the employer owning the
// referenced job. Existence alone is never enough.
func (s *Service) Application(ctx context.Context, identity auth.Identity, id string) (*Application, error) {
	app, err := s.applications.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, identity, app); err != nil {
		return nil, err
	}
	return app, nil
}

// SeekerApplications lists the calling seeker's own applications.
func (s *Service) SeekerApplications(ctx context.Context, identity auth.Identity) ([]Application, error) {
	if identity.Role != auth.RoleSeeker {
		return nil, ErrForbidden
	}
	return s.applications.ListBySeeker(ctx, identity.SubjectID)
}

// EmployerApplications lists applications against jobs the calling
// employer owns.
func (s *Service) EmployerApplications(ctx context.Context, identity auth.Identity) ([]Application, error) {
	if identity.Role != auth.RoleEmployer {
		return nil, ErrForbidden
	}
	return s.applications.ListByEmployer(ctx, identity.SubjectID)
}

// UpdateStatus moves an application through the forward-only transition
// table. Only the employer owning the referenced job may call it.
func (s *Service) UpdateStatus(ctx context.Context, identity auth.Identity, id, rawStatus string) (*Application, error) {
	if identity.Role != auth.RoleEmployer {
		return nil, ErrForbidden
	}
	next, err := ParseApplicationStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	app, err := s.applications.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.Find(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != identity.SubjectID {
		return nil, ErrForbidden
	}
	if !app.Status.CanTransition(next) {
		return nil, ErrInvalidTransition
	}
	return s.applications.UpdateStatus(ctx, app.ID, next, s.now().UTC())
}

// CanReadResume reports whether the caller may retrieve the resume
// artifact at the given address: the owning seeker, or an employer
// holding an application that snapshots that address against one of
// their jobs.
func (s *Service) CanReadResume(ctx context.Context, identity auth.Identity, address, ownerID string) (bool, error) {
	switch identity.Role {
	case auth.RoleSeeker:
		return identity.SubjectID == ownerID, nil
	case auth.RoleEmployer:
		apps, err := s.applications.ListByEmployer(ctx, identity.SubjectID)
		if err != nil {
			return false, err
		}
		for _, app := range apps {
			if app.ResumeURL == address {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, nil
	}
}

func (s *Service) ownedJob(ctx context.Context, identity auth.Identity, jobID string) (*JobPosting, error) {
	if identity.Role != auth.RoleEmployer {
		return nil, ErrForbidden
	}
	job, err := s.jobs.Find(ctx, strings.TrimSpace(jobID))
	if err != nil {
		return nil, err
	}
	if job.EmployerID != identity.SubjectID {
		return nil, ErrForbidden
	}
	return job, nil
}

func (s *Service) authorizeRead(ctx context.Context, identity auth.Identity, app *Application) error {
	switch identity.Role {
	case auth.RoleSeeker:
		if app.SeekerID != identity.SubjectID {
			return ErrForbidden
		}
		return nil
	case auth.RoleEmployer:
		job, err := s.jobs.Find(ctx, app.JobID)
		if err != nil {
			return err
		}
		if job.EmployerID != identity.SubjectID {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}
