package httpapi

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"jobdesk.org/internal/auth"
	"jobdesk.org/internal/jobs"
	"jobdesk.org/internal/profile"
	"jobdesk.org/internal/resume"
)

// In-memory stores backing the handler tests. They mirror the
// contracts of the pg package, including duplicate detection.

type memAccounts struct {
	mu      sync.Mutex
	byID    map[string]auth.Account
	byEmail map[string]string
}

func newMemAccounts() *memAccounts {
	return &memAccounts{
		byID:    make(map[string]auth.Account),
		byEmail: make(map[string]string),
	}
}

func (m *memAccounts) Create(_ context.Context, account *auth.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[account.Email]; ok {
		return auth.ErrAlreadyExists
	}
	m.byID[account.ID] = *account
	m.byEmail[account.Email] = account.ID
	return nil
}

func (m *memAccounts) Find(_ context.Context, id string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &account, nil
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, auth.ErrNotFound
	}
	account := m.byID[id]
	return &account, nil
}

type memJobs struct {
	mu           sync.Mutex
	jobs         map[string]jobs.JobPosting
	applications map[string]jobs.Application
}

func newMemJobs() *memJobs {
	return &memJobs{
		jobs:         make(map[string]jobs.JobPosting),
		applications: make(map[string]jobs.Application),
	}
}

func (m *memJobs) Create(_ context.Context, posting *jobs.JobPosting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[posting.ID] = *posting
	return nil
}

func (m *memJobs) Find(_ context.Context, id string) (*jobs.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posting, ok := m.jobs[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	return &posting, nil
}

func (m *memJobs) List(_ context.Context) ([]jobs.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]jobs.JobPosting, 0, len(m.jobs))
	for _, posting := range m.jobs {
		out = append(out, posting)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memJobs) UpdateStatus(_ context.Context, id string, status jobs.JobStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	posting, ok := m.jobs[id]
	if !ok {
		return jobs.ErrNotFound
	}
	posting.Status = status
	posting.UpdatedAt = updatedAt
	m.jobs[id] = posting
	return nil
}

func (m *memJobs) DeleteCascade(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return jobs.ErrNotFound
	}
	delete(m.jobs, id)
	for appID, app := range m.applications {
		if app.JobID == id {
			delete(m.applications, appID)
		}
	}
	return nil
}

type memApplications struct {
	parent *memJobs
}

func (m memApplications) Create(_ context.Context, app *jobs.Application) error {
	m.parent.mu.Lock()
	defer m.parent.mu.Unlock()
	for _, existing := range m.parent.applications {
		if existing.JobID == app.JobID && existing.SeekerID == app.SeekerID {
			return jobs.ErrDuplicate
		}
	}
	m.parent.applications[app.ID] = *app
	return nil
}

func (m memApplications) Find(_ context.Context, id string) (*jobs.Application, error) {
	m.parent.mu.Lock()
	defer m.parent.mu.Unlock()
	app, ok := m.parent.applications[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	return &app, nil
}

func (m memApplications) FindByJobAndSeeker(_ context.Context, jobID, seekerID string) (*jobs.Application, error) {
	m.parent.mu.Lock()
	defer m.parent.mu.Unlock()
	for _, app := range m.parent.applications {
		if app.JobID == jobID && app.SeekerID == seekerID {
			return &app, nil
		}
	}
	return nil, jobs.ErrNotFound
}

func (m memApplications) ListBySeeker(_ context.Context, seekerID string) ([]jobs.Application, error) {
	m.parent.mu.Lock()
	defer m.parent.mu.Unlock()
	var out []jobs.Application
	for _, app := range m.parent.applications {
		if app.SeekerID == seekerID {
			out = append(out, app)
		}
	}
	sortApplications(out)
	return out, nil
}

func (m memApplications) ListByEmployer(_ context.Context, employerID string) ([]jobs.Application, error) {
	m.parent.mu.Lock()
	defer m.parent.mu.Unlock()
	var out []jobs.Application
	for _, app := range m.parent.applications {
		posting, ok := m.parent.jobs[app.JobID]
		if ok && posting.EmployerID == employerID {
			out = append(out, app)
		}
	}
	sortApplications(out)
	return out, nil
}

func (m memApplications) UpdateStatus(_ context.Context, id string, status jobs.ApplicationStatus, updatedAt time.Time) (*jobs.Application, error) {
	m.parent.mu.Lock()
	defer m.parent.mu.Unlock()
	app, ok := m.parent.applications[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	app.Status = status
	app.UpdatedAt = updatedAt
	m.parent.applications[id] = app
	return &app, nil
}

func sortApplications(apps []jobs.Application) {
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
}

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]profile.SeekerProfile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{profiles: make(map[string]profile.SeekerProfile)}
}

func (m *memProfiles) Get(_ context.Context, accountID string) (*profile.SeekerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[accountID]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return &p, nil
}

func (m *memProfiles) Upsert(_ context.Context, p *profile.SeekerProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.AccountID] = *p
	return nil
}

func (m *memProfiles) ResumeURL(_ context.Context, accountID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[accountID]
	if !ok {
		return "", nil
	}
	return p.ResumeURL, nil
}

func newTestAPI(t *testing.T) *API {
	t.Helper()

	tokens, err := auth.NewTokens("handler-test-secret")
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}
	accounts, err := auth.NewService(newMemAccounts(), tokens)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}

	artifacts, err := resume.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new resume store: %v", err)
	}

	profiles := newMemProfiles()
	profileSvc, err := profile.NewService(profiles, artifacts)
	if err != nil {
		t.Fatalf("new profile service: %v", err)
	}

	jobStore := newMemJobs()
	jobSvc, err := jobs.NewService(jobStore, memApplications{parent: jobStore}, profiles)
	if err != nil {
		t.Fatalf("new jobs service: %v", err)
	}

	return New(Deps{
		Tokens:    tokens,
		Accounts:  accounts,
		Jobs:      jobSvc,
		Profiles:  profileSvc,
		Artifacts: artifacts,
		Version:   "test",
	})
}
