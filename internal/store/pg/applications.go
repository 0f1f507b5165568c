package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"jobdesk.org/internal/jobs"
)

// ApplicationStore persists applications. The applications table
// carries a unique index on (job_id, seeker_id); that constraint, not
// the service's read-then-write fast path, is what makes the
// one-application-per-pair invariant hold under concurrent creates.
type ApplicationStore struct {
	db *sql.DB
}

var _ jobs.ApplicationStore = (*ApplicationStore)(nil)

const applicationColumns = `id, job_id, seeker_id, status, resume_url, created_at, updated_at`

func (s *ApplicationStore) Create(ctx context.Context, app *jobs.Application) error {
	_, err := s.db.ExecContext(ctx, `
		insert into applications (id, job_id, seeker_id, status, resume_url, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7)
	`, app.ID, app.JobID, app.SeekerID, string(app.Status), app.ResumeURL, app.CreatedAt, app.UpdatedAt)
	if isUniqueViolation(err) {
		return jobs.ErrDuplicate
	}
	return err
}

func (s *ApplicationStore) Find(ctx context.Context, id string) (*jobs.Application, error) {
	row := s.db.QueryRowContext(ctx, `select `+applicationColumns+` from applications where id = $1`, id)
	return scanApplication(row)
}

func (s *ApplicationStore) FindByJobAndSeeker(ctx context.Context, jobID, seekerID string) (*jobs.Application, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+applicationColumns+` from applications where job_id = $1 and seeker_id = $2
	`, jobID, seekerID)
	return scanApplication(row)
}

func (s *ApplicationStore) ListBySeeker(ctx context.Context, seekerID string) ([]jobs.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+applicationColumns+` from applications where seeker_id = $1 order by created_at desc
	`, seekerID)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

func (s *ApplicationStore) ListByEmployer(ctx context.Context, employerID string) ([]jobs.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		select a.id, a.job_id, a.seeker_id, a.status, a.resume_url, a.created_at, a.updated_at
		from applications a
		join job_postings j on j.id = a.job_id
		where j.employer_id = $1
		order by a.created_at desc
	`, employerID)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

func (s *ApplicationStore) UpdateStatus(ctx context.Context, id string, status jobs.ApplicationStatus, updatedAt time.Time) (*jobs.Application, error) {
	res, err := s.db.ExecContext(ctx, `
		update applications set status = $2, updated_at = $3 where id = $1
	`, id, string(status), updatedAt)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, jobs.ErrNotFound
	}
	return s.Find(ctx, id)
}

func scanApplication(row *sql.Row) (*jobs.Application, error) {
	var app jobs.Application
	var status string
	err := row.Scan(&app.ID, &app.JobID, &app.SeekerID, &status,
		&app.ResumeURL, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, jobs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	app.Status = jobs.ApplicationStatus(status)
	return &app, nil
}

func collectApplications(rows *sql.Rows) ([]jobs.Application, error) {
	defer rows.Close()
	var out []jobs.Application
	for rows.Next() {
		var app jobs.Application
		var status string
		if err := rows.Scan(&app.ID, &app.JobID, &app.SeekerID, &status,
			&app.ResumeURL, &app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, err
		}
		app.Status = jobs.ApplicationStatus(status)
		out = append(out, app)
	}
	return out, rows.Err()
}
