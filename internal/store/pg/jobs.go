package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"jobdesk.org/internal/jobs"
)

// JobStore persists job postings.
type JobStore struct {
	db *sql.DB
}

var _ jobs.JobStore = (*JobStore)(nil)

const jobColumns = `id, employer_id, title, description, location, status, created_at, updated_at`

func (s *JobStore) Create(ctx context.Context, job *jobs.JobPosting) error {
	_, err := s.db.ExecContext(ctx, `
		insert into job_postings (id, employer_id, title, description, location, status, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, job.ID, job.EmployerID, job.Title, job.Description, job.Location,
		string(job.Status), job.CreatedAt, job.UpdatedAt)
	return err
}

func (s *JobStore) Find(ctx context.Context, id string) (*jobs.JobPosting, error) {
	row := s.db.QueryRowContext(ctx, `select `+jobColumns+` from job_postings where id = $1`, id)
	var job jobs.JobPosting
	var status string
	err := row.Scan(&job.ID, &job.EmployerID, &job.Title, &job.Description,
		&job.Location, &status, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, jobs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	job.Status = jobs.JobStatus(status)
	return &job, nil
}

func (s *JobStore) List(ctx context.Context) ([]jobs.JobPosting, error) {
	rows, err := s.db.QueryContext(ctx, `select `+jobColumns+` from job_postings order by created_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []jobs.JobPosting
	for rows.Next() {
		var job jobs.JobPosting
		var status string
		if err := rows.Scan(&job.ID, &job.EmployerID, &job.Title, &job.Description,
			&job.Location, &status, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, err
		}
		job.Status = jobs.JobStatus(status)
		out = append(out, job)
	}
	return out, rows.Err()
}

func (s *JobStore) UpdateStatus(ctx context.Context, id string, status jobs.JobStatus, updatedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update job_postings set status = $2, updated_at = $3 where id = $1
	`, id, string(status), updatedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return jobs.ErrNotFound
	}
	return nil
}

// DeleteCascade removes the posting and its applications in a single
// transaction so no orphaned application is ever reachable. The schema
// FK carries ON DELETE CASCADE as a backstop; the explicit delete keeps
// the invariant visible where it matters.
func (s *JobStore) DeleteCascade(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `delete from applications where job_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `delete from job_postings where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return jobs.ErrNotFound
	}
	return tx.Commit()
}
