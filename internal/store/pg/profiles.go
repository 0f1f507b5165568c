package pg

import (
	"context"
	"database/sql"
	"errors"

	"jobdesk.org/internal/jobs"
	"jobdesk.org/internal/profile"
)

// ProfileStore persists seeker profiles.
type ProfileStore struct {
	db *sql.DB
}

var (
	_ profile.Store     = (*ProfileStore)(nil)
	_ jobs.ResumeLookup = (*ProfileStore)(nil)
)

func (s *ProfileStore) Get(ctx context.Context, accountID string) (*profile.SeekerProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		select account_id, headline, bio, location, resume_url, updated_at
		from seeker_profiles where account_id = $1
	`, accountID)
	var p profile.SeekerProfile
	err := row.Scan(&p.AccountID, &p.Headline, &p.Bio, &p.Location, &p.ResumeURL, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProfileStore) Upsert(ctx context.Context, p *profile.SeekerProfile) error {
	_, err := s.db.ExecContext(ctx, `
		insert into seeker_profiles (account_id, headline, bio, location, resume_url, updated_at)
		values ($1, $2, $3, $4, $5, $6)
		on conflict (account_id) do update
		set headline = excluded.headline,
		    bio = excluded.bio,
		    location = excluded.location,
		    resume_url = excluded.resume_url,
		    updated_at = excluded.updated_at
	`, p.AccountID, p.Headline, p.Bio, p.Location, p.ResumeURL, p.UpdatedAt)
	return err
}

func (s *ProfileStore) ResumeURL(ctx context.Context, accountID string) (string, error) {
	var url string
	err := s.db.QueryRowContext(ctx, `
		select resume_url from seeker_profiles where account_id = $1
	`, accountID).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return url, nil
}
