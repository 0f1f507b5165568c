package profile

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"jobdesk.org/internal/auth"
	"jobdesk.org/internal/resume"
)

var (
	ErrNotFound  = errors.New("profile: not found")
	ErrForbidden = errors.New("profile: forbidden")
)

// SeekerProfile carries the seeker's mutable profile fields plus the
// address of their current resume artifact, if any.
type SeekerProfile struct {
	AccountID string    `json:"account_id"`
	Headline  string    `json:"headline,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Location  string    `json:"location,omitempty"`
	ResumeURL string    `json:"resume_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store manages seeker profile persistence.
type Store interface {
	Get(ctx context.Context, accountID string) (*SeekerProfile, error)
	Upsert(ctx context.Context, p *SeekerProfile) error
	// ResumeURL returns the current resume address or the empty string.
	ResumeURL(ctx context.Context, accountID string) (string, error)
}

// Upload describes an incoming resume file.
type Upload struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// UpdateParams carries profile mutation input. Nil fields are left
// unchanged; a non-nil Resume replaces the stored artifact.
type UpdateParams struct {
	Headline *string
	Bio      *string
	Location *string
	Resume   *Upload
}

// Service updates seeker profiles and coordinates resume replacement
// with the artifact store.
type Service struct {
	profiles  Store
	artifacts *resume.Store
	now       func() time.Time
}

// NewService constructs the profile service.
func NewService(profiles Store, artifacts *resume.Store) (*Service, error) {
	if profiles == nil {
		return nil, errors.New("profile: store is required")
	}
	if artifacts == nil {
		return nil, errors.New("profile: artifact store is required")
	}
	return &Service{profiles: profiles, artifacts: artifacts, now: time.Now}, nil
}

// Get returns the caller's own profile.
func (s *Service) Get(ctx context.Context, identity auth.Identity) (*SeekerProfile, error) {
	if identity.Role != auth.RoleSeeker {
		return nil, ErrForbidden
	}
	return s.profiles.Get(ctx, identity.SubjectID)
}

// ByAccount returns a profile without caller checks. Used to enrich an
// application detail already cleared by the jobs authority rules.
func (s *Service) ByAccount(ctx context.Context, accountID string) (*SeekerProfile, error) {
	return s.profiles.Get(ctx, accountID)
}

// Update applies profile field changes and, when a resume upload is
// present, replaces the stored artifact. The previous artifact is only
// deleted after the new one is durably stored and the profile row
// records its address.
func (s *Service) Update(ctx context.Context, identity auth.Identity, params UpdateParams) (*SeekerProfile, error) {
	if identity.Role != auth.RoleSeeker {
		return nil, ErrForbidden
	}

	current, err := s.profiles.Get(ctx, identity.SubjectID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		current = &SeekerProfile{AccountID: identity.SubjectID}
	}

	if params.Headline != nil {
		current.Headline = strings.TrimSpace(*params.Headline)
	}
	if params.Bio != nil {
		current.Bio = strings.TrimSpace(*params.Bio)
	}
	if params.Location != nil {
		current.Location = strings.TrimSpace(*params.Location)
	}
	current.UpdatedAt = s.now().UTC()

	if params.Resume != nil {
		// The profile row must point at the new address before the old
		// blob is deleted; the store deletes the previous artifact only
		// after this commit succeeds.
		address, err := s.artifacts.Replace(
			identity.SubjectID,
			params.Resume.Name,
			params.Resume.Size,
			params.Resume.Reader,
			current.ResumeURL,
			func(newAddress string) error {
				next := *current
				next.ResumeURL = newAddress
				return s.profiles.Upsert(ctx, &next)
			},
		)
		if err != nil {
			return nil, err
		}
		current.ResumeURL = address
		return current, nil
	}

	if err := s.profiles.Upsert(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}
