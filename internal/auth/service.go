package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobdesk.org/internal/ids"
)

// Service provides registration and sign-in on top of an account store
// and the token service.
type Service struct {
	accounts AccountStore
	tokens   *Tokens
	now      func() time.Time
}

// NewService constructs the account service.
func NewService(accounts AccountStore, tokens *Tokens) (*Service, error) {
	if accounts == nil {
		return nil, errors.New("auth: account store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token service is required")
	}
	return &Service{accounts: accounts, tokens: tokens, now: time.Now}, nil
}

// Session is the result of a successful sign-up or sign-in.
type Session struct {
	Account   Account
	Token     string
	ExpiresAt time.Time
}

// SignUpParams carries registration input.
type SignUpParams struct {
	Email       string
	Password    string
	FullName    string
	Role        string
	CompanyName string
}

// SignUp registers a new account and mints its first credential.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (Session, error) {
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return Session{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(params.Password) < 8 {
		return Session{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	fullName := strings.TrimSpace(params.FullName)
	if fullName == "" {
		return Session{}, fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	}
	role, err := ParseRole(params.Role)
	if err != nil {
		return Session{}, err
	}
	companyName := strings.TrimSpace(params.CompanyName)
	if role == RoleEmployer && companyName == "" {
		return Session{}, fmt.Errorf("%w: company_name is required for employer accounts", ErrInvalidInput)
	}
	if role == RoleSeeker {
		companyName = ""
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return Session{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return Session{}, err
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return Session{}, err
	}

	now := s.now().UTC()
	account := Account{
		ID:           ids.New(),
		Email:        email,
		FullName:     fullName,
		Role:         role,
		CompanyName:  companyName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, &account); err != nil {
		return Session{}, err
	}

	return s.session(account)
}

// SignIn authenticates credentials and mints a fresh token. Unknown
// accounts and password mismatches produce the same ErrUnauthorized so
// responses cannot be used to enumerate accounts.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Session{}, ErrUnauthorized
	}
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}
	if err := VerifyPassword(account.PasswordHash, password); err != nil {
		return Session{}, ErrUnauthorized
	}
	return s.session(*account)
}

// Account loads an account by id.
func (s *Service) Account(ctx context.Context, id string) (*Account, error) {
	return s.accounts.Find(ctx, id)
}

func (s *Service) session(account Account) (Session, error) {
	token, expiresAt, err := s.tokens.Generate(account.ID, account.Role)
	if err != nil {
		return Session{}, err
	}
	return Session{Account: account, Token: token, ExpiresAt: expiresAt}, nil
}
