package pg

import (
	"context"
	"database/sql"
	"errors"

	"jobdesk.org/internal/auth"
)

// AccountStore persists registered identities.
type AccountStore struct {
	db *sql.DB
}

var _ auth.AccountStore = (*AccountStore)(nil)

const accountColumns = `id, email, full_name, role, company_name, password_hash, created_at, updated_at`

func (s *AccountStore) Create(ctx context.Context, account *auth.Account) error {
	_, err := s.db.ExecContext(ctx, `
		insert into accounts (id, email, full_name, role, company_name, password_hash, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, account.ID, account.Email, account.FullName, account.Role.String(), account.CompanyName,
		account.PasswordHash, account.CreatedAt, account.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrAlreadyExists
	}
	return err
}

func (s *AccountStore) Find(ctx context.Context, id string) (*auth.Account, error) {
	row := s.db.QueryRowContext(ctx, `select `+accountColumns+` from accounts where id = $1`, id)
	return scanAccount(row)
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := s.db.QueryRowContext(ctx, `select `+accountColumns+` from accounts where email = $1`, email)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*auth.Account, error) {
	var account auth.Account
	var role string
	err := row.Scan(&account.ID, &account.Email, &account.FullName, &role,
		&account.CompanyName, &account.PasswordHash, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	parsed, err := auth.ParseRole(role)
	if err != nil {
		return nil, err
	}
	account.Role = parsed
	return &account, nil
}
