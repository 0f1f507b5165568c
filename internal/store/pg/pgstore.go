package pg

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store wraps the shared connection pool. Typed accessors hand out the
// per-aggregate stores consumed by the services.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres through the pgx stdlib driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing pool (used by tests with sqlmock).
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Accounts returns the account store.
func (s *Store) Accounts() *AccountStore { return &AccountStore{db: s.db} }

// Jobs returns the job posting store.
func (s *Store) Jobs() *JobStore { return &JobStore{db: s.db} }

// Applications returns the application store.
func (s *Store) Applications() *ApplicationStore { return &ApplicationStore{db: s.db} }

// Profiles returns the seeker profile store.
func (s *Store) Profiles() *ProfileStore { return &ProfileStore{db: s.db} }

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
