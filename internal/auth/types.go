package auth

import "time"

// Account represents a registered identity. The role is fixed at
// registration; the password hash is never transmitted to clients.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	CompanyName  string    `json:"company_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
