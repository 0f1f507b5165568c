package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of identity classes. A role is fixed at
// registration and never changes for the lifetime of the account.
type Role string

const (
	RoleSeeker   Role = "seeker"
	RoleEmployer Role = "employer"
)

// ParseRole normalizes and validates a role string.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleSeeker:
		return RoleSeeker, nil
	case RoleEmployer:
		return RoleEmployer, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
}

func (r Role) Valid() bool {
	return r == RoleSeeker || r == RoleEmployer
}

func (r Role) String() string { return string(r) }
