package entity

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleEmployee, RoleManager, RoleHR}

// ParseRole accepts only the three known roles. Anything else yields the zero Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleEmployee, RoleManager, RoleHR:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleHR:
		return true
	default:
		return false
	}
}

// Principal is the authenticated user held for the life of a session.
type Principal struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       Role   `json:"role"`
	Department string `json:"department"`
}

func (p Principal) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// NewPrincipal derives a Principal from the login response user. The display
// name is split on whitespace: first token is the first name, second token (if any)
// the last name. userID falls back to the email when the token has no user_id claim.
func NewPrincipal(u LoginUser, userID string) Principal {
	firstName, lastName := splitName(u.Name)

	role, _ := ParseRole(u.Role)

	id := userID
	if id == "" {
		id = u.Email
	}

	return Principal{
		ID:         id,
		Email:      u.Email,
		FirstName:  firstName,
		LastName:   lastName,
		Role:       role,
		Department: u.Department,
	}
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return name, ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[1]
	}
}

// Session pairs the access token with its principal. Both are set and cleared together.
type Session struct {
	Token     string     `json:"access_token"`
	User      *Principal `json:"user"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Complete reports whether both halves of the session are present.
func (s *Session) Complete() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// Expired reports whether the session has a known expiry in the past.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
