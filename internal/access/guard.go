// Package access decides who may see which view and which dashboard a user lands on.
package access

import (
	"slices"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
)

type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectForbidden:
		return "redirect_forbidden"
	default:
		return "unknown"
	}
}

// Redirect is the client route a non-Allow decision sends the user to.
func (d Decision) Redirect() string {
	switch d {
	case RedirectLogin:
		return "/login"
	case RedirectForbidden:
		return "/dashboard"
	default:
		return ""
	}
}

// Admit is evaluated on every protected navigation. An empty required set admits
// any authenticated user; a partial session counts as no session.
func Admit(required []entity.Role, s *entity.Session) Decision {
	if !s.Complete() {
		return RedirectLogin
	}

	if len(required) > 0 && !slices.Contains(required, s.User.Role) {
		return RedirectForbidden
	}

	return Allow
}
