package access

import (
	"errors"
	"strings"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
)

var ErrUnknownRoute = errors.New("unknown route")

var (
	hrOnly        = []entity.Role{entity.RoleHR}
	managerOnly   = []entity.Role{entity.RoleManager}
	hrAndManagers = []entity.Role{entity.RoleHR, entity.RoleManager}
)

// routePolicy maps every protected client route to its required roles.
// A nil entry means any authenticated user.
var routePolicy = map[string][]entity.Role{
	"/dashboard": nil,
	"/tasks":     nil,
	"/calendar":  nil,
	"/messages":  nil,

	"/documents":       hrOnly,
	"/employees":       hrOnly,
	"/analytics":       hrOnly,
	"/user-management": hrOnly,
	"/all-employees":   hrOnly,

	"/create-user": hrAndManagers,

	"/team":      managerOnly,
	"/approvals": managerOnly,
}

// RequiredRoles returns the roles a route needs.
func RequiredRoles(route string) ([]entity.Role, error) {
	route = normalizeRoute(route)

	roles, ok := routePolicy[route]
	if !ok {
		return nil, ErrUnknownRoute
	}

	return roles, nil
}

// AdmitRoute combines the policy lookup with Admit.
func AdmitRoute(route string, s *entity.Session) (Decision, error) {
	roles, err := RequiredRoles(route)
	if err != nil {
		return RedirectLogin, err
	}

	return Admit(roles, s), nil
}

func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	if route == "/" {
		return "/dashboard"
	}

	return route
}
