package api

import (
	"net/http"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

type pageParams struct {
	Skip  int
	Limit int
	Roles []entity.Role
}

func bindPage(r *http.Request) (pageParams, error) {
	var params pageParams

	if err := runtime.BindQueryParameter("form", true, false, "skip", r.URL.Query(), &params.Skip); err != nil {
		return params, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		return params, err
	}

	// ?role=employee&role=manager
	var roles []string
	if err := runtime.BindQueryParameter("form", true, false, "role", r.URL.Query(), &roles); err != nil {
		return params, err
	}
	for _, raw := range roles {
		role, err := entity.ParseRole(raw)
		if err != nil {
			return params, err
		}
		params.Roles = append(params.Roles, role)
	}

	return params, nil
}

func bindPathString(r *http.Request, name string) (string, error) {
	var value string

	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})

	return value, err
}

// pathParam writes a 400 and returns false when the parameter is missing or malformed.
func (s *Server) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value, err := bindPathString(r, name)
	if err != nil || value == "" {
		s.httpResponse(w, http.StatusBadRequest, map[string]string{"error": "Invalid format for parameter " + name}, "error")
		return "", false
	}

	return value, true
}
