package api

import (
	"errors"
	"net/http"

	"github.com/adamanr/onboarding_dashboard/internal/controllers"
	"github.com/adamanr/onboarding_dashboard/internal/entity"
)

func (s *Server) workspace(r *http.Request) *controllers.Workspace {
	key, sess := sessionFrom(r.Context())

	return s.Controllers.Workspaces.Get(key, sess)
}

func (s *Server) directoryResponse(w http.ResponseWriter, r *http.Request, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["directory"] = s.workspace(r).Directory.View()

	s.httpResponse(w, http.StatusOK, data, "success")
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := bindPage(r)
	if errors.Is(err, entity.ErrInvalidRole) {
		s.httpResponse(w, http.StatusBadRequest, map[string]string{"error": "Invalid role filter"}, "error")
		return
	}
	if err != nil {
		s.httpResponse(w, http.StatusBadRequest, map[string]string{"error": "Invalid paging parameters"}, "error")
		return
	}

	if _, err = s.workspace(r).Directory.List(r.Context(), page.Skip, page.Limit, page.Roles...); err != nil {
		s.errorResponse(w, "Error listing users", err)
		return
	}

	s.directoryResponse(w, r, nil)
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req entity.NewUser
	if !s.decodeBody(w, r, &req) {
		return
	}

	resp, err := s.workspace(r).Directory.Create(r.Context(), req)
	if err != nil {
		s.errorResponse(w, "Error creating user", err)
		return
	}

	s.httpResponse(w, http.StatusCreated, resp, "success")
}

func (s *Server) SetUserActive(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Active == nil {
		s.httpResponse(w, http.StatusBadRequest, map[string]string{"error": "active is required"}, "error")
		return
	}

	ack, err := s.workspace(r).Directory.SetActive(r.Context(), id, *req.Active)
	if err != nil {
		s.errorResponse(w, "Error changing user status", err)
		return
	}

	s.directoryResponse(w, r, map[string]any{"message": ack.Message})
}

func (s *Server) ChangeUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	role, err := entity.ParseRole(req.Role)
	if err != nil {
		s.errorResponse(w, "Error parsing role", err)
		return
	}

	ack, err := s.workspace(r).Directory.ChangeRole(r.Context(), id, role)
	if err != nil {
		s.errorResponse(w, "Error changing user role", err)
		return
	}

	s.directoryResponse(w, r, map[string]any{"message": ack.Message})
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request, flag string, fn func(*controllers.Directory, string) (bool, error)) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}

	value, err := fn(s.workspace(r).Directory, id)
	if err != nil {
		s.errorResponse(w, "Error toggling "+flag, err)
		return
	}

	s.directoryResponse(w, r, map[string]any{flag: value})
}

func (s *Server) ToggleExpanded(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, r, "expanded", (*controllers.Directory).ToggleExpanded)
}

func (s *Server) ToggleEditing(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, r, "editing", (*controllers.Directory).ToggleEditing)
}

func (s *Server) ToggleRoleMenu(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, r, "roleMenuOpen", (*controllers.Directory).ToggleRoleMenu)
}

func (s *Server) SetPendingEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}
	field, ok := s.pathParam(w, r, "field")
	if !ok {
		return
	}

	var req struct {
		Value string `json:"value"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.workspace(r).Directory.SetPendingEdit(id, field, req.Value); err != nil {
		s.errorResponse(w, "Error buffering edit", err)
		return
	}

	s.directoryResponse(w, r, nil)
}

func (s *Server) SaveEdits(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}

	ack, err := s.workspace(r).Directory.UpdateFields(r.Context(), id)
	if err != nil {
		s.errorResponse(w, "Error saving user", err)
		return
	}

	s.directoryResponse(w, r, map[string]any{"message": ack.Message})
}

func (s *Server) CancelEdits(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}

	s.workspace(r).Directory.CancelEditing(id)
	s.directoryResponse(w, r, nil)
}
