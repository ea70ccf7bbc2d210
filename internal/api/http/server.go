package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/adamanr/onboarding_dashboard/internal/controllers"
	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/adamanr/onboarding_dashboard/internal/hrapi"
	"github.com/adamanr/onboarding_dashboard/internal/session"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	deps        *controllers.Dependens
	Controllers *controllers.Controllers
}

func NewServer(deps *controllers.Dependens) *Server {
	return &Server{
		deps:        deps,
		Controllers: controllers.NewControllers(deps),
	}
}

// Routes mounts the gateway API on r. Client routes in guard() name the policy
// entry that protects each group.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/login", s.Login)

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Post("/api/logout", s.Logout)

		r.With(s.guard("/dashboard")).Get("/api/session", s.CurrentSession)
		r.With(s.guard("/dashboard")).Get("/api/dashboard", s.Dashboard)
		r.Get("/api/routes/*", s.CheckRoute)

		r.Route("/api/directory/users", func(r chi.Router) {
			r.With(s.guard("/create-user")).Post("/", s.CreateUser)

			r.Group(func(r chi.Router) {
				r.Use(s.guard("/user-management"))

				r.Get("/", s.ListUsers)
				r.Put("/{id}/active", s.SetUserActive)
				r.Put("/{id}/role", s.ChangeUserRole)
				r.Post("/{id}/expand", s.ToggleExpanded)
				r.Post("/{id}/edit", s.ToggleEditing)
				r.Post("/{id}/role-menu", s.ToggleRoleMenu)
				r.Put("/{id}/edits/{field}", s.SetPendingEdit)
				r.Post("/{id}/save", s.SaveEdits)
				r.Post("/{id}/cancel", s.CancelEdits)
			})
		})

		r.Route("/api/documents", func(r chi.Router) {
			r.Use(s.guard("/documents"))

			r.Get("/", s.DocumentsView)
			r.Post("/users/load", s.LoadDocumentUsers)
			r.Post("/select-user", s.SelectUser)
			r.Post("/select-category", s.SelectCategory)
			r.Post("/back", s.Back)
			r.Post("/refresh", s.RefreshDocuments)
			r.Post("/toggle-upload", s.ToggleUpload)
			r.Post("/upload", s.UploadDocuments)
			r.Get("/download/{id}", s.DownloadDocument)
		})
	})
}

// errorStatus maps controller and collaborator errors onto gateway responses.
func errorStatus(err error) (int, string) {
	var (
		authErr   *hrapi.AuthError
		fetchErr  *hrapi.FetchError
		uploadErr *controllers.UploadError
	)

	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, "error"
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized, "error"
	case errors.Is(err, controllers.ErrSuperseded):
		return http.StatusConflict, "superseded"
	case errors.Is(err, controllers.ErrNoUserSelected),
		errors.Is(err, controllers.ErrNoCategorySelected),
		errors.Is(err, controllers.ErrUnknownUser),
		errors.Is(err, controllers.ErrUnknownCategory),
		errors.Is(err, controllers.ErrUnknownDocument),
		errors.Is(err, controllers.ErrRecordNotLoaded):
		return http.StatusConflict, "error"
	case errors.Is(err, entity.ErrInvalidRole),
		errors.Is(err, entity.ErrUnknownField),
		errors.Is(err, entity.ErrMissingFields):
		return http.StatusBadRequest, "error"
	case errors.As(err, &uploadErr):
		return http.StatusBadGateway, "error"
	case errors.As(err, &fetchErr):
		if fetchErr.StatusCode >= 400 && fetchErr.StatusCode < 500 {
			return fetchErr.StatusCode, "error"
		}

		return http.StatusBadGateway, "error"
	default:
		return http.StatusInternalServerError, "error"
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, msg string, err error) {
	status, respType := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.deps.Logger.Error(msg, slog.String("error", err.Error()))
	} else {
		s.deps.Logger.Warn(msg, slog.String("error", err.Error()))
	}

	s.httpResponse(w, status, map[string]string{"error": err.Error()}, respType)
}

func (s *Server) httpResponse(w http.ResponseWriter, status int, data any, respType string) {
	resp := map[string]any{
		"status": status,
		"type":   respType,
		"data":   data,
	}

	respData, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		s.deps.Logger.Error("Error marshaling response", slog.String("error", marshalErr.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(respData); err != nil {
		s.deps.Logger.Error("Error writing response", slog.String("error", err.Error()))
	}
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		s.deps.Logger.Error("Error decoding request body", slog.String("error", err.Error()))
		s.httpResponse(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"}, "error")
		return false
	}

	return true
}
