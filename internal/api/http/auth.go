package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/adamanr/onboarding_dashboard/internal/access"
	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type sessionResponse struct {
	User      *entity.Principal `json:"user"`
	ExpiresAt time.Time         `json:"expires_at"`
	Dashboard string            `json:"dashboard"`
}

func newSessionResponse(sess *entity.Session) sessionResponse {
	return sessionResponse{
		User:      sess.User,
		ExpiresAt: sess.ExpiresAt,
		Dashboard: access.SelectDashboard(sess.User.Role).String(),
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, key string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     s.deps.Config.Session.CookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.deps.Config.Session.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}

	if expires.IsZero() {
		cookie.MaxAge = -1
	} else {
		cookie.Expires = expires
	}

	http.SetCookie(w, cookie)
}

// Login authenticates against the HR API and starts a gateway session.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		s.httpResponse(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"}, "error")
		return
	}

	key := uuid.NewString()

	sess, err := s.Controllers.AuthController.Login(r.Context(), key, req.Email, req.Password)
	if err != nil {
		s.errorResponse(w, "Error logging in", err)
		return
	}

	// a rejected login keeps the current session
	if oldKey, ok := s.sessionKey(r); ok && oldKey != key {
		if err := s.Controllers.AuthController.Logout(r.Context(), oldKey); err != nil {
			s.deps.Logger.Warn("Error dropping previous session", slog.String("error", err.Error()))
		}
	}

	s.setSessionCookie(w, key, sess.ExpiresAt)
	s.httpResponse(w, http.StatusOK, newSessionResponse(sess), "success")
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if key, _ := sessionFrom(r.Context()); key != "" {
		if err := s.Controllers.AuthController.Logout(r.Context(), key); err != nil {
			s.errorResponse(w, "Error logging out", err)
			return
		}
	}

	s.setSessionCookie(w, "", time.Time{})
	s.httpResponse(w, http.StatusOK, map[string]string{"message": "Logged out successfully"}, "success")
}

func (s *Server) CurrentSession(w http.ResponseWriter, r *http.Request) {
	_, sess := sessionFrom(r.Context())

	s.httpResponse(w, http.StatusOK, newSessionResponse(sess), "success")
}

// Dashboard picks the dashboard variant and sidebar for the signed-in role.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	_, sess := sessionFrom(r.Context())

	s.httpResponse(w, http.StatusOK, map[string]any{
		"variant":    access.SelectDashboard(sess.User.Role).String(),
		"principal":  sess.User,
		"navigation": access.NavigationItems(sess.User.Role),
	}, "success")
}

// CheckRoute answers what the guard decides for a client route.
func (s *Server) CheckRoute(w http.ResponseWriter, r *http.Request) {
	route := "/" + chi.URLParam(r, "*")
	_, sess := sessionFrom(r.Context())

	decision, err := access.AdmitRoute(route, sess)
	if err != nil {
		s.httpResponse(w, http.StatusNotFound, map[string]string{"error": err.Error(), "route": route}, "error")
		return
	}

	s.httpResponse(w, http.StatusOK, map[string]string{
		"route":    route,
		"decision": decision.String(),
		"redirect": decision.Redirect(),
	}, "success")
}
