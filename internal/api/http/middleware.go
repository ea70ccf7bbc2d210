package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/adamanr/onboarding_dashboard/internal/access"
	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/adamanr/onboarding_dashboard/internal/session"
	"github.com/google/uuid"
)

type ctxKey int

const (
	sessionKeyCtx ctxKey = iota
	sessionCtx
)

// sessionKey returns the session key carried by the cookie, if it is well formed.
func (s *Server) sessionKey(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.deps.Config.Session.CookieName)
	if err != nil {
		return "", false
	}

	if _, err = uuid.Parse(cookie.Value); err != nil {
		return "", false
	}

	return cookie.Value, true
}

// withSession loads the session of the request without rejecting anything.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := s.sessionKey(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKeyCtx, key)

		sess, err := s.Controllers.AuthController.Current(ctx, key)
		switch {
		case err == nil:
			ctx = context.WithValue(ctx, sessionCtx, sess)
		case !errors.Is(err, session.ErrNoSession):
			s.httpResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "session store unavailable"}, "error")
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) (string, *entity.Session) {
	key, _ := ctx.Value(sessionKeyCtx).(string)
	sess, _ := ctx.Value(sessionCtx).(*entity.Session)

	return key, sess
}

// guard admits the request the way the client route would be admitted. It is
// evaluated on every request.
func (s *Server) guard(route string) func(http.Handler) http.Handler {
	required, err := access.RequiredRoles(route)
	if err != nil {
		panic("guard: " + err.Error() + ": " + route)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, sess := sessionFrom(r.Context())

			switch decision := access.Admit(required, sess); decision {
			case access.Allow:
				next.ServeHTTP(w, r)
			case access.RedirectForbidden:
				s.deps.Logger.Warn("Forbidden request",
					slog.String("path", r.URL.Path),
					slog.String("role", string(sess.User.Role)),
				)
				s.httpResponse(w, http.StatusForbidden, map[string]string{
					"error":    "insufficient permissions",
					"redirect": decision.Redirect(),
				}, "forbidden")
			default:
				s.httpResponse(w, http.StatusUnauthorized, map[string]string{
					"error":    "authentication required",
					"redirect": decision.Redirect(),
				}, "unauthorized")
			}
		})
	}
}
