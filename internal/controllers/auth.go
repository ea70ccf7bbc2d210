package controllers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/adamanr/onboarding_dashboard/internal/hrapi"
	"github.com/adamanr/onboarding_dashboard/internal/session"
)

type AuthController struct {
	deps       *Dependens
	workspaces *Workspaces
	now        func() time.Time
}

func NewAuthController(deps *Dependens, workspaces *Workspaces) *AuthController {
	return &AuthController{
		deps:       deps,
		workspaces: workspaces,
		now:        time.Now,
	}
}

// Login authenticates against the collaborator and stores the session under key.
// Nothing is stored when the credentials are rejected.
func (c *AuthController) Login(ctx context.Context, key, email, password string) (*entity.Session, error) {
	resp, err := c.deps.Auth.Login(ctx, email, password)
	if err != nil {
		var authErr *hrapi.AuthError
		if errors.As(err, &authErr) {
			c.deps.Logger.Warn("Login rejected", slog.String("email", email), slog.String("error", err.Error()))
		} else {
			c.deps.Logger.Error("Error calling login", slog.String("email", email), slog.String("error", err.Error()))
		}

		return nil, err
	}

	var userID string
	expiresAt := c.now().Add(c.deps.Config.Session.TTL)

	if claims, claimsErr := hrapi.ReadClaims(resp.AccessToken); claimsErr == nil {
		userID = claims.UserID
		if exp := claims.Expiry(); !exp.IsZero() {
			expiresAt = exp
		}
	} else {
		c.deps.Logger.Debug("Access token is not a readable JWT", slog.String("error", claimsErr.Error()))
	}

	principal := entity.NewPrincipal(resp.User, userID)
	sess := &entity.Session{
		Token:     resp.AccessToken,
		User:      &principal,
		ExpiresAt: expiresAt,
	}

	if err = c.deps.Sessions.Save(ctx, key, sess); err != nil {
		c.deps.Logger.Error("Error saving session", slog.String("email", email), slog.String("error", err.Error()))
		return nil, err
	}

	c.workspaces.Drop(key)
	c.deps.Logger.Info("User logged in", slog.String("email", principal.Email), slog.String("role", string(principal.Role)))

	return sess, nil
}

// Logout is idempotent.
func (c *AuthController) Logout(ctx context.Context, key string) error {
	c.workspaces.Drop(key)

	if err := c.deps.Sessions.Delete(ctx, key); err != nil {
		c.deps.Logger.Error("Error deleting session", slog.String("error", err.Error()))
		return err
	}

	return nil
}

// Current returns session.ErrNoSession when nobody is signed in under key.
// The workspace of a key whose session is gone is dropped.
func (c *AuthController) Current(ctx context.Context, key string) (*entity.Session, error) {
	sess, err := c.deps.Sessions.Load(ctx, key)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			c.workspaces.Drop(key)
		} else {
			c.deps.Logger.Error("Error loading session", slog.String("error", err.Error()))
		}

		return nil, err
	}

	return sess, nil
}
