package hrapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
)

// Login exchanges credentials for an access token. Rejections come back as *AuthError,
// transport and server failures as *FetchError.
func (c *Client) Login(ctx context.Context, email, password string) (*entity.LoginResponse, error) {
	req, err := jsonRequest("login", http.MethodPost, "/auth/login", entity.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var resp entity.LoginResponse
	if err = c.doJSON(ctx, req, &resp); err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) && fetchErr.StatusCode >= 400 && fetchErr.StatusCode < 500 {
			return nil, &AuthError{StatusCode: fetchErr.StatusCode, Detail: fetchErr.Detail}
		}

		return nil, err
	}

	if resp.AccessToken == "" {
		return nil, &AuthError{StatusCode: http.StatusOK, Detail: "no access token in response"}
	}

	return &resp, nil
}
