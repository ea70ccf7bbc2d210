package hrapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
)

func (c *Client) ListUsers(ctx context.Context, skip, limit int) (*entity.UserList, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var list entity.UserList
	if err := c.doJSON(ctx, request{op: "fetch users", method: http.MethodGet, path: "/users/list?" + query.Encode()}, &list); err != nil {
		return nil, err
	}

	return &list, nil
}

func (c *Client) DeactivateUser(ctx context.Context, id string) (*entity.Ack, error) {
	var ack entity.Ack
	if err := c.doJSON(ctx, request{op: "deactivate user", method: http.MethodDelete, path: userPath(id)}, &ack); err != nil {
		return nil, err
	}

	return &ack, nil
}

func (c *Client) ActivateUser(ctx context.Context, id string) (*entity.Ack, error) {
	var ack entity.Ack
	if err := c.doJSON(ctx, request{op: "activate user", method: http.MethodPut, path: userPath(id) + "/activate"}, &ack); err != nil {
		return nil, err
	}

	return &ack, nil
}

func (c *Client) CreateUser(ctx context.Context, user entity.NewUser) (*entity.CreateUserResponse, error) {
	req, err := jsonRequest("create user", http.MethodPost, "/users/create", user)
	if err != nil {
		return nil, err
	}

	var resp entity.CreateUserResponse
	if err = c.doJSON(ctx, req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// UpdateUser sends only the fields present in patch.
func (c *Client) UpdateUser(ctx context.Context, id string, patch entity.FieldPatch) (*entity.Ack, error) {
	req, err := jsonRequest("update user", http.MethodPut, userPath(id), patch)
	if err != nil {
		return nil, err
	}

	var ack entity.Ack
	if err = c.doJSON(ctx, req, &ack); err != nil {
		return nil, err
	}

	return &ack, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, id string, role entity.Role) (*entity.Ack, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("update user role: %w", entity.ErrInvalidRole)
	}

	req, err := jsonRequest("update user role", http.MethodPut, userPath(id)+"/role", map[string]string{"role": string(role)})
	if err != nil {
		return nil, err
	}

	var ack entity.Ack
	if err = c.doJSON(ctx, req, &ack); err != nil {
		return nil, err
	}

	return &ack, nil
}

func userPath(id string) string {
	return "/users/" + url.PathEscape(id)
}
