// Package session persists the access token and principal of a signed-in user.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
)

var (
	ErrNoSession = errors.New("no session")
	ErrExpired   = errors.New("session expired")
)

// Store keeps one session per key. Load returns ErrNoSession for a missing,
// partial or expired session.
type Store interface {
	Load(ctx context.Context, key string) (*entity.Session, error)
	Save(ctx context.Context, key string, s *entity.Session) error
	Delete(ctx context.Context, key string) error
}

func encode(s *entity.Session) ([]byte, error) {
	if !s.Complete() {
		return nil, errors.New("session must carry both token and user")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	return data, nil
}

func decode(data []byte) (*entity.Session, error) {
	var s entity.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	return &s, nil
}
