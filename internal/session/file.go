package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
)

const appDir = "onboardctl"

// FileStore keeps sessions as <dir>/<key>.json, readable only by the owner.
type FileStore struct {
	dir string
	now func() time.Time
}

// DefaultDir is $XDG_CONFIG_HOME/onboardctl, or the platform equivalent.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}

	return filepath.Join(base, appDir), nil
}

// NewFileStore uses DefaultDir when dir is empty.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir %s: %w", dir, err)
	}

	return &FileStore{dir: dir, now: time.Now}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid session key %q", key)
	}

	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileStore) Save(_ context.Context, key string, sess *entity.Session) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if sess.Expired(s.now()) {
		return ErrExpired
	}

	data, err := encode(sess)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	if err = os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session: %w", err)
	}

	return nil
}

func (s *FileStore) Load(ctx context.Context, key string) (*entity.Session, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}

		return nil, fmt.Errorf("read session: %w", err)
	}

	sess, err := decode(data)
	if err != nil || !sess.Complete() || sess.Expired(s.now()) {
		if delErr := s.Delete(ctx, key); delErr != nil {
			return nil, delErr
		}

		return nil, ErrNoSession
	}

	return sess, nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}

	return nil
}
