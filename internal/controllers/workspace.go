package controllers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/adamanr/onboarding_dashboard/internal/hrapi"
)

// Workspace is the transient UI state of one session.
type Workspace struct {
	token     string
	expiresAt time.Time

	Navigator *Navigator
	Directory *Directory
	Uploader  *BatchUploader
}

// Upload sends files into the navigator's current (employee, category) and
// refreshes its documents after every accepted file.
func (w *Workspace) Upload(ctx context.Context, files []hrapi.File, onProgress func(UploadItem)) ([]UploadItem, error) {
	employeeID, category, err := w.Navigator.Target()
	if err != nil {
		return nil, err
	}

	return w.Uploader.Upload(ctx, UploadBatch{
		EmployeeID: employeeID,
		Category:   category,
		Files:      files,
		OnProgress: onProgress,
		OnSuccess: func(ctx context.Context, _ entity.DocumentRecord) error {
			return w.Navigator.RefreshDocuments(ctx)
		},
	})
}

// Workspaces keeps one Workspace per session key, in memory only.
// Workspaces whose session has expired are swept on Get.
type Workspaces struct {
	deps *Dependens
	now  func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewWorkspaces(deps *Dependens) *Workspaces {
	return &Workspaces{deps: deps, now: time.Now, items: make(map[string]*Workspace)}
}

// Get returns the workspace of key, starting a fresh one when the session token changed.
func (w *Workspaces) Get(key string, s *entity.Session) *Workspace {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.sweep(now)

	expiresAt := s.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(w.deps.Config.Session.TTL)
	}

	if ws, ok := w.items[key]; ok && ws.token == s.Token {
		ws.expiresAt = expiresAt
		return ws
	}

	api := w.deps.API(s.Token)
	logger := w.deps.Logger.With(slog.String("session_user", s.User.Email))

	ws := &Workspace{
		token:     s.Token,
		expiresAt: expiresAt,
		Navigator: NewNavigator(api, logger),
		Directory: NewDirectory(api, logger),
		Uploader:  NewBatchUploader(api, w.deps.Uploads, logger),
	}
	w.items[key] = ws

	return ws
}

// sweep must be called with mu held.
func (w *Workspaces) sweep(now time.Time) {
	for key, ws := range w.items {
		if now.After(ws.expiresAt) {
			delete(w.items, key)
		}
	}
}

func (w *Workspaces) Drop(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.items, key)
}

func (w *Workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.items)
}
