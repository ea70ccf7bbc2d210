package controllers

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/adamanr/onboarding_dashboard/internal/hrapi"
)

type Level int

const (
	LevelNone Level = iota
	LevelUser
	LevelCategory
)

func (l Level) String() string {
	switch l {
	case LevelUser:
		return "user"
	case LevelCategory:
		return "category"
	default:
		return "none"
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*l = LevelNone
	case "user":
		*l = LevelUser
	case "category":
		*l = LevelCategory
	default:
		return errors.New("unknown navigation level " + strconv.Quote(string(text)))
	}

	return nil
}

// userSelection holds everything fetched for the selected employee. A category
// can only exist inside one.
type userSelection struct {
	user       entity.EmployeeRecord
	categories []entity.DocumentCategory
	category   *categorySelection
}

type categorySelection struct {
	category  entity.DocumentCategory
	documents []entity.DocumentRecord
	uploading bool
}

// NavigatorView is a copy of the navigator state safe to hand out.
type NavigatorView struct {
	Level      Level                     `json:"level"`
	Users      []entity.EmployeeRecord   `json:"users"`
	User       *entity.EmployeeRecord    `json:"user,omitempty"`
	Categories []entity.DocumentCategory `json:"categories,omitempty"`
	Category   *entity.DocumentCategory  `json:"category,omitempty"`
	Documents  []entity.DocumentRecord   `json:"documents,omitempty"`
	Uploading  bool                      `json:"uploading"`
}

// Navigator drills from employees to their document categories to the documents
// of one category. Fetches run outside the lock; each transition bumps the
// generation and cancels the fetch of the state being left, and a fetch only
// applies its result if the generation is unchanged.
type Navigator struct {
	api    DocumentsAPI
	logger *slog.Logger

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	usersGen  uint64
	users     []entity.EmployeeRecord
	selection *userSelection
}

func NewNavigator(api DocumentsAPI, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Navigator{api: api, logger: logger}
}

// begin must be called with mu held.
func (n *Navigator) begin(ctx context.Context) (context.Context, context.CancelFunc, uint64) {
	if n.cancel != nil {
		n.cancel()
	}

	n.gen++
	fetchCtx, cancel := context.WithCancel(ctx)
	n.cancel = cancel

	return fetchCtx, cancel, n.gen
}

// settle must be called with mu held after a fetch returns.
func (n *Navigator) settle(gen uint64, err error) error {
	if gen != n.gen {
		return ErrSuperseded
	}

	n.cancel = nil
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return ErrSuperseded
		}

		return err
	}

	return nil
}

// LoadUsers fetches the employees that documents can be browsed for. It does not
// touch the current selection.
func (n *Navigator) LoadUsers(ctx context.Context) error {
	n.mu.Lock()
	n.usersGen++
	gen := n.usersGen
	n.mu.Unlock()

	users, err := n.api.ListDocumentUsers(ctx)

	n.mu.Lock()
	defer n.mu.Unlock()

	if gen != n.usersGen {
		return ErrSuperseded
	}
	if err != nil {
		n.logger.Warn("Error loading document users", slog.String("error", err.Error()))
		return err
	}

	n.users = users
	return nil
}

// SelectUser moves to the user level. On failure the navigator stays where it was.
func (n *Navigator) SelectUser(ctx context.Context, userID string) error {
	n.mu.Lock()
	idx := slices.IndexFunc(n.users, func(u entity.EmployeeRecord) bool { return u.ID == userID })
	if idx < 0 {
		n.mu.Unlock()
		return ErrUnknownUser
	}
	user := n.users[idx]
	fetchCtx, cancel, gen := n.begin(ctx)
	n.mu.Unlock()
	defer cancel()

	categories, err := n.api.ListCategories(fetchCtx, user.ID)

	n.mu.Lock()
	defer n.mu.Unlock()

	if err = n.settle(gen, err); err != nil {
		n.logFetch("categories", user.ID, err)
		return err
	}

	n.selection = &userSelection{user: user, categories: categories}
	return nil
}

// SelectCategory moves to the category level in viewing mode.
func (n *Navigator) SelectCategory(ctx context.Context, category string) error {
	n.mu.Lock()
	if n.selection == nil {
		n.mu.Unlock()
		return ErrNoUserSelected
	}

	idx := slices.IndexFunc(n.selection.categories, func(c entity.DocumentCategory) bool { return c.Category == category })
	if idx < 0 {
		n.mu.Unlock()
		return ErrUnknownCategory
	}
	userID := n.selection.user.ID
	selected := n.selection.categories[idx]
	fetchCtx, cancel, gen := n.begin(ctx)
	n.mu.Unlock()
	defer cancel()

	documents, err := n.api.ListDocuments(fetchCtx, userID, selected.Category)

	n.mu.Lock()
	defer n.mu.Unlock()

	if err = n.settle(gen, err); err != nil {
		n.logFetch("documents", userID, err)
		return err
	}

	n.selection.category = &categorySelection{category: selected, documents: documents}
	return nil
}

// Back discards the deepest level. At the root it does nothing.
func (n *Navigator) Back() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.selection == nil {
		return
	}

	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
	n.gen++

	if n.selection.category != nil {
		n.selection.category = nil
		return
	}

	n.selection = nil
}

// RefreshDocuments refetches the documents of the current category, keeping the
// upload toggle as it is.
func (n *Navigator) RefreshDocuments(ctx context.Context) error {
	n.mu.Lock()
	if n.selection == nil || n.selection.category == nil {
		n.mu.Unlock()
		return ErrNoCategorySelected
	}
	userID := n.selection.user.ID
	category := n.selection.category.category.Category
	fetchCtx, cancel, gen := n.begin(ctx)
	n.mu.Unlock()
	defer cancel()

	documents, err := n.api.ListDocuments(fetchCtx, userID, category)

	n.mu.Lock()
	defer n.mu.Unlock()

	if err = n.settle(gen, err); err != nil {
		n.logFetch("documents", userID, err)
		return err
	}

	n.selection.category.documents = documents
	return nil
}

// ToggleUploadView flips between viewing and uploading without dropping documents.
func (n *Navigator) ToggleUploadView() (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.selection == nil || n.selection.category == nil {
		return false, ErrNoCategorySelected
	}

	n.selection.category.uploading = !n.selection.category.uploading
	return n.selection.category.uploading, nil
}

// Target is the (employee, category) pair uploads go to.
func (n *Navigator) Target() (string, string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.selection == nil || n.selection.category == nil {
		return "", "", ErrNoCategorySelected
	}

	return n.selection.user.ID, n.selection.category.category.Category, nil
}

// Download streams one document of the current category.
func (n *Navigator) Download(ctx context.Context, documentID string) (*hrapi.Download, error) {
	n.mu.Lock()
	if n.selection == nil || n.selection.category == nil {
		n.mu.Unlock()
		return nil, ErrNoCategorySelected
	}
	known := slices.ContainsFunc(n.selection.category.documents, func(d entity.DocumentRecord) bool { return d.ID == documentID })
	n.mu.Unlock()

	if !known {
		return nil, ErrUnknownDocument
	}

	return n.api.DownloadDocument(ctx, documentID)
}

func (n *Navigator) View() NavigatorView {
	n.mu.Lock()
	defer n.mu.Unlock()

	view := NavigatorView{
		Level: LevelNone,
		Users: slices.Clone(n.users),
	}

	if n.selection == nil {
		return view
	}

	user := n.selection.user
	view.Level = LevelUser
	view.User = &user
	view.Categories = slices.Clone(n.selection.categories)

	if c := n.selection.category; c != nil {
		category := c.category
		view.Level = LevelCategory
		view.Category = &category
		view.Documents = slices.Clone(c.documents)
		view.Uploading = c.uploading
	}

	return view
}

func (n *Navigator) logFetch(what, userID string, err error) {
	if errors.Is(err, ErrSuperseded) {
		n.logger.Debug("Dropped stale "+what+" response", slog.String("user_id", userID))
		return
	}

	n.logger.Warn("Error fetching "+what, slog.String("user_id", userID), slog.String("error", err.Error()))
}
