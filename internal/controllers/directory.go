package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
)

const DefaultPageLimit = 10

// recordUI is client-only state for one record. It is never sent to the collaborator.
type recordUI struct {
	expanded bool
	editing  bool
	roleMenu bool
	pending  map[string]string
}

type RecordView struct {
	entity.EmployeeRecord
	Expanded     bool              `json:"expanded"`
	Editing      bool              `json:"editing"`
	RoleMenuOpen bool              `json:"roleMenuOpen"`
	PendingEdits map[string]string `json:"pendingEdits,omitempty"`
}

// DirectoryView.Total counts the users of the collaborator, before the role filter.
type DirectoryView struct {
	Users []RecordView  `json:"users"`
	Total int           `json:"total"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
	Roles []entity.Role `json:"roles,omitempty"`
}

// Directory lists users and applies HR mutations. Every successful mutation is
// followed by a reload with the last paging; records are never patched in place.
type Directory struct {
	api    DirectoryAPI
	logger *slog.Logger

	mu      sync.Mutex
	listGen uint64
	skip    int
	limit   int
	roles   []entity.Role
	records []entity.EmployeeRecord
	total   int
	ui      map[string]*recordUI
}

func NewDirectory(api DirectoryAPI, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}

	return &Directory{
		api:    api,
		logger: logger,
		limit:  DefaultPageLimit,
		ui:     make(map[string]*recordUI),
	}
}

// List loads one page. With roles set only records holding one of them are kept;
// the filter sticks for the reloads that follow mutations.
func (d *Directory) List(ctx context.Context, skip, limit int, roles ...entity.Role) ([]entity.EmployeeRecord, error) {
	for _, role := range roles {
		if !role.Valid() {
			return nil, fmt.Errorf("%w: %q", entity.ErrInvalidRole, role)
		}
	}

	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	d.mu.Lock()
	d.listGen++
	gen := d.listGen
	d.skip, d.limit = skip, limit
	d.roles = slices.Clone(roles)
	d.mu.Unlock()

	list, err := d.api.ListUsers(ctx, skip, limit)

	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.listGen {
		return nil, ErrSuperseded
	}
	if err != nil {
		d.logger.Warn("Error listing users", slog.String("error", err.Error()))
		return nil, err
	}

	d.records = list.Users
	if len(roles) > 0 {
		d.records = slices.DeleteFunc(slices.Clone(list.Users), func(r entity.EmployeeRecord) bool {
			return !slices.Contains(roles, r.Role)
		})
	}
	d.total = list.Total

	return slices.Clone(d.records), nil
}

func (d *Directory) reload(ctx context.Context) error {
	d.mu.Lock()
	skip, limit, roles := d.skip, d.limit, d.roles
	d.mu.Unlock()

	if _, err := d.List(ctx, skip, limit, roles...); err != nil && !errors.Is(err, ErrSuperseded) {
		return fmt.Errorf("reload users: %w", err)
	}

	return nil
}

// SetActive calls activate or deactivate depending on active.
func (d *Directory) SetActive(ctx context.Context, id string, active bool) (*entity.Ack, error) {
	call := d.api.DeactivateUser
	if active {
		call = d.api.ActivateUser
	}

	ack, err := call(ctx, id)
	if err != nil {
		d.logger.Warn("Error changing user status", slog.String("id", id), slog.Bool("active", active), slog.String("error", err.Error()))
		return nil, err
	}

	return ack, d.reload(ctx)
}

// UpdateFields sends the pending edits of id and nothing else. Once the collaborator
// accepts them the sent values leave the buffer; edits made while the call was in
// flight stay pending and keep the record in edit mode.
func (d *Directory) UpdateFields(ctx context.Context, id string) (*entity.Ack, error) {
	d.mu.Lock()
	var patch entity.FieldPatch
	if state, ok := d.ui[id]; ok && len(state.pending) > 0 {
		patch = maps.Clone(state.pending)
	}
	d.mu.Unlock()

	if len(patch) == 0 {
		d.CancelEditing(id)
		return &entity.Ack{Message: "no changes"}, nil
	}

	ack, err := d.api.UpdateUser(ctx, id, patch)
	if err != nil {
		d.logger.Warn("Error updating user", slog.String("id", id), slog.String("error", err.Error()))
		return nil, err
	}

	d.mu.Lock()
	if state, ok := d.ui[id]; ok {
		maps.DeleteFunc(state.pending, func(field, value string) bool {
			sent, ok := patch[field]
			return ok && sent == value
		})
		if len(state.pending) == 0 {
			state.pending = nil
			state.editing = false
		}
	}
	d.mu.Unlock()

	return ack, d.reload(ctx)
}

func (d *Directory) ChangeRole(ctx context.Context, id string, role entity.Role) (*entity.Ack, error) {
	if !role.Valid() {
		return nil, entity.ErrInvalidRole
	}

	ack, err := d.api.UpdateUserRole(ctx, id, role)
	if err != nil {
		d.logger.Warn("Error changing user role", slog.String("id", id), slog.String("error", err.Error()))
		return nil, err
	}

	d.mu.Lock()
	if state, ok := d.ui[id]; ok {
		state.roleMenu = false
	}
	d.mu.Unlock()

	return ack, d.reload(ctx)
}

func (d *Directory) Create(ctx context.Context, user entity.NewUser) (*entity.CreateUserResponse, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	resp, err := d.api.CreateUser(ctx, user)
	if err != nil {
		d.logger.Warn("Error creating user", slog.String("email", user.Email), slog.String("error", err.Error()))
		return nil, err
	}

	// Managers may create users without being allowed to list them.
	if err = d.reload(ctx); err != nil {
		d.logger.Warn("Error reloading users after create", slog.String("error", err.Error()))
	}

	return resp, nil
}

// state returns the UI state of a loaded record. mu must be held.
func (d *Directory) state(id string) (*recordUI, error) {
	if !slices.ContainsFunc(d.records, func(r entity.EmployeeRecord) bool { return r.ID == id }) {
		return nil, ErrRecordNotLoaded
	}

	state, ok := d.ui[id]
	if !ok {
		state = &recordUI{}
		d.ui[id] = state
	}

	return state, nil
}

func (d *Directory) ToggleExpanded(id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, err := d.state(id)
	if err != nil {
		return false, err
	}

	state.expanded = !state.expanded
	return state.expanded, nil
}

// ToggleEditing leaving edit mode drops the pending edits of that record.
func (d *Directory) ToggleEditing(id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, err := d.state(id)
	if err != nil {
		return false, err
	}

	state.editing = !state.editing
	if !state.editing {
		state.pending = nil
	}

	return state.editing, nil
}

func (d *Directory) ToggleRoleMenu(id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, err := d.state(id)
	if err != nil {
		return false, err
	}

	state.roleMenu = !state.roleMenu
	return state.roleMenu, nil
}

// SetPendingEdit buffers one field value for id. The record enters edit mode.
func (d *Directory) SetPendingEdit(id, field, value string) error {
	if err := entity.ValidateField(field); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	state, err := d.state(id)
	if err != nil {
		return err
	}

	if state.pending == nil {
		state.pending = make(map[string]string)
	}
	state.pending[field] = value
	state.editing = true

	return nil
}

func (d *Directory) CancelEditing(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if state, ok := d.ui[id]; ok {
		state.editing = false
		state.pending = nil
	}
}

func (d *Directory) View() DirectoryView {
	d.mu.Lock()
	defer d.mu.Unlock()

	view := DirectoryView{
		Users: make([]RecordView, 0, len(d.records)),
		Total: d.total,
		Skip:  d.skip,
		Limit: d.limit,
		Roles: slices.Clone(d.roles),
	}

	for _, rec := range d.records {
		rv := RecordView{EmployeeRecord: rec}
		if state, ok := d.ui[rec.ID]; ok {
			rv.Expanded = state.expanded
			rv.Editing = state.editing
			rv.RoleMenuOpen = state.roleMenu
			rv.PendingEdits = maps.Clone(state.pending)
		}
		view.Users = append(view.Users, rv)
	}

	return view
}
