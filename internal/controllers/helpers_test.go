package controllers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/adamanr/onboarding_dashboard/internal/config"
	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/adamanr/onboarding_dashboard/internal/hrapi"
	"github.com/stretchr/testify/mock"
)

// MockAPI represents a mock HR collaborator client.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Login(ctx context.Context, email, password string) (*entity.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*entity.LoginResponse)
	return resp, args.Error(1)
}

func (m *MockAPI) ListUsers(ctx context.Context, skip, limit int) (*entity.UserList, error) {
	args := m.Called(ctx, skip, limit)
	list, _ := args.Get(0).(*entity.UserList)
	return list, args.Error(1)
}

func (m *MockAPI) ActivateUser(ctx context.Context, id string) (*entity.Ack, error) {
	args := m.Called(ctx, id)
	ack, _ := args.Get(0).(*entity.Ack)
	return ack, args.Error(1)
}

func (m *MockAPI) DeactivateUser(ctx context.Context, id string) (*entity.Ack, error) {
	args := m.Called(ctx, id)
	ack, _ := args.Get(0).(*entity.Ack)
	return ack, args.Error(1)
}

func (m *MockAPI) CreateUser(ctx context.Context, user entity.NewUser) (*entity.CreateUserResponse, error) {
	args := m.Called(ctx, user)
	resp, _ := args.Get(0).(*entity.CreateUserResponse)
	return resp, args.Error(1)
}

func (m *MockAPI) UpdateUser(ctx context.Context, id string, patch entity.FieldPatch) (*entity.Ack, error) {
	args := m.Called(ctx, id, patch)
	ack, _ := args.Get(0).(*entity.Ack)
	return ack, args.Error(1)
}

func (m *MockAPI) UpdateUserRole(ctx context.Context, id string, role entity.Role) (*entity.Ack, error) {
	args := m.Called(ctx, id, role)
	ack, _ := args.Get(0).(*entity.Ack)
	return ack, args.Error(1)
}

func (m *MockAPI) ListDocumentUsers(ctx context.Context) ([]entity.EmployeeRecord, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]entity.EmployeeRecord)
	return users, args.Error(1)
}

func (m *MockAPI) ListCategories(ctx context.Context, userID string) ([]entity.DocumentCategory, error) {
	args := m.Called(ctx, userID)
	categories, _ := args.Get(0).([]entity.DocumentCategory)
	return categories, args.Error(1)
}

func (m *MockAPI) ListDocuments(ctx context.Context, userID, category string) ([]entity.DocumentRecord, error) {
	args := m.Called(ctx, userID, category)
	docs, _ := args.Get(0).([]entity.DocumentRecord)
	return docs, args.Error(1)
}

func (m *MockAPI) UploadDocument(ctx context.Context, employeeID, category string, file hrapi.File) (*entity.DocumentRecord, error) {
	args := m.Called(ctx, employeeID, category, file)
	doc, _ := args.Get(0).(*entity.DocumentRecord)
	return doc, args.Error(1)
}

func (m *MockAPI) DownloadDocument(ctx context.Context, documentID string) (*hrapi.Download, error) {
	args := m.Called(ctx, documentID)
	download, _ := args.Get(0).(*hrapi.Download)
	return download, args.Error(1)
}

// MockStore represents a mock session store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context, key string) (*entity.Session, error) {
	args := m.Called(ctx, key)
	sess, _ := args.Get(0).(*entity.Session)
	return sess, args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, key string, s *entity.Session) error {
	args := m.Called(ctx, key, s)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// fakeDirectory behaves like the collaborator's user endpoints over an in-memory table.
type fakeDirectory struct {
	mu      sync.Mutex
	records []entity.EmployeeRecord
	patches map[string][]entity.FieldPatch
	lists   int
}

func newFakeDirectory(records ...entity.EmployeeRecord) *fakeDirectory {
	return &fakeDirectory{records: records, patches: make(map[string][]entity.FieldPatch)}
}

func (f *fakeDirectory) find(id string) (*entity.EmployeeRecord, error) {
	idx := slices.IndexFunc(f.records, func(r entity.EmployeeRecord) bool { return r.ID == id })
	if idx < 0 {
		return nil, &hrapi.FetchError{Op: "find user", StatusCode: 404, Detail: "User not found"}
	}

	return &f.records[idx], nil
}

func (f *fakeDirectory) ListUsers(_ context.Context, skip, limit int) (*entity.UserList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lists++
	end := min(skip+limit, len(f.records))
	if skip > end {
		skip = end
	}

	return &entity.UserList{Users: slices.Clone(f.records[skip:end]), Total: len(f.records)}, nil
}

func (f *fakeDirectory) ActivateUser(_ context.Context, id string) (*entity.Ack, error) {
	return f.setActive(id, true)
}

func (f *fakeDirectory) DeactivateUser(_ context.Context, id string) (*entity.Ack, error) {
	return f.setActive(id, false)
}

func (f *fakeDirectory) setActive(id string, active bool) (*entity.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.find(id)
	if err != nil {
		return nil, err
	}
	rec.IsActive = active

	return &entity.Ack{Message: "User status updated"}, nil
}

func (f *fakeDirectory) CreateUser(_ context.Context, user entity.NewUser) (*entity.CreateUserResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := fmt.Sprintf("u%d", len(f.records)+1)
	f.records = append(f.records, entity.EmployeeRecord{ID: id, Name: user.Name, Email: user.Email, Role: user.Role, IsActive: true})

	return &entity.CreateUserResponse{Message: "User created successfully", UserID: id}, nil
}

func (f *fakeDirectory) UpdateUser(_ context.Context, id string, patch entity.FieldPatch) (*entity.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.find(id)
	if err != nil {
		return nil, err
	}

	f.patches[id] = append(f.patches[id], patch)
	if v, ok := patch["name"]; ok {
		rec.Name = v
	}
	if v, ok := patch["phone"]; ok {
		rec.Phone = entity.FlexString(v)
	}

	return &entity.Ack{Message: "User updated successfully"}, nil
}

func (f *fakeDirectory) UpdateUserRole(_ context.Context, id string, role entity.Role) (*entity.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.find(id)
	if err != nil {
		return nil, err
	}
	rec.Role = role

	return &entity.Ack{Message: "User role updated"}, nil
}

// Test helper functions.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func CreateTestDependencies(api *MockAPI, store *MockStore) *Dependens {
	cfg := &config.Config{}
	cfg.Session.TTL = time.Hour

	return &Dependens{
		Auth: api,
		API: func(_ string) API {
			return api
		},
		Sessions: store,
		Logger:   testLogger(),
		Config:   cfg,
	}
}

func testUsers() []entity.EmployeeRecord {
	return []entity.EmployeeRecord{
		{ID: "a", Name: "Alice Adams", Email: "alice@corp.io", Role: entity.RoleEmployee, IsActive: true},
		{ID: "b", Name: "Bob Brown", Email: "bob@corp.io", Role: entity.RoleEmployee, IsActive: true},
	}
}

func testSession(role entity.Role) *entity.Session {
	return &entity.Session{Token: "tok", User: &entity.Principal{ID: "me", Email: "me@corp.io", Role: role}}
}
