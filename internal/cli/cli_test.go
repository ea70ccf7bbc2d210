package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adamanr/onboarding_dashboard/internal/controllers"
	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hrServer answers the HR API calls the commands make.
func hrServer(t *testing.T) *httptest.Server {
	t.Helper()

	users := []entity.EmployeeRecord{
		{ID: "a", Name: "Alice Adams", Email: "alice@corp.io", Role: entity.RoleEmployee, IsActive: true, Department: "Sales"},
		{ID: "m", Name: "Mia Moss", Email: "mia@corp.io", Role: entity.RoleManager, IsActive: true, Department: "Sales"},
	}

	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req entity.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.Password != "secret" {
			write(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
			return
		}

		role := strings.SplitN(req.Email, "@", 2)[0]
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": "id-" + role,
			"exp":     time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("k"))
		require.NoError(t, err)

		write(w, http.StatusOK, entity.LoginResponse{
			AccessToken: token,
			User:        entity.LoginUser{Email: req.Email, Name: "Test " + role, Role: role},
		})
	})
	mux.HandleFunc("GET /users/list", func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, entity.UserList{Users: users, Total: len(users)})
	})
	mux.HandleFunc("POST /users/create", func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, entity.CreateUserResponse{Message: "User created successfully", UserID: "c"})
	})
	mux.HandleFunc("GET /documents/users", func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, entity.DocumentUsersResponse{Users: users})
	})
	mux.HandleFunc("GET /documents/user/a/categories", func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, entity.CategoriesResponse{Categories: []entity.DocumentCategory{{Category: "passport", DisplayName: "Passport"}}})
	})
	mux.HandleFunc("GET /documents/user/a/category/passport", func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, entity.DocumentsResponse{Documents: []entity.DocumentRecord{{ID: "d1", FileName: "scan.pdf", FileSize: 4}}})
	})
	mux.HandleFunc("POST /documents/upload", func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		require.NoError(t, err)

		if strings.HasSuffix(header.Filename, ".exe") {
			write(w, http.StatusBadRequest, map[string]string{"detail": "File type not allowed"})
			return
		}
		write(w, http.StatusOK, entity.UploadResponse{Message: "ok"})
	})
	mux.HandleFunc("GET /documents/download/d1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="scan.pdf"`)
		_, _ = io.WriteString(w, "%PDF")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

type harness struct {
	t          *testing.T
	configPath string
	sessionDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	srv := hrServer(t)
	dir := t.TempDir()
	sessionDir := filepath.Join(dir, "state")

	configPath := filepath.Join(dir, "config.toml")
	toml := fmt.Sprintf("[upstream]\nbase_url = %q\ntimeout = \"5s\"\n\n[cli]\nsession_dir = %q\n", srv.URL, sessionDir)
	require.NoError(t, os.WriteFile(configPath, []byte(toml), 0o600))

	return &harness{t: t, configPath: configPath, sessionDir: sessionDir}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(append([]string{"--config", h.configPath}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestCLI_GuardWithoutSession(t *testing.T) {
	h := newHarness(t)

	for _, args := range [][]string{
		{"whoami"},
		{"dashboard"},
		{"users", "list"},
		{"users", "create", "--name", "N"},
		{"documents", "users"},
	} {
		_, err := h.run(args...)
		assert.ErrorIs(t, err, ErrNotLoggedIn, args)
	}
}

func TestCLI_Login(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantOut   string
		expectErr string
	}{
		{
			name:    "success",
			args:    []string{"login", "-e", "manager@corp.io", "-p", "secret"},
			wantOut: "Signed in as Test manager (manager), dashboard: manager\n",
		},
		{
			name:      "rejected",
			args:      []string{"login", "-e", "manager@corp.io", "-p", "nope"},
			expectErr: "login failed: Incorrect email or password",
		},
		{
			name:      "missing password",
			args:      []string{"login", "-e", "manager@corp.io"},
			expectErr: "both --email and --password are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			out, err := h.run(tt.args...)
			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectErr, err.Error())

				_, statErr := os.Stat(filepath.Join(h.sessionDir, SessionKey+".json"))
				assert.True(t, os.IsNotExist(statErr))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, out)

			info, err := os.Stat(filepath.Join(h.sessionDir, SessionKey+".json"))
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
		})
	}
}

func TestCLI_ManagerIsForbiddenFromDirectory(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("login", "-e", "manager@corp.io", "-p", "secret")
	require.NoError(t, err)

	_, err = h.run("users", "list")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = h.run("documents", "categories", "a")
	assert.ErrorIs(t, err, ErrForbidden)

	out, err := h.run("users", "create", "--name", "New Hire", "--email", "new@corp.io", "--password", "pw")
	require.NoError(t, err)
	assert.Equal(t, "User created successfully (id c)\n", out)

	out, err = h.run("dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Dashboard: manager")
	assert.Contains(t, out, "/approvals")
	assert.NotContains(t, out, "/documents")
}

func TestCLI_HRFlow(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("login", "-e", "hr@corp.io", "-p", "secret")
	require.NoError(t, err)

	out, err := h.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "id-hr")
	assert.Contains(t, out, "hr@corp.io")

	out, err = h.run("users", "list", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice Adams")
	assert.Contains(t, out, "Mia Moss")
	assert.Contains(t, out, "Showing 2 of 2")

	out, err = h.run("users", "list", "--role", "employee")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice Adams")
	assert.NotContains(t, out, "Mia Moss")
	assert.Contains(t, out, "Showing 1 of 2")

	out, err = h.run("--json", "users", "list", "--role", "manager,hr")
	require.NoError(t, err)
	var view controllers.DirectoryView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Users, 1)
	assert.Equal(t, "m", view.Users[0].ID)
	assert.Equal(t, []entity.Role{entity.RoleManager, entity.RoleHR}, view.Roles)

	_, err = h.run("users", "list", "--role", "admin")
	assert.ErrorIs(t, err, entity.ErrInvalidRole)

	out, err = h.run("--json", "documents", "list", "a", "passport")
	require.NoError(t, err)
	var docs []entity.DocumentRecord
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "d1", docs[0].ID)

	_, err = h.run("users", "role", "a", "admin")
	assert.ErrorIs(t, err, entity.ErrInvalidRole)

	_, err = h.run("documents", "list", "a", "visa")
	assert.Error(t, err)
}

func TestCLI_UploadAndDownload(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("login", "-e", "hr@corp.io", "-p", "secret")
	require.NoError(t, err)

	dir := t.TempDir()
	good := filepath.Join(dir, "offer.pdf")
	bad := filepath.Join(dir, "setup.exe")
	require.NoError(t, os.WriteFile(good, []byte("pdf"), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("exe"), 0o600))

	out, err := h.run("documents", "upload", "a", "passport", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, out, "completed offer.pdf")
	assert.Contains(t, out, "error     setup.exe: failed to upload document: File type not allowed")

	target := filepath.Join(dir, "copy.pdf")
	out, err = h.run("documents", "download", "a", "passport", "d1", "-o", target)
	require.NoError(t, err)
	assert.Equal(t, "Saved "+target+" (4 bytes)\n", out)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(content))

	_, err = h.run("documents", "download", "a", "passport", "zz")
	assert.Error(t, err)
}

func TestCLI_Logout(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("login", "-e", "employee@corp.io", "-p", "secret")
	require.NoError(t, err)

	out, err := h.run("logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out\n", out)

	_, err = h.run("whoami")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = h.run("logout")
	assert.NoError(t, err)
}
