package controllers

import (
	"context"
	"log/slog"

	"github.com/adamanr/onboarding_dashboard/internal/config"
	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/adamanr/onboarding_dashboard/internal/hrapi"
	"github.com/adamanr/onboarding_dashboard/internal/session"
)

type Controllers struct {
	AuthController *AuthController
	Workspaces     *Workspaces
}

func NewControllers(deps *Dependens) *Controllers {
	workspaces := NewWorkspaces(deps)

	return &Controllers{
		AuthController: NewAuthController(deps, workspaces),
		Workspaces:     workspaces,
	}
}

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*entity.LoginResponse, error)
}

type DirectoryAPI interface {
	ListUsers(ctx context.Context, skip, limit int) (*entity.UserList, error)
	ActivateUser(ctx context.Context, id string) (*entity.Ack, error)
	DeactivateUser(ctx context.Context, id string) (*entity.Ack, error)
	CreateUser(ctx context.Context, user entity.NewUser) (*entity.CreateUserResponse, error)
	UpdateUser(ctx context.Context, id string, patch entity.FieldPatch) (*entity.Ack, error)
	UpdateUserRole(ctx context.Context, id string, role entity.Role) (*entity.Ack, error)
}

type DocumentsAPI interface {
	ListDocumentUsers(ctx context.Context) ([]entity.EmployeeRecord, error)
	ListCategories(ctx context.Context, userID string) ([]entity.DocumentCategory, error)
	ListDocuments(ctx context.Context, userID, category string) ([]entity.DocumentRecord, error)
	UploadDocument(ctx context.Context, employeeID, category string, file hrapi.File) (*entity.DocumentRecord, error)
	DownloadDocument(ctx context.Context, documentID string) (*hrapi.Download, error)
}

// API is everything a signed-in workspace calls on the HR collaborator.
type API interface {
	DirectoryAPI
	DocumentsAPI
}

type Dependens struct {
	Auth AuthAPI
	// API returns a collaborator client bound to one session's bearer token.
	API      func(token string) API
	Sessions session.Store
	Uploads  *UploadMetrics
	Logger   *slog.Logger
	Config   *config.Config
}

// NewHRDependens wires the real HR client into the dependency bag.
func NewHRDependens(client *hrapi.Client, sessions session.Store, uploads *UploadMetrics, cfg *config.Config, logger *slog.Logger) *Dependens {
	return &Dependens{
		Auth: client,
		API: func(token string) API {
			return client.WithToken(token)
		},
		Sessions: sessions,
		Uploads:  uploads,
		Logger:   logger,
		Config:   cfg,
	}
}
