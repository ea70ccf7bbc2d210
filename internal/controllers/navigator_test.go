package controllers

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/adamanr/onboarding_dashboard/internal/hrapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	categoriesA = []entity.DocumentCategory{{Category: "passport", DisplayName: "Passport"}}
	categoriesB = []entity.DocumentCategory{
		{Category: "contract", DisplayName: "Contract"},
		{Category: "id_copy", DisplayName: "Id Copy"},
	}
	contractDocs = []entity.DocumentRecord{{ID: "d1", EmployeeID: "b", Category: "contract", FileName: "contract.pdf"}}
)

func newLoadedNavigator(t *testing.T, api *MockAPI) *Navigator {
	t.Helper()

	api.On("ListDocumentUsers", mock.Anything).Return(testUsers(), nil).Once()

	nav := NewNavigator(api, testLogger())
	require.NoError(t, nav.LoadUsers(context.Background()))

	return nav
}

func TestNavigator_DrillDownAndBack(t *testing.T) {
	api := new(MockAPI)
	nav := newLoadedNavigator(t, api)
	ctx := context.Background()

	api.On("ListCategories", mock.Anything, "b").Return(categoriesB, nil).Once()
	api.On("ListDocuments", mock.Anything, "b", "contract").Return(contractDocs, nil).Once()

	assert.Equal(t, LevelNone, nav.View().Level)
	assert.Len(t, nav.View().Users, 2)

	require.NoError(t, nav.SelectUser(ctx, "b"))
	view := nav.View()
	assert.Equal(t, LevelUser, view.Level)
	assert.Equal(t, "b", view.User.ID)
	assert.Equal(t, categoriesB, view.Categories)
	assert.Nil(t, view.Category)

	require.NoError(t, nav.SelectCategory(ctx, "contract"))
	view = nav.View()
	assert.Equal(t, LevelCategory, view.Level)
	assert.Equal(t, "contract", view.Category.Category)
	assert.Equal(t, contractDocs, view.Documents)
	assert.False(t, view.Uploading)

	nav.Back()
	view = nav.View()
	assert.Equal(t, LevelUser, view.Level)
	assert.Equal(t, categoriesB, view.Categories)
	assert.Nil(t, view.Category)
	assert.Empty(t, view.Documents)

	nav.Back()
	view = nav.View()
	assert.Equal(t, LevelNone, view.Level)
	assert.Nil(t, view.User)
	assert.Empty(t, view.Categories)

	api.AssertExpectations(t)
}

func TestNavigator_BackAtRootIsNoop(t *testing.T) {
	api := new(MockAPI)
	nav := newLoadedNavigator(t, api)

	before := nav.View()
	nav.Back()
	nav.Back()

	assert.Equal(t, before, nav.View())
}

func TestNavigator_SelectCategoryResetsUploadView(t *testing.T) {
	api := new(MockAPI)
	nav := newLoadedNavigator(t, api)
	ctx := context.Background()

	api.On("ListCategories", mock.Anything, "b").Return(categoriesB, nil)
	api.On("ListDocuments", mock.Anything, "b", "contract").Return(contractDocs, nil)
	api.On("ListDocuments", mock.Anything, "b", "id_copy").Return([]entity.DocumentRecord{}, nil)

	require.NoError(t, nav.SelectUser(ctx, "b"))
	require.NoError(t, nav.SelectCategory(ctx, "contract"))

	uploading, err := nav.ToggleUploadView()
	require.NoError(t, err)
	assert.True(t, uploading)
	assert.Equal(t, contractDocs, nav.View().Documents)

	require.NoError(t, nav.SelectCategory(ctx, "id_copy"))
	assert.False(t, nav.View().Uploading)
}

func TestNavigator_InvariantViolations(t *testing.T) {
	api := new(MockAPI)
	nav := newLoadedNavigator(t, api)
	ctx := context.Background()

	assert.ErrorIs(t, nav.SelectCategory(ctx, "contract"), ErrNoUserSelected)
	assert.ErrorIs(t, nav.RefreshDocuments(ctx), ErrNoCategorySelected)

	_, err := nav.ToggleUploadView()
	assert.ErrorIs(t, err, ErrNoCategorySelected)

	_, err = nav.Download(ctx, "d1")
	assert.ErrorIs(t, err, ErrNoCategorySelected)

	assert.ErrorIs(t, nav.SelectUser(ctx, "zz"), ErrUnknownUser)

	api.On("ListCategories", mock.Anything, "a").Return(categoriesA, nil)
	require.NoError(t, nav.SelectUser(ctx, "a"))
	assert.ErrorIs(t, nav.SelectCategory(ctx, "contract"), ErrUnknownCategory)
	assert.ErrorIs(t, nav.RefreshDocuments(ctx), ErrNoCategorySelected)

	api.AssertNotCalled(t, "ListDocuments", mock.Anything, mock.Anything, mock.Anything)
}

func TestNavigator_FailedFetchKeepsPreviousState(t *testing.T) {
	api := new(MockAPI)
	nav := newLoadedNavigator(t, api)
	ctx := context.Background()

	fetchErr := &hrapi.FetchError{Op: "fetch user document categories", StatusCode: 500, Detail: "db down"}
	api.On("ListCategories", mock.Anything, "a").Return(categoriesA, nil)
	api.On("ListCategories", mock.Anything, "b").Return(nil, fetchErr)
	api.On("ListDocuments", mock.Anything, "a", "passport").Return(nil, fetchErr)

	require.NoError(t, nav.SelectUser(ctx, "a"))

	err := nav.SelectUser(ctx, "b")
	var got *hrapi.FetchError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "db down", got.Detail)

	view := nav.View()
	assert.Equal(t, LevelUser, view.Level)
	assert.Equal(t, "a", view.User.ID)
	assert.Equal(t, categoriesA, view.Categories)

	assert.Error(t, nav.SelectCategory(ctx, "passport"))
	assert.Equal(t, LevelUser, nav.View().Level)
}

func TestNavigator_StaleCategoriesDoNotOverwrite(t *testing.T) {
	api := new(MockAPI)
	nav := newLoadedNavigator(t, api)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})

	api.On("ListCategories", mock.Anything, "a").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(categoriesA, nil).Once()
	api.On("ListCategories", mock.Anything, "b").Return(categoriesB, nil).Once()

	errA := make(chan error, 1)
	go func() { errA <- nav.SelectUser(ctx, "a") }()

	<-started
	require.NoError(t, nav.SelectUser(ctx, "b"))
	close(release)

	assert.ErrorIs(t, <-errA, ErrSuperseded)

	view := nav.View()
	assert.Equal(t, "b", view.User.ID)
	assert.Equal(t, categoriesB, view.Categories)
}

func TestNavigator_StaleFetchIsCancelled(t *testing.T) {
	api := new(MockAPI)
	nav := newLoadedNavigator(t, api)
	ctx := context.Background()

	started := make(chan struct{})
	cancelled := make(chan struct{})

	api.On("ListCategories", mock.Anything, "a").Run(func(args mock.Arguments) {
		fetchCtx := args.Get(0).(context.Context)
		close(started)
		<-fetchCtx.Done()
		close(cancelled)
	}).Return(nil, context.Canceled).Once()
	api.On("ListCategories", mock.Anything, "b").Return(categoriesB, nil).Once()

	errA := make(chan error, 1)
	go func() { errA <- nav.SelectUser(ctx, "a") }()

	<-started
	require.NoError(t, nav.SelectUser(ctx, "b"))

	<-cancelled
	assert.ErrorIs(t, <-errA, ErrSuperseded)
	assert.Equal(t, "b", nav.View().User.ID)
}

func TestNavigator_BackDropsInFlightDocuments(t *testing.T) {
	api := new(MockAPI)
	nav := newLoadedNavigator(t, api)
	ctx := context.Background()

	api.On("ListCategories", mock.Anything, "b").Return(categoriesB, nil)
	require.NoError(t, nav.SelectUser(ctx, "b"))

	started := make(chan struct{})
	release := make(chan struct{})
	api.On("ListDocuments", mock.Anything, "b", "contract").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(contractDocs, nil).Once()

	errDocs := make(chan error, 1)
	go func() { errDocs <- nav.SelectCategory(ctx, "contract") }()

	<-started
	nav.Back()
	close(release)

	assert.ErrorIs(t, <-errDocs, ErrSuperseded)
	view := nav.View()
	assert.Equal(t, LevelNone, view.Level)
	assert.Empty(t, view.Documents)
}

func TestNavigator_RefreshAndDownload(t *testing.T) {
	api := new(MockAPI)
	nav := newLoadedNavigator(t, api)
	ctx := context.Background()

	refreshed := []entity.DocumentRecord{contractDocs[0], {ID: "d2", FileName: "addendum.pdf"}}

	api.On("ListCategories", mock.Anything, "b").Return(categoriesB, nil)
	api.On("ListDocuments", mock.Anything, "b", "contract").Return(contractDocs, nil).Once()
	api.On("ListDocuments", mock.Anything, "b", "contract").Return(refreshed, nil).Once()
	api.On("DownloadDocument", mock.Anything, "d2").Return(&hrapi.Download{
		Body:     io.NopCloser(strings.NewReader("pdf")),
		FileName: "addendum.pdf",
	}, nil)

	require.NoError(t, nav.SelectUser(ctx, "b"))
	require.NoError(t, nav.SelectCategory(ctx, "contract"))
	_, err := nav.ToggleUploadView()
	require.NoError(t, err)

	require.NoError(t, nav.RefreshDocuments(ctx))
	view := nav.View()
	assert.Len(t, view.Documents, 2)
	assert.True(t, view.Uploading)

	download, err := nav.Download(ctx, "d2")
	require.NoError(t, err)
	assert.Equal(t, "addendum.pdf", download.FileName)

	_, err = nav.Download(ctx, "other")
	assert.True(t, errors.Is(err, ErrUnknownDocument))

	employeeID, category, err := nav.Target()
	require.NoError(t, err)
	assert.Equal(t, "b", employeeID)
	assert.Equal(t, "contract", category)
}
