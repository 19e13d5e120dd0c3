package service

import (
	"context"
	"testing"

	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetVisible(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListVisible(ctx context.Context, viewerID uint, page models.Page) ([]models.Post, int64, error) {
	args := m.Called(ctx, viewerID, page)
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) ListByUser(ctx context.Context, authorID, viewerID uint, page models.Page) ([]models.Post, int64, error) {
	args := m.Called(ctx, authorID, viewerID, page)
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) ListByCategory(ctx context.Context, categoryType string, viewerID uint, page models.Page) ([]models.Post, int64, error) {
	args := m.Called(ctx, categoryType, viewerID, page)
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) UpdateText(ctx context.Context, post *models.Post, text string) error {
	args := m.Called(ctx, post, text)
	return args.Error(0)
}

func (m *MockPostRepository) SetVisibility(ctx context.Context, post *models.Post, visible bool) error {
	args := m.Called(ctx, post, visible)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) FindOrCreateCategory(ctx context.Context, categoryType string) (*models.PostCategory, error) {
	args := m.Called(ctx, categoryType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostCategory), args.Error(1)
}

func TestPostService_UpdatePost(t *testing.T) {
	owner := models.Actor{ID: 1, FirstName: "Olive", LastName: "Owner"}
	other := models.Actor{ID: 2}

	tests := []struct {
		name      string
		actor     models.Actor
		mockSetup func(m *MockPostRepository)
		wantKind  models.ErrorKind
		wantErr   bool
	}{
		{
			name:  "Missing post is NotFound",
			actor: other,
			mockSetup: func(m *MockPostRepository) {
				m.On("GetByID", mock.Anything, uint(9)).Return(nil, models.NewNotFoundError("Post", 9))
			},
			wantKind: models.KindNotFound,
			wantErr:  true,
		},
		{
			name:  "Non-owner is Forbidden",
			actor: other,
			mockSetup: func(m *MockPostRepository) {
				m.On("GetByID", mock.Anything, uint(9)).Return(&models.Post{ID: 9, UserID: 1}, nil)
			},
			wantKind: models.KindForbidden,
			wantErr:  true,
		},
		{
			name:  "Owner updates",
			actor: owner,
			mockSetup: func(m *MockPostRepository) {
				m.On("GetByID", mock.Anything, uint(9)).Return(&models.Post{ID: 9, UserID: 1}, nil)
				m.On("UpdateText", mock.Anything, mock.Anything, "new text").Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPostRepository)
			tt.mockSetup(repo)
			svc := NewPostService(repo, nil, nil)

			post, err := svc.UpdatePost(context.Background(), tt.actor, 9, "new text")
			if tt.wantErr {
				assertKind(t, err, tt.wantKind)
				repo.AssertNotCalled(t, "UpdateText", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Olive", post.User.FirstName)
			repo.AssertExpectations(t)
		})
	}
}

func TestPostService_ReactToHiddenPost(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("GetByID", mock.Anything, uint(4)).Return(&models.Post{ID: 4, UserID: 1, Visibility: false}, nil)

	reactions := &reactionRepoStub[models.PostReaction]{}
	svc := NewPostService(repo, reactions, nil)

	_, err := svc.ReactToPost(context.Background(), models.Actor{ID: 2}, 4, models.ReactLike)
	assertKind(t, err, models.KindNotFound)
}

func TestPostService_CreatePostWithCategory(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("FindOrCreateCategory", mock.Anything, "Diary").Return(&models.PostCategory{ID: 3, Type: "Diary"}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.PostCategoryID == 3 && p.UserID == 7 && p.Visibility
	})).Return(nil)

	svc := NewPostService(repo, nil, nil)
	post, err := svc.CreatePost(context.Background(), models.Actor{ID: 7}, CreatePostInput{Text: "dear diary", Category: "Diary"})
	require.NoError(t, err)
	assert.Equal(t, "Diary", post.Category.Type)
	assert.NotNil(t, post.Comments)
	repo.AssertExpectations(t)
}

func TestPostService_ListPostsByCategoryDefaultsToTravel(t *testing.T) {
	repo := new(MockPostRepository)
	page, _ := models.NewPage(1, 5)
	repo.On("ListByCategory", mock.Anything, DefaultListCategory, uint(1), page).Return([]models.Post(nil), int64(0), nil)

	svc := NewPostService(repo, nil, nil)
	res, err := svc.ListPostsByCategory(context.Background(), models.Actor{ID: 1}, "", page)
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	repo.AssertExpectations(t)
}
