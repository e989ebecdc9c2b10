package http

import (
	"context"
	"io"

	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/usecase"

	"github.com/stretchr/testify/mock"
)

// MockAuthUseCase is a mock implementation of AuthUseCase
type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthResult), args.Error(1)
}

func (m *MockAuthUseCase) Login(ctx context.Context, username, password string) (*usecase.AuthResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthResult), args.Error(1)
}

// MockPostUseCase is a mock implementation of PostUseCase
type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) CreatePost(ctx context.Context, principal *entity.Principal, input usecase.CreatePostInput) (*entity.Post, error) {
	args := m.Called(ctx, principal, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) GetPost(ctx context.Context, postID string) (*entity.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) ListFeed(ctx context.Context, page entity.PageRequest) (*entity.Page[*entity.Post], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.Post]), args.Error(1)
}

func (m *MockPostUseCase) ListByAuthor(ctx context.Context, authorID string, page entity.PageRequest) (*entity.Page[*entity.Post], error) {
	args := m.Called(ctx, authorID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.Post]), args.Error(1)
}

func (m *MockPostUseCase) DeletePost(ctx context.Context, principal *entity.Principal, postID string) error {
	args := m.Called(ctx, principal, postID)
	return args.Error(0)
}

// MockInteractionUseCase is a mock implementation of InteractionUseCase
type MockInteractionUseCase struct {
	mock.Mock
}

func (m *MockInteractionUseCase) ToggleLike(ctx context.Context, principal *entity.Principal, postID string) (*entity.LikeResult, error) {
	args := m.Called(ctx, principal, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LikeResult), args.Error(1)
}

func (m *MockInteractionUseCase) IsLiked(ctx context.Context, principal *entity.Principal, postID string) (bool, error) {
	args := m.Called(ctx, principal, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInteractionUseCase) AddComment(ctx context.Context, principal *entity.Principal, postID, content string) (*entity.Comment, error) {
	args := m.Called(ctx, principal, postID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockInteractionUseCase) DeleteComment(ctx context.Context, principal *entity.Principal, postID, commentID string) error {
	args := m.Called(ctx, principal, postID, commentID)
	return args.Error(0)
}

func (m *MockInteractionUseCase) ListComments(ctx context.Context, postID string, page entity.PageRequest) (*entity.Page[*entity.Comment], error) {
	args := m.Called(ctx, postID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.Comment]), args.Error(1)
}

// MockUserUseCase is a mock implementation of UserUseCase
type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) Me(ctx context.Context, principal *entity.Principal) (*entity.User, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserUseCase) UpdateProfile(ctx context.Context, principal *entity.Principal, input usecase.UpdateProfileInput) (*entity.User, error) {
	args := m.Called(ctx, principal, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserUseCase) UploadAvatar(ctx context.Context, principal *entity.Principal, file io.Reader, filename, contentType string) (*entity.User, error) {
	args := m.Called(ctx, principal, file, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserUseCase) DeleteUser(ctx context.Context, principal *entity.Principal, userID string) error {
	args := m.Called(ctx, principal, userID)
	return args.Error(0)
}

var (
	_ usecase.AuthUseCase        = (*MockAuthUseCase)(nil)
	_ usecase.PostUseCase        = (*MockPostUseCase)(nil)
	_ usecase.InteractionUseCase = (*MockInteractionUseCase)(nil)
	_ usecase.UserUseCase        = (*MockUserUseCase)(nil)
)
