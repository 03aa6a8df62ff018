package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/equipment-reservations/internal/apperr"
	"github.com/vasiliy-maslov/equipment-reservations/internal/user"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByName(ctx context.Context, name string) (*user.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *MockUserRepository) DeleteWithReservations(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func TestUserService_CreateUser_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	mockRepo.On("GetByName", mock.Anything, "Researcher A").
		Return(nil, apperr.NotFound("user not found")).
		Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Return(int64(11), nil).
		Once()

	createdUser, err := userService.CreateUser(context.Background(), &user.User{Name: " Researcher A "})

	require.NoError(t, err)
	require.NotNil(t, createdUser)
	require.Equal(t, int64(11), createdUser.ID)
	require.Equal(t, "Researcher A", createdUser.Name)
	mockRepo.AssertExpectations(t)
}

func TestUserService_CreateUser_NameExists(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	existing := &user.User{ID: 2, Name: "Researcher B"}
	mockRepo.On("GetByName", mock.Anything, "Researcher B").Return(existing, nil).Once()

	createdUser, err := userService.CreateUser(context.Background(), &user.User{Name: "Researcher B"})

	require.ErrorIs(t, err, apperr.ErrConflict)
	require.Nil(t, createdUser)
	require.Equal(t, existing, apperr.ConflictOf(err))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_CreateUser_LookupFails(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	mockRepo.On("GetByName", mock.Anything, "Researcher C").
		Return(nil, apperr.Storage(errors.New("connection refused"), "repository: failed to select user by name")).
		Once()

	_, err := userService.CreateUser(context.Background(), &user.User{Name: "Researcher C"})

	require.ErrorIs(t, err, apperr.ErrStorage)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_CreateUser_EmptyName(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	_, err := userService.CreateUser(context.Background(), &user.User{Name: ""})

	require.ErrorIs(t, err, apperr.ErrValidation)
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUserByID(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	expectedUser := user.User{ID: 5, Name: "Lead Researcher", CreatedAt: time.Now().Add(-time.Hour)}
	mockRepo.On("GetByID", mock.Anything, int64(5)).Return(&expectedUser, nil).Once()
	mockRepo.On("GetByID", mock.Anything, int64(6)).Return(nil, apperr.NotFound("user 6 not found")).Once()

	foundUser, err := userService.GetUserByID(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(expectedUser, *foundUser))

	foundUser, err = userService.GetUserByID(context.Background(), 6)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.Nil(t, foundUser)
	mockRepo.AssertExpectations(t)
}

func TestUserService_DeleteUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	mockRepo.On("DeleteWithReservations", mock.Anything, int64(5)).Return(int64(3), nil).Once()

	require.NoError(t, userService.DeleteUser(context.Background(), 5))
	mockRepo.AssertExpectations(t)
}
