package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository/mocks"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/service"
)

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	store := newTxStore()
	dispatcher := new(mockDispatcher)
	authService := service.NewAuthService(store, dispatcher)

	ctx := context.Background()
	name := "Wanjiku"
	email := "wanjiku@example.com"
	password := "StrongPass123"

	store.UserRepo.On("FindByEmail", ctx, email).Return(nil, repository.ErrUserNotFound).Once()
	store.UserRepo.On("Create", ctx, mock.MatchedBy(func(user *domain.User) bool {
		assert.Equal(t, name, user.Name)
		assert.Equal(t, email, user.Email)
		assert.NotEqual(t, password, user.Password, "password must not be stored in plain text")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)))
		return true
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = "u-5"
		}).
		Return(nil).Once()
	store.NotificationRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Kind == domain.NotificationKindWelcome &&
			n.Recipient == email &&
			n.Subject == "Welcome to Supermarket" &&
			n.Body == "Hi Wanjiku, thanks for registering!" &&
			n.SubjectRef == "u-5" &&
			n.Status == domain.NotificationStatusPending
	})).Return(nil).Once()
	dispatcher.On("Dispatch", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil).Once()

	// Act
	user, err := authService.Register(ctx, name, email, password)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "u-5", user.ID)
	assert.Empty(t, user.Password, "返回的用户密码应为空")
	store.AssertAllExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	store := mocks.NewStore()
	authService := service.NewAuthService(store, nil)
	ctx := context.Background()

	store.UserRepo.On("FindByEmail", ctx, "taken@example.com").
		Return(&domain.User{ID: "u-1", Email: "taken@example.com"}, nil).Once()

	_, err := authService.Register(ctx, "Someone", "taken@example.com", "password")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrEmailTaken))
	assert.True(t, service.IsValidation(err))
	store.UserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "WithinTransaction", mock.Anything)
}

func TestAuthService_Register_DuplicateOnInsert(t *testing.T) {
	// 并发注册: 查询时不存在，插入时唯一索引冲突
	store := newTxStore()
	authService := service.NewAuthService(store, nil)
	ctx := context.Background()

	store.UserRepo.On("FindByEmail", ctx, "race@example.com").Return(nil, repository.ErrUserNotFound).Once()
	store.UserRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(repository.ErrDuplicateEntry).Once()

	_, err := authService.Register(ctx, "Racer", "race@example.com", "password")

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrEmailTaken)
	store.NotificationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_DispatchFailureStillSucceeds(t *testing.T) {
	store := newTxStore()
	dispatcher := new(mockDispatcher)
	authService := service.NewAuthService(store, dispatcher)
	ctx := context.Background()

	store.UserRepo.On("FindByEmail", ctx, "a@b.com").Return(nil, repository.ErrUserNotFound).Once()
	store.UserRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()
	store.NotificationRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil).Once()
	dispatcher.On("Dispatch", ctx, mock.Anything).Return(errors.New("redis: connection refused")).Once()

	user, err := authService.Register(ctx, "A", "a@b.com", "password")

	require.NoError(t, err)
	assert.NotNil(t, user)
	dispatcher.AssertExpectations(t)
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	store := mocks.NewStore()
	authService := service.NewAuthService(store, nil)

	_, err := authService.Register(context.Background(), "A", "", "password")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = authService.Register(context.Background(), "A", "a@b.com", "")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestAuthService_Register_LookupErrorIsInternal(t *testing.T) {
	store := mocks.NewStore()
	authService := service.NewAuthService(store, nil)
	ctx := context.Background()

	store.UserRepo.On("FindByEmail", ctx, "a@b.com").Return(nil, errors.New("server selection timeout")).Once()

	_, err := authService.Register(ctx, "A", "a@b.com", "password")

	assert.ErrorIs(t, err, service.ErrInternalServer)
	assert.False(t, service.IsValidation(err))
}
