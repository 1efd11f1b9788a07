package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/cvstudio/internal/logger"
	"github.com/yoockh/cvstudio/internal/models"
	"github.com/yoockh/cvstudio/internal/utils"
	"github.com/yoockh/cvstudio/internal/validator"
)

type authFixture struct {
	users   *mockUserRepo
	tokens  TokenService
	service AuthService
}

func createTestAuthService(t *testing.T) *authFixture {
	t.Helper()
	users := &mockUserRepo{}
	tokens := NewTokenService("test-secret", "cvstudio", time.Hour)
	return &authFixture{
		users:   users,
		tokens:  tokens,
		service: NewAuthService(users, tokens, validator.New(), 4, logger.Discard()),
	}
}

func TestAuthService_Register(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.users.On("FindByEmail", ctx, "jane@example.com").Return(nil, utils.ErrNotFound)

	var stored *models.User
	fx.users.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*models.User) }).
		Return(nil)

	res, err := fx.service.Register(ctx, validator.RegisterInput{
		Name: "Jane Doe", Email: " Jane@Example.com ", Password: "secret1", Phone: "07700900123",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", res.Name)
	assert.Equal(t, "jane@example.com", res.Email)
	assert.NotEmpty(t, res.ID)

	require.NotNil(t, stored)
	assert.Equal(t, res.ID, stored.ID)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, utils.CheckPassword(stored.PasswordHash, "secret1"))

	sub, err := fx.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.ID, sub)
	fx.users.AssertExpectations(t)
}

func TestAuthService_Register_Validation(t *testing.T) {
	fx := createTestAuthService(t)

	_, err := fx.service.Register(context.Background(), validator.RegisterInput{
		Name: "J", Email: "jane@example.com", Password: "secret1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrValidation))
	assert.Equal(t, 400, utils.HTTPStatus(err))

	var ae *utils.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, []string{"Name should have at least 2 characters"}, ae.Details)

	// rejected before any lookup
	fx.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.users.On("FindByEmail", ctx, "jane@example.com").Return(&models.User{ID: "u1"}, nil)

	_, err := fx.service.Register(ctx, validator.RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	assert.True(t, errors.Is(err, utils.ErrDuplicateEmail))
	assert.Equal(t, 400, utils.HTTPStatus(err))
	fx.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_DuplicateRace(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.users.On("FindByEmail", ctx, "jane@example.com").Return(nil, utils.ErrNotFound)
	fx.users.On("Create", ctx, mock.Anything).Return(utils.ErrDuplicateEmail)

	_, err := fx.service.Register(ctx, validator.RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	assert.True(t, errors.Is(err, utils.ErrDuplicateEmail))

	var ae *utils.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "User already exists", ae.Message)
}

func TestAuthService_Login(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	hash, err := utils.HashPassword("secret1", 4)
	require.NoError(t, err)
	fx.users.On("FindByEmail", ctx, "jane@example.com").
		Return(&models.User{ID: "u1", Name: "Jane", Email: "jane@example.com", PasswordHash: hash}, nil)

	res, err := fx.service.Login(ctx, validator.LoginInput{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", res.ID)
	assert.NotEmpty(t, res.Token)
}

func TestAuthService_Login_Indistinguishable(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	hash, err := utils.HashPassword("secret1", 4)
	require.NoError(t, err)
	fx.users.On("FindByEmail", ctx, "jane@example.com").
		Return(&models.User{ID: "u1", Email: "jane@example.com", PasswordHash: hash}, nil)
	fx.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, utils.ErrNotFound)

	_, wrongPass := fx.service.Login(ctx, validator.LoginInput{Email: "jane@example.com", Password: "wrong-pass"})
	_, noUser := fx.service.Login(ctx, validator.LoginInput{Email: "ghost@example.com", Password: "secret1"})

	var a, b *utils.AppError
	require.True(t, errors.As(wrongPass, &a))
	require.True(t, errors.As(noUser, &b))
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, "Invalid credentials", a.Message)
	assert.Equal(t, 401, utils.HTTPStatus(wrongPass))
	assert.Equal(t, utils.HTTPStatus(wrongPass), utils.HTTPStatus(noUser))
}

func TestAuthService_Login_Validation(t *testing.T) {
	fx := createTestAuthService(t)

	_, err := fx.service.Login(context.Background(), validator.LoginInput{Email: "not-an-email", Password: "secret1"})
	assert.True(t, errors.Is(err, utils.ErrValidation))
	fx.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}
