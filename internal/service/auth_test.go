package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/lab-equipment-booking/internal/config"
	"github.com/iliyamo/lab-equipment-booking/internal/errs"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
	"github.com/iliyamo/lab-equipment-booking/internal/utils"
)

func newAuth(users *MockUserStore) *AuthService {
	return NewAuthService(users, config.Auth{JWTSecret: "secret", AccessTTLMin: 60, BcryptCost: bcrypt.MinCost}, zap.NewNop())
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)
	stored := model.User{ID: "u-1", Username: "ann", Email: "ann@lab.edu", PasswordHash: hash, Role: model.RoleStudent}

	users := &MockUserStore{}
	users.On("GetByEmail", ctx, "ann@lab.edu").Return(stored, nil)
	users.On("GetByEmail", ctx, "nobody@lab.edu").Return(model.User{}, errs.E(errs.ErrNotFound, "User not found"))
	svc := newAuth(users)

	res, err := svc.Login(ctx, "ann@lab.edu", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "u-1", res.User.ID)
	claims, err := utils.ParseAccessToken("secret", res.Token)
	require.NoError(t, err)
	assert.Equal(t, "ann", claims.Username)
	assert.Equal(t, model.RoleStudent, claims.Role)

	_, err = svc.Login(ctx, "ann@lab.edu", "wrong")
	assert.True(t, errors.Is(err, errs.ErrInvalidCredentials))
	assert.Equal(t, "Invalid email or password", errs.Message(err))

	_, errUnknown := svc.Login(ctx, "nobody@lab.edu", "whatever")
	assert.True(t, errors.Is(errUnknown, errs.ErrInvalidCredentials))
	assert.Equal(t, errs.Message(err), errs.Message(errUnknown))
	users.AssertExpectations(t)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success defaults to student", func(t *testing.T) {
		users := &MockUserStore{}
		users.On("Exists", ctx, "bob@lab.edu", "bob").Return(false, nil)
		users.On("Create", ctx, mock.AnythingOfType("*model.User")).
			Run(func(args mock.Arguments) { args.Get(1).(*model.User).ID = "u-2" }).
			Return(nil)

		res, err := newAuth(users).Register(ctx, RegisterInput{Username: "bob", Email: " Bob@Lab.edu", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "u-2", res.User.ID)
		assert.Equal(t, model.RoleStudent, res.User.Role)
		assert.True(t, utils.VerifyPassword(res.User.PasswordHash, "secret1"))
		assert.NotEmpty(t, res.Token)
		users.AssertExpectations(t)
	})

	t.Run("lab-assistant alias", func(t *testing.T) {
		users := &MockUserStore{}
		users.On("Exists", ctx, "cy@lab.edu", "cy").Return(false, nil)
		users.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil)

		res, err := newAuth(users).Register(ctx, RegisterInput{Username: "cy", Email: "cy@lab.edu", Password: "secret1", Role: "lab-assistant"})
		require.NoError(t, err)
		assert.Equal(t, model.RoleLabAssistant, res.User.Role)
	})

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"short password", RegisterInput{Username: "bob", Email: "bob@lab.edu", Password: "12345"}, errs.ErrValidation},
		{"missing username", RegisterInput{Email: "bob@lab.edu", Password: "123456"}, errs.ErrValidation},
		{"unknown role", RegisterInput{Username: "bob", Email: "bob@lab.edu", Password: "123456", Role: "root"}, errs.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &MockUserStore{}
			_, err := newAuth(users).Register(ctx, tt.in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("existing email", func(t *testing.T) {
		users := &MockUserStore{}
		users.On("Exists", ctx, "ann@lab.edu", "ann2").Return(true, nil)
		_, err := newAuth(users).Register(ctx, RegisterInput{Username: "ann2", Email: "ann@lab.edu", Password: "123456"})
		assert.True(t, errors.Is(err, errs.ErrConflict))
		assert.Equal(t, 409, errs.Status(err))
	})
}

func TestAuthService_ListUsers(t *testing.T) {
	ctx := context.Background()
	users := &MockUserStore{}
	users.On("List", ctx).Return([]model.User{{ID: "u-1"}}, nil)
	svc := newAuth(users)

	_, err := svc.ListUsers(ctx, model.Actor{ID: "s", Role: model.RoleStudent})
	assert.True(t, errors.Is(err, errs.ErrForbidden))

	list, err := svc.ListUsers(ctx, model.Actor{ID: "a", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
