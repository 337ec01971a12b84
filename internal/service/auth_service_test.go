package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/domain"
	"portfolio-api/pkg/utils"
)

func userWithPassword(t *testing.T, pw string) *domain.User {
	t.Helper()
	hash, err := utils.HashPassword(pw)
	require.NoError(t, err)
	return &domain.User{ID: "u-1", Name: "Ada", Email: "ada@example.com", PasswordHash: hash, Role: domain.RoleUser}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with normalized email", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByEmail", ctx, "ada@example.com").Return(nil, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "ada@example.com" && u.Role == domain.RoleUser && u.PasswordHash != "Secret1"
		})).Return(nil)

		svc := NewAuthService(repo, stubIssuer{}, nil)
		u, tok, err := svc.Register(ctx, RegisterInput{Name: " Ada ", Email: " Ada@Example.com", Password: "Secret1"})
		require.NoError(t, err)
		assert.Equal(t, "Ada", u.Name)
		assert.Equal(t, "token-for-"+u.ID, tok)
		repo.AssertExpectations(t)
	})

	t.Run("weak password rejected before lookup", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, stubIssuer{}, nil)
		_, _, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "password", ve.Field)
		assert.True(t, errors.Is(err, ErrValidation))
		repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("existing email", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByEmail", ctx, "ada@example.com").Return(&domain.User{ID: "x"}, nil)
		svc := NewAuthService(repo, stubIssuer{}, nil)
		_, _, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "Secret1"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, stubIssuer{}, nil)
		_, _, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "Aa1" + strings.Repeat("x", 80)})
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "password", ve.Field)
		repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("unique constraint race", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByEmail", ctx, "ada@example.com").Return(nil, nil)
		repo.On("Create", ctx, mock.Anything).Return(errors.Join(domain.ErrDuplicate, errors.New("UNIQUE constraint failed")))
		svc := NewAuthService(repo, stubIssuer{}, nil)
		_, _, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "Secret1"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	u := userWithPassword(t, "Secret1")

	repo := new(mockUserRepo)
	repo.On("FindByEmail", ctx, "ada@example.com").Return(u, nil)
	repo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, nil)
	svc := NewAuthService(repo, stubIssuer{}, nil)

	got, tok, err := svc.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "Secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, tok)

	_, tok, err = svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, tok)

	_, _, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	repo := new(mockUserRepo)
	repo.On("FindByID", ctx, "u-1").Return(&domain.User{ID: "u-1", Name: "Ada", Email: "ada@example.com"}, nil)
	repo.On("FindByEmail", ctx, "taken@example.com").Return(&domain.User{ID: "u-2"}, nil)
	repo.On("FindByEmail", ctx, "new@example.com").Return(nil, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)
	svc := NewAuthService(repo, stubIssuer{}, nil)

	taken := "taken@example.com"
	_, err := svc.UpdateProfile(ctx, "u-1", ProfileInput{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	name, email := "Ada L.", "New@example.com"
	u, err := svc.UpdateProfile(ctx, "u-1", ProfileInput{Name: &name, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", u.Name)
	assert.Equal(t, "new@example.com", u.Email)

	repo2 := new(mockUserRepo)
	repo2.On("FindByID", ctx, "gone").Return(nil, nil)
	_, err = NewAuthService(repo2, stubIssuer{}, nil).UpdateProfile(ctx, "gone", ProfileInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	u := userWithPassword(t, "Secret1")

	repo := new(mockUserRepo)
	repo.On("FindByID", ctx, "u-1").Return(u, nil)
	repo.On("Update", ctx, u).Return(nil)
	svc := NewAuthService(repo, stubIssuer{}, nil)

	err := svc.ChangePassword(ctx, "u-1", ChangePasswordInput{CurrentPassword: "nope", NewPassword: "Better2"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "currentPassword", ve.Field)

	require.NoError(t, svc.ChangePassword(ctx, "u-1", ChangePasswordInput{CurrentPassword: "Secret1", NewPassword: "Better2"}))
	assert.True(t, utils.CheckPassword("Better2", u.PasswordHash))
	repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	assert.NoError(t, NewAuthService(new(mockUserRepo), stubIssuer{}, nil).Logout(ctx, "jti", exp))

	deny := &recordingDenylist{}
	require.NoError(t, NewAuthService(new(mockUserRepo), stubIssuer{}, deny).Logout(ctx, "jti", exp))
	require.Len(t, deny.calls, 1)
	assert.Equal(t, "jti", deny.calls[0].id)
	assert.Equal(t, exp, deny.calls[0].until)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates admin", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByEmail", ctx, "root@example.com").Return(nil, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Role == domain.RoleAdmin && u.Email == "root@example.com"
		})).Return(nil)

		u, created, err := NewAuthService(repo, stubIssuer{}, nil).
			EnsureAdmin(ctx, RegisterInput{Name: "Root", Email: "Root@Example.com ", Password: "Secret1"})
		require.NoError(t, err)
		assert.True(t, created)
		assert.True(t, u.IsAdmin())
		repo.AssertExpectations(t)
	})

	t.Run("promotes existing user without touching password", func(t *testing.T) {
		u := userWithPassword(t, "Secret1")
		hash := u.PasswordHash
		repo := new(mockUserRepo)
		repo.On("FindByEmail", ctx, "ada@example.com").Return(u, nil)
		repo.On("Update", ctx, u).Return(nil)

		got, created, err := NewAuthService(repo, stubIssuer{}, nil).
			EnsureAdmin(ctx, RegisterInput{Email: "ada@example.com", Password: "ignored"})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, domain.RoleAdmin, got.Role)
		assert.Equal(t, hash, got.PasswordHash)
	})

	t.Run("weak password for new admin", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByEmail", ctx, "root@example.com").Return(nil, nil)
		_, _, err := NewAuthService(repo, stubIssuer{}, nil).
			EnsureAdmin(ctx, RegisterInput{Email: "root@example.com", Password: "short"})
		assert.ErrorIs(t, err, ErrValidation)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_ChangePasswordTooLong(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, stubIssuer{}, nil)
	// 多字节字符按字节计数
	err := svc.ChangePassword(context.Background(), "u-1", ChangePasswordInput{
		CurrentPassword: "Secret1",
		NewPassword:     "Aa1" + strings.Repeat("密", 24),
	})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "newPassword", ve.Field)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
