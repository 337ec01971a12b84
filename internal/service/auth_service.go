package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"portfolio-api/internal/core/auth"
	"portfolio-api/internal/domain"
	"portfolio-api/pkg/utils"
)

// TokenIssuer 签发身份令牌
type TokenIssuer interface {
	Issue(uid string) (string, error)
}

type AuthService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	deny   auth.Denylist // 可为空，此时登出不吊销令牌
}

func NewAuthService(users domain.UserRepository, tokens TokenIssuer, deny auth.Denylist) *AuthService {
	return &AuthService{users: users, tokens: tokens, deny: deny}
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ProfileInput struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=50"`
	Email *string `json:"email" binding:"omitempty,email"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
}

// Register 创建普通用户并签发令牌
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if err := checkPassword("password", in.Password); err != nil {
		return nil, "", err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Login 对未知邮箱与错误密码返回同一个错误
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*domain.User, string, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

func (s *AuthService) Me(ctx context.Context, uid string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, notFound("User")
	}
	return u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, uid string, in ProfileInput) (*domain.User, error) {
	u, err := s.Me(ctx, uid)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != u.Email {
			other, err := s.users.FindByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("find user: %w", err)
			}
			if other != nil {
				return nil, ErrEmailTaken
			}
			u.Email = email
		}
	}
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, uid string, in ChangePasswordInput) error {
	if err := checkPassword("newPassword", in.NewPassword); err != nil {
		return err
	}
	u, err := s.Me(ctx, uid)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(in.CurrentPassword, u.PasswordHash) {
		return invalid("currentPassword", "Current password is incorrect")
	}
	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Logout 在启用吊销名单时让令牌立即失效；否则令牌自然过期
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.deny == nil {
		return nil
	}
	return s.deny.Revoke(ctx, tokenID, expiresAt)
}

// EnsureAdmin 创建管理员；邮箱已存在则提升为 admin（不改密码）。created 表示是否新建
func (s *AuthService) EnsureAdmin(ctx context.Context, in RegisterInput) (u *domain.User, created bool, err error) {
	email := normalizeEmail(in.Email)
	u, err = s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("find user: %w", err)
	}
	if u != nil {
		if u.IsAdmin() {
			return u, false, nil
		}
		u.Role = domain.RoleAdmin
		if err := s.users.Update(ctx, u); err != nil {
			return nil, false, fmt.Errorf("promote user: %w", err)
		}
		return u, false, nil
	}

	if err := checkPassword("password", in.Password); err != nil {
		return nil, false, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, false, err
	}
	u = &domain.User{
		ID:           utils.NewID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	return u, true, nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// bcrypt 只接受 72 字节以内的口令
const maxPasswordBytes = 72

// checkPassword: 6 到 72 字节，且包含小写、大写字母与数字
func checkPassword(field, pw string) error {
	if len(pw) < 6 {
		return invalid(field, "Password must be at least 6 characters long")
	}
	if len(pw) > maxPasswordBytes {
		return invalid(field, "Password cannot be more than 72 characters")
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return invalid(field, "Password must contain at least one lowercase letter, one uppercase letter, and one number")
	}
	return nil
}
