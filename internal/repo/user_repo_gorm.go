package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/query"
)

type UserRepo struct {
	collection[domain.User]
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{
		collection: collection[domain.User]{db: db, columns: map[string]string{
			"id":        "id",
			"email":     "email",
			"role":      "role",
			"createdAt": "created_at",
		}},
		db: db,
	}
}

var (
	_ domain.UserRepository     = (*UserRepo)(nil)
	_ query.Finder[domain.User] = (*UserRepo)(nil)
)

// Create 遇到邮箱唯一约束冲突时返回 domain.ErrDuplicate
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return first[domain.User](ctx, r.db, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return first[domain.User](ctx, r.db, "email = ?", email)
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	return translate(r.db.WithContext(ctx).Save(u).Error)
}

// first 查不到时返回 (nil, nil)
func first[T any](ctx context.Context, db *gorm.DB, where string, args ...any) (*T, error) {
	var v T
	err := db.WithContext(ctx).Where(where, args...).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDupKey(err) {
		return errors.Join(domain.ErrDuplicate, err)
	}
	return err
}

// isDupKey 兜底识别未被驱动翻译的唯一约束错误
func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
