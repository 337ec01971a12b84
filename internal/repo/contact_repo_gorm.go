package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"portfolio-api/internal/domain"
)

type ContactRepo struct {
	collection[domain.Contact]
	db *gorm.DB
}

func NewContactRepo(db *gorm.DB) *ContactRepo {
	return &ContactRepo{
		collection: collection[domain.Contact]{db: db, columns: map[string]string{
			"id":        "id",
			"email":     "email",
			"status":    "status",
			"createdAt": "created_at",
		}},
		db: db,
	}
}

var _ domain.ContactRepository = (*ContactRepo)(nil)

func (r *ContactRepo) FindByID(ctx context.Context, id string) (*domain.Contact, error) {
	return first[domain.Contact](ctx, r.db, "id = ?", id)
}

func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

// MarkRead 带条件更新，已被改为其他状态的留言不受影响
func (r *ContactRepo) MarkRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Contact{}).
		Where("id = ? AND status = ?", id, domain.ContactNew).
		Update("status", domain.ContactRead).Error
}

func (r *ContactRepo) UpdateStatus(ctx context.Context, id string, s domain.ContactStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Contact{}).Where("id = ?", id).Update("status", s)
	return res.RowsAffected > 0, res.Error
}

func (r *ContactRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Contact{})
	return res.RowsAffected > 0, res.Error
}

func (r *ContactRepo) CountByStatus(ctx context.Context) (map[domain.ContactStatus]int64, error) {
	var rows []struct {
		Status domain.ContactStatus
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Contact{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.ContactStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *ContactRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Contact{}).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}
