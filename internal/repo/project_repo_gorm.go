package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio-api/internal/domain"
)

type ProjectRepo struct {
	collection[domain.Project]
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{
		collection: collection[domain.Project]{db: db, columns: map[string]string{
			"id":           "id",
			"title":        "title",
			"description":  "description",
			"technologies": "technologies",
			"category":     "category",
			"status":       "status",
			"featured":     "featured",
			"order":        "order",
			"createdAt":    "created_at",
		}},
		db: db,
	}
}

var _ domain.ProjectRepository = (*ProjectRepo)(nil)

func (r *ProjectRepo) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	return first[domain.Project](ctx, r.db, "id = ?", id)
}

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

// Update 整体覆盖（最后写入者生效）
func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r *ProjectRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Project{})
	return res.RowsAffected > 0, res.Error
}

// Categories 返回已有项目使用到的分类（去重、按名称排序）
func (r *ProjectRepo) Categories(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Distinct("category").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "category"}}).
		Pluck("category", &out).Error
	return out, err
}
