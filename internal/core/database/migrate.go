package database

import (
	"context"

	"gorm.io/gorm"

	"portfolio-api/internal/domain"
)

// Models 为需要自动迁移的全部模型
func Models() []any {
	return []any{&domain.User{}, &domain.Project{}, &domain.Contact{}}
}

// Migrate 建表并创建索引（users.email 唯一；projects(featured, order)、projects(category)；contacts(status, created_at)）
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(Models()...)
}
