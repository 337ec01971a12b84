package domain

import (
	"context"
	"time"

	"portfolio-api/internal/query"
)

type Category string

const (
	CategoryWeb     Category = "web"
	CategoryMobile  Category = "mobile"
	CategoryDesktop Category = "desktop"
	CategoryOther   Category = "other"
)

var Categories = []Category{CategoryWeb, CategoryMobile, CategoryDesktop, CategoryOther}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

type ProjectStatus string

const (
	ProjectCompleted  ProjectStatus = "completed"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectPlanned    ProjectStatus = "planned"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectCompleted, ProjectInProgress, ProjectPlanned:
		return true
	}
	return false
}

type Project struct {
	ID               string        `gorm:"primaryKey;size:36" json:"id"`
	Title            string        `gorm:"size:100;not null" json:"title"`
	Description      string        `gorm:"size:1000;not null" json:"description"`
	ShortDescription string        `gorm:"size:200;not null" json:"shortDescription"`
	Image            string        `gorm:"size:512;not null" json:"image"`
	Images           []string      `gorm:"serializer:json;type:text" json:"images"`
	Technologies     []string      `gorm:"serializer:json;type:text" json:"technologies"`
	GithubURL        string        `gorm:"size:512" json:"githubUrl"`
	LiveURL          string        `gorm:"size:512" json:"liveUrl"`
	Category         Category      `gorm:"size:16;not null;index" json:"category"`
	Featured         bool          `gorm:"not null;index:idx_projects_featured_order,priority:1" json:"featured"`
	Order            int           `gorm:"not null;index:idx_projects_featured_order,priority:2" json:"order"`
	Status           ProjectStatus `gorm:"size:16;not null" json:"status"`
	StartDate        time.Time     `gorm:"not null" json:"startDate"`
	EndDate          *time.Time    `json:"endDate,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

func (Project) TableName() string { return "projects" }

// ProjectRepository 查不到记录时返回 (nil, nil)；Delete 返回是否删除了记录
type ProjectRepository interface {
	Find(ctx context.Context, q query.Query) ([]Project, error)
	Count(ctx context.Context, f query.Filter) (int64, error)
	FindByID(ctx context.Context, id string) (*Project, error)
	Create(ctx context.Context, p *Project) error
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) (bool, error)
	Categories(ctx context.Context) ([]Category, error)
}
