package domain

import (
	"context"
	"time"

	"portfolio-api/internal/query"
)

type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

var ContactStatuses = []ContactStatus{ContactNew, ContactRead, ContactReplied, ContactArchived}

func (s ContactStatus) Valid() bool {
	for _, v := range ContactStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Contact 状态可由管理员任意设置；唯一的自动迁移是首次读取时 new -> read
type Contact struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	Name      string        `gorm:"size:100;not null" json:"name"`
	Email     string        `gorm:"size:191;not null" json:"email"`
	Subject   string        `gorm:"size:200;not null" json:"subject"`
	Message   string        `gorm:"size:2000;not null" json:"message"`
	IPAddress string        `gorm:"size:64" json:"ipAddress"`
	UserAgent string        `gorm:"size:512" json:"userAgent"`
	Status    ContactStatus `gorm:"size:16;not null;index:idx_contacts_status_created,priority:1" json:"status"`
	CreatedAt time.Time     `gorm:"index:idx_contacts_status_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (Contact) TableName() string { return "contacts" }

type ContactStats struct {
	Total    int64 `json:"total"`
	New      int64 `json:"new"`
	Read     int64 `json:"read"`
	Replied  int64 `json:"replied"`
	Archived int64 `json:"archived"`
	Recent   int64 `json:"recent"`
}

type ContactRepository interface {
	Find(ctx context.Context, q query.Query) ([]Contact, error)
	Count(ctx context.Context, f query.Filter) (int64, error)
	FindByID(ctx context.Context, id string) (*Contact, error)
	Create(ctx context.Context, c *Contact) error
	// MarkRead 仅当当前状态为 new 时改为 read
	MarkRead(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, s ContactStatus) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountByStatus(ctx context.Context) (map[ContactStatus]int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}
