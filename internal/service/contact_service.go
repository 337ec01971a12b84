package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/query"
	"portfolio-api/pkg/utils"
)

const recentWindow = 30 * 24 * time.Hour

func validContactStatus(s string) bool { return domain.ContactStatus(s).Valid() }

var contactListRules = query.Rules{
	Exact:        map[string]func(string) bool{"status": validContactStatus},
	DefaultLimit: 20,
	Sort:         []query.Sort{{Field: "createdAt", Desc: true}},
}

type ContactService struct {
	contacts domain.ContactRepository
	now      func() time.Time
}

func NewContactService(contacts domain.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts, now: time.Now}
}

type ContactInput struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,min=5,max=200"`
	Message string `json:"message" binding:"required,min=10,max=2000"`
}

type StatusInput struct {
	Status string `json:"status" binding:"required"`
}

// ClientInfo 记录提交者来源
type ClientInfo struct {
	IP        string
	UserAgent string
}

// Submit 按去除首尾空白后的长度校验
func (s *ContactService) Submit(ctx context.Context, in ContactInput, from ClientInfo) (*domain.Contact, error) {
	name, subject, message := strings.TrimSpace(in.Name), strings.TrimSpace(in.Subject), strings.TrimSpace(in.Message)
	if err := between("name", "Name", name, 2, 100); err != nil {
		return nil, err
	}
	if err := between("subject", "Subject", subject, 5, 200); err != nil {
		return nil, err
	}
	if err := between("message", "Message", message, 10, 2000); err != nil {
		return nil, err
	}
	c := &domain.Contact{
		ID:        utils.NewID(),
		Name:      name,
		Email:     normalizeEmail(in.Email),
		Subject:   subject,
		Message:   message,
		IPAddress: from.IP,
		UserAgent: from.UserAgent,
		Status:    domain.ContactNew,
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return c, nil
}

func (s *ContactService) List(ctx context.Context, raw url.Values) (query.Page[domain.Contact], error) {
	q, err := query.Build(raw, contactListRules)
	if err != nil {
		return query.Page[domain.Contact]{}, err
	}
	return query.Paginate[domain.Contact](ctx, s.contacts, q)
}

// Get 首次读取 new 状态的留言时将其标记为 read
func (s *ContactService) Get(ctx context.Context, id string) (*domain.Contact, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.ContactNew {
		if err := s.contacts.MarkRead(ctx, id); err != nil {
			return nil, fmt.Errorf("mark read: %w", err)
		}
		c.Status = domain.ContactRead
	}
	return c, nil
}

func (s *ContactService) UpdateStatus(ctx context.Context, id, status string) (*domain.Contact, error) {
	st := domain.ContactStatus(status)
	if !st.Valid() {
		return nil, invalid("status", "Invalid status. Must be one of: new, read, replied, archived")
	}
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.contacts.UpdateStatus(ctx, id, st); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	c.Status = st
	return c, nil
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	ok, err := s.contacts.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if !ok {
		return notFound("Message")
	}
	return nil
}

func (s *ContactService) Stats(ctx context.Context) (domain.ContactStats, error) {
	counts, err := s.contacts.CountByStatus(ctx)
	if err != nil {
		return domain.ContactStats{}, fmt.Errorf("count by status: %w", err)
	}
	recent, err := s.contacts.CountSince(ctx, s.now().Add(-recentWindow))
	if err != nil {
		return domain.ContactStats{}, fmt.Errorf("count recent: %w", err)
	}
	st := domain.ContactStats{
		New:      counts[domain.ContactNew],
		Read:     counts[domain.ContactRead],
		Replied:  counts[domain.ContactReplied],
		Archived: counts[domain.ContactArchived],
		Recent:   recent,
	}
	for _, n := range counts {
		st.Total += n
	}
	return st, nil
}

func (s *ContactService) find(ctx context.Context, id string) (*domain.Contact, error) {
	c, err := s.contacts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find contact: %w", err)
	}
	if c == nil {
		return nil, notFound("Message")
	}
	return c, nil
}

func between(field, label, v string, lo, hi int) error {
	if n := utf8.RuneCountInString(v); n < lo || n > hi {
		return invalid(field, fmt.Sprintf("%s must be between %d and %d characters", label, lo, hi))
	}
	return nil
}
