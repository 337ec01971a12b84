package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/query"
	"portfolio-api/pkg/utils"
)

const featuredLimit = 6

func validCategory(s string) bool { return domain.Category(s).Valid() }

var (
	projectListRules = query.Rules{
		Exact:        map[string]func(string) bool{"category": validCategory},
		Featured:     true,
		DefaultLimit: 10,
		Sort: []query.Sort{
			{Field: "featured", Desc: true},
			{Field: "order"},
			{Field: "createdAt", Desc: true},
		},
	}
	projectSearchRules = query.Rules{
		Exact: map[string]func(string) bool{"category": validCategory},
		Search: &query.Search{
			Required: true,
			Contains: []string{"title", "description"},
			Has:      []string{"technologies"},
		},
		DefaultLimit: 10,
		Sort: []query.Sort{
			{Field: "featured", Desc: true},
			{Field: "createdAt", Desc: true},
		},
	}
	featuredQuery = query.Query{
		Filter: query.Filter{All: []query.Cond{{Field: "featured", Value: true}}},
		Sort: []query.Sort{
			{Field: "order"},
			{Field: "createdAt", Desc: true},
			{Field: "id"},
		},
		Page:  1,
		Limit: featuredLimit,
	}
)

type ProjectService struct {
	projects domain.ProjectRepository
}

func NewProjectService(projects domain.ProjectRepository) *ProjectService {
	return &ProjectService{projects: projects}
}

// ProjectInput 创建与更新共用，更新时同样执行完整校验
type ProjectInput struct {
	Title            string   `json:"title" binding:"required,max=100"`
	Description      string   `json:"description" binding:"required,max=1000"`
	ShortDescription string   `json:"shortDescription" binding:"required,max=200"`
	Image            string   `json:"image" binding:"required"`
	Images           []string `json:"images"`
	Technologies     []string `json:"technologies"`
	GithubURL        string   `json:"githubUrl" binding:"omitempty,url"`
	LiveURL          string   `json:"liveUrl" binding:"omitempty,url"`
	Category         string   `json:"category" binding:"required,oneof=web mobile desktop other"`
	Featured         bool     `json:"featured"`
	Order            int      `json:"order"`
	Status           string   `json:"status" binding:"omitempty,oneof=completed in-progress planned"`
	StartDate        string   `json:"startDate" binding:"required"`
	EndDate          string   `json:"endDate"`
}

func (s *ProjectService) List(ctx context.Context, raw url.Values) (query.Page[domain.Project], error) {
	q, err := query.Build(raw, projectListRules)
	if err != nil {
		return query.Page[domain.Project]{}, err
	}
	return query.Paginate[domain.Project](ctx, s.projects, q)
}

// Search 需要非空 q；返回的 string 为去除空白后的关键字
func (s *ProjectService) Search(ctx context.Context, raw url.Values) (query.Page[domain.Project], string, error) {
	q, err := query.Build(raw, projectSearchRules)
	if err != nil {
		return query.Page[domain.Project]{}, "", err
	}
	p, err := query.Paginate[domain.Project](ctx, s.projects, q)
	return p, strings.TrimSpace(raw.Get("q")), err
}

func (s *ProjectService) Featured(ctx context.Context) ([]domain.Project, error) {
	return s.projects.Find(ctx, featuredQuery)
}

func (s *ProjectService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.projects.Categories(ctx)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	if p == nil {
		return nil, notFound("Project")
	}
	return p, nil
}

func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*domain.Project, error) {
	p := &domain.Project{ID: utils.NewID()}
	if err := apply(p, in); err != nil {
		return nil, err
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (s *ProjectService) Update(ctx context.Context, id string, in ProjectInput) (*domain.Project, error) {
	// 先校验再访问存储
	next := &domain.Project{ID: id}
	if err := apply(next, in); err != nil {
		return nil, err
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next.CreatedAt = cur.CreatedAt
	if err := s.projects.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return next, nil
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	ok, err := s.projects.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if !ok {
		return notFound("Project")
	}
	return nil
}

func apply(p *domain.Project, in ProjectInput) error {
	cat := domain.Category(in.Category)
	if !cat.Valid() {
		return invalid("category", "Category must be one of: web, mobile, desktop, other")
	}
	status := domain.ProjectStatus(in.Status)
	if in.Status == "" {
		status = domain.ProjectCompleted
	}
	if !status.Valid() {
		return invalid("status", "Status must be one of: completed, in-progress, planned")
	}
	start, err := parseDate(in.StartDate)
	if err != nil {
		return invalid("startDate", "Start date must be a valid date")
	}
	var end *time.Time
	if strings.TrimSpace(in.EndDate) != "" {
		t, err := parseDate(in.EndDate)
		if err != nil {
			return invalid("endDate", "End date must be a valid date")
		}
		if t.Before(start) {
			return invalid("endDate", "End date cannot be before start date")
		}
		end = &t
	}

	p.Title = strings.TrimSpace(in.Title)
	p.Description = in.Description
	p.ShortDescription = in.ShortDescription
	p.Image = in.Image
	p.Images = nonNil(in.Images)
	p.Technologies = nonNil(in.Technologies)
	p.GithubURL = in.GithubURL
	p.LiveURL = in.LiveURL
	p.Category = cat
	p.Featured = in.Featured
	p.Order = in.Order
	p.Status = status
	p.StartDate = start
	p.EndDate = end
	return nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
