package client

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == "admin" }

type Project struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	ShortDescription string     `json:"shortDescription"`
	Image            string     `json:"image"`
	Images           []string   `json:"images"`
	Technologies     []string   `json:"technologies"`
	GithubURL        string     `json:"githubUrl"`
	LiveURL          string     `json:"liveUrl"`
	Category         string     `json:"category"`
	Featured         bool       `json:"featured"`
	Order            int        `json:"order"`
	Status           string     `json:"status"`
	StartDate        time.Time  `json:"startDate"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ProjectInput 日期使用 2006-01-02 或 RFC3339
type ProjectInput struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortDescription"`
	Image            string   `json:"image"`
	Images           []string `json:"images,omitempty"`
	Technologies     []string `json:"technologies"`
	GithubURL        string   `json:"githubUrl,omitempty"`
	LiveURL          string   `json:"liveUrl,omitempty"`
	Category         string   `json:"category"`
	Featured         bool     `json:"featured"`
	Order            int      `json:"order"`
	Status           string   `json:"status,omitempty"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate,omitempty"`
}

type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ContactStats struct {
	Total    int64 `json:"total"`
	New      int64 `json:"new"`
	Read     int64 `json:"read"`
	Replied  int64 `json:"replied"`
	Archived int64 `json:"archived"`
	Recent   int64 `json:"recent"`
}

// List 对应分页列表响应
type List[T any] struct {
	Count int    `json:"count"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
	Query string `json:"query,omitempty"`
	Data  []T    `json:"data"`
}

type ProfileInput struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type Health struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Env       string    `json:"env"`
}
