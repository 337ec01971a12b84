// Package client is a Go client for the portfolio HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 10 * time.Second

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError 非 2xx 响应
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("portfolio api: status %d", e.Status)
	}
	return fmt.Sprintf("portfolio api: %d %s", e.Status, e.Message)
}

// StatusOf 返回 APIError 的状态码；其它错误为 0
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// MessageOf 优先取服务端返回的 message
func MessageOf(err error, fallback string) string {
	var ae *APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}

type Client struct {
	base string
	hc   *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

func WithToken(tok string) Option { return func(c *Client) { c.token = tok } }

// New baseURL 形如 http://localhost:5000/api
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type authEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
}

type errorBody struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&eb)
		return &APIError{Status: res.StatusCode, Message: eb.Message, Fields: eb.Errors}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// ---- auth ----

// Register 成功后返回用户与令牌；不会自动保存令牌，见 Session
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, string, error) {
	return c.authCall(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	})
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, string, error) {
	return c.authCall(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": password,
	})
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	u, _, err := c.authCall(ctx, http.MethodGet, "/auth/me", nil)
	return u, err
}

func (c *Client) UpdateProfile(ctx context.Context, in ProfileInput) (*User, error) {
	u, _, err := c.authCall(ctx, http.MethodPut, "/auth/profile", in)
	return u, err
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, http.MethodPut, "/auth/change-password", nil, map[string]string{
		"currentPassword": current, "newPassword": next,
	}, nil)
}

func (c *Client) authCall(ctx context.Context, method, path string, in any) (*User, string, error) {
	var out authEnvelope
	if err := c.do(ctx, method, path, nil, in, &out); err != nil {
		return nil, "", err
	}
	return out.User, out.Token, nil
}

// ---- portfolio ----

// ListProjects 支持 category / featured / page / limit
func (c *Client) ListProjects(ctx context.Context, params url.Values) (*List[Project], error) {
	var out List[Project]
	if err := c.do(ctx, http.MethodGet, "/portfolio/projects", params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	return data[*Project](ctx, c, http.MethodGet, "/portfolio/projects/"+url.PathEscape(id), nil)
}

func (c *Client) FeaturedProjects(ctx context.Context) ([]Project, error) {
	return data[[]Project](ctx, c, http.MethodGet, "/portfolio/featured", nil)
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	return data[[]string](ctx, c, http.MethodGet, "/portfolio/categories", nil)
}

func (c *Client) SearchProjects(ctx context.Context, q string, params url.Values) (*List[Project], error) {
	v := url.Values{}
	for k, vs := range params {
		v[k] = append([]string(nil), vs...)
	}
	v.Set("q", q)
	var out List[Project]
	if err := c.do(ctx, http.MethodGet, "/portfolio/search", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	return data[*Project](ctx, c, http.MethodPost, "/portfolio/projects", in)
}

func (c *Client) UpdateProject(ctx context.Context, id string, in ProjectInput) (*Project, error) {
	return data[*Project](ctx, c, http.MethodPut, "/portfolio/projects/"+url.PathEscape(id), in)
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/portfolio/projects/"+url.PathEscape(id), nil, nil, nil)
}

// ---- contact ----

// SubmitContact 返回的 Contact 只包含 id/name/email/subject/createdAt
func (c *Client) SubmitContact(ctx context.Context, in ContactInput) (*Contact, error) {
	return data[*Contact](ctx, c, http.MethodPost, "/contact", in)
}

func (c *Client) ListContacts(ctx context.Context, params url.Values) (*List[Contact], error) {
	var out List[Contact]
	if err := c.do(ctx, http.MethodGet, "/contact", params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetContact(ctx context.Context, id string) (*Contact, error) {
	return data[*Contact](ctx, c, http.MethodGet, "/contact/"+url.PathEscape(id), nil)
}

func (c *Client) UpdateContactStatus(ctx context.Context, id, status string) (*Contact, error) {
	return data[*Contact](ctx, c, http.MethodPut, "/contact/"+url.PathEscape(id)+"/status",
		map[string]string{"status": status})
}

func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/contact/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ContactStats(ctx context.Context) (*ContactStats, error) {
	return data[*ContactStats](ctx, c, http.MethodGet, "/contact/stats/overview", nil)
}

func data[T any](ctx context.Context, c *Client, method, path string, in any) (T, error) {
	var out envelope[T]
	err := c.do(ctx, method, path, nil, in, &out)
	return out.Data, err
}
