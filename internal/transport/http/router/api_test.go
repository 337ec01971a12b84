package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/core/auth"
	"portfolio-api/internal/core/config"
	"portfolio-api/internal/core/database"
	"portfolio-api/internal/domain"
	"portfolio-api/internal/repo"
	"portfolio-api/internal/service"
	mdw "portfolio-api/internal/transport/http/middleware"
	"portfolio-api/pkg/utils"
)

type harness struct {
	t      *testing.T
	engine *gin.Engine
	jwt    *auth.JWTer
	users  *repo.UserRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1, LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db))

	mr := miniredis.RunT(t)
	deny := &auth.RedisDenylist{RDB: redis.NewClient(&redis.Options{Addr: mr.Addr()}), Prefix: "auth:revoked:"}

	j := &auth.JWTer{Secret: []byte("router-test-secret-0123456789"), Issuer: "portfolio-api", TTL: time.Hour}
	users := repo.NewUserRepo(db)
	cfg := &config.Config{
		App: config.App{Env: "test"},
		Limits: config.Limits{
			RPS: 1000, Burst: 1000, Concurrency: 100,
			MaxBodyBytes: 1 << 20, TimeoutSec: 5, ContactPerMinute: 3,
		},
	}
	engine := NewAPIEngine(Deps{
		Config:   cfg,
		Authn:    &mdw.Authenticator{Tokens: j, Users: users, Deny: deny},
		Auth:     service.NewAuthService(users, j, deny),
		Projects: service.NewProjectService(repo.NewProjectRepo(db)),
		Contacts: service.NewContactService(repo.NewContactRepo(db)),
	})
	return &harness{t: t, engine: engine, jwt: j, users: users}
}

func (h *harness) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (h *harness) userToken(role domain.Role) string {
	h.t.Helper()
	hash, err := utils.HashPassword("Secret1")
	require.NoError(h.t, err)
	u := &domain.User{ID: utils.NewID(), Name: gofakeit.Name(), Email: gofakeit.Email(), PasswordHash: hash, Role: role}
	require.NoError(h.t, h.users.Create(context.Background(), u))
	tok, err := h.jwt.Issue(u.ID)
	require.NoError(h.t, err)
	return tok
}

func projectBody(title, category string, featured bool, order int) map[string]any {
	return map[string]any{
		"title":            title,
		"description":      "Description of " + title,
		"shortDescription": "Short " + title,
		"image":            "https://example.com/img.png",
		"technologies":     []string{"Go", "React"},
		"category":         category,
		"featured":         featured,
		"order":            order,
		"startDate":        "2024-01-01",
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	w, body := h.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "test", body["env"])

	w, body = h.do(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)

	w, body := h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ada Lovelace", "email": "Ada@Example.com", "password": "Secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, w.Body.String(), "passwordHash")

	w, _ = h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ada Again", "email": "ada@example.com", "password": "Secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Bob", "email": "bob@example.com", "password": "weakpw",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])

	w, body = h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Bob", "email": "bob@example.com", "password": "Aa1" + strings.Repeat("x", 80),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Contains(t, w.Body.String(), `"field":"password"`)

	w, body = h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, body["token"])

	w, body = h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "Secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	tok := body["token"].(string)

	w, body = h.do(http.MethodGet, "/api/auth/me", tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada Lovelace", body["user"].(map[string]any)["name"])

	w, body = h.do(http.MethodPut, "/api/auth/profile", tok, map[string]string{"name": "Ada L."})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada L.", body["user"].(map[string]any)["name"])

	w, _ = h.do(http.MethodPut, "/api/auth/change-password", tok, map[string]string{
		"currentPassword": "nope", "newPassword": "Better2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = h.do(http.MethodPut, "/api/auth/change-password", tok, map[string]string{
		"currentPassword": "Secret1", "newPassword": "Better2",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(http.MethodPost, "/api/auth/logout", tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = h.do(http.MethodGet, "/api/auth/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = h.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProjects_AdminGateAndOrdering(t *testing.T) {
	h := newHarness(t)
	admin := h.userToken(domain.RoleAdmin)
	user := h.userToken(domain.RoleUser)

	w, _ := h.do(http.MethodPost, "/api/portfolio/projects", "", projectBody("x", "web", false, 0))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = h.do(http.MethodPost, "/api/portfolio/projects", user, projectBody("x", "web", false, 0))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := h.do(http.MethodPost, "/api/portfolio/projects", admin, projectBody("x", "games", false, 0))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", body["message"])

	for _, p := range []map[string]any{
		projectBody("first", "web", true, 1),
		projectBody("second", "web", true, 2),
		projectBody("plain", "web", false, 0),
	} {
		w, _ = h.do(http.MethodPost, "/api/portfolio/projects", admin, p)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, body = h.do(http.MethodGet, "/api/portfolio/projects", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []float64
	for _, p := range body["data"].([]any) {
		orders = append(orders, p.(map[string]any)["order"].(float64))
	}
	assert.Equal(t, []float64{1, 2, 0}, orders)
	assert.EqualValues(t, 3, body["total"])
	assert.EqualValues(t, 1, body["pages"])

	// 携带无效令牌的可选鉴权路由按匿名处理
	w, _ = h.do(http.MethodGet, "/api/portfolio/projects", "garbage", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = h.do(http.MethodGet, "/api/portfolio/featured", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["count"])

	w, body = h.do(http.MethodGet, "/api/portfolio/categories", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"web"}, body["data"])

	w, _ = h.do(http.MethodGet, "/api/portfolio/projects?limit=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = h.do(http.MethodGet, "/api/portfolio/projects?limit=101", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = h.do(http.MethodGet, "/api/portfolio/projects?page=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjects_PagingAndSearch(t *testing.T) {
	h := newHarness(t)
	admin := h.userToken(domain.RoleAdmin)
	for i := 0; i < 4; i++ {
		w, _ := h.do(http.MethodPost, "/api/portfolio/projects", admin, projectBody(fmt.Sprintf("app %d", i), "mobile", false, i))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, body := h.do(http.MethodGet, "/api/portfolio/projects?category=mobile&page=2&limit=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)
	assert.EqualValues(t, 1, body["count"])
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 4, body["pages"])

	w, body = h.do(http.MethodGet, "/api/portfolio/projects?category=desktop", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["total"])
	assert.EqualValues(t, 0, body["pages"])
	assert.Equal(t, []any{}, body["data"])

	w, _ = h.do(http.MethodGet, "/api/portfolio/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = h.do(http.MethodGet, "/api/portfolio/search?q=", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = h.do(http.MethodGet, "/api/portfolio/search?q=APP%202", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "APP 2", body["query"])
	assert.EqualValues(t, 1, body["count"])

	w, body = h.do(http.MethodGet, "/api/portfolio/search?q=react", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, body["total"])
}

func TestProjects_GetUpdateDelete(t *testing.T) {
	h := newHarness(t)
	admin := h.userToken(domain.RoleAdmin)

	w, body := h.do(http.MethodPost, "/api/portfolio/projects", admin, projectBody("shop", "web", false, 0))
	require.Equal(t, http.StatusCreated, w.Code)
	id := body["data"].(map[string]any)["id"].(string)

	w, body = h.do(http.MethodGet, "/api/portfolio/projects/"+id, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shop", body["data"].(map[string]any)["title"])

	w, body = h.do(http.MethodPut, "/api/portfolio/projects/"+id, admin, projectBody("shop v2", "web", true, 3))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shop v2", body["data"].(map[string]any)["title"])

	w, _ = h.do(http.MethodPut, "/api/portfolio/projects/missing", admin, projectBody("x", "web", true, 3))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = h.do(http.MethodDelete, "/api/portfolio/projects/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, body = h.do(http.MethodGet, "/api/portfolio/projects/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Project not found", body["message"])
}

func TestContact_Lifecycle(t *testing.T) {
	h := newHarness(t)
	admin := h.userToken(domain.RoleAdmin)
	user := h.userToken(domain.RoleUser)

	msg := map[string]string{
		"name": "Grace", "email": "grace@example.com",
		"subject": "Hello there", "message": "I would like to talk about a project.",
	}
	w, body := h.do(http.MethodPost, "/api/contact", "", msg)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := body["data"].(map[string]any)
	id := data["id"].(string)
	assert.Nil(t, data["status"])

	w, _ = h.do(http.MethodPost, "/api/contact", "", map[string]string{"name": "G", "email": "x", "subject": "hi", "message": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = h.do(http.MethodGet, "/api/contact", user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = h.do(http.MethodGet, "/api/contact?status=new", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])
	first := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "new", first["status"])

	w, body = h.do(http.MethodGet, "/api/contact/"+id, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "read", body["data"].(map[string]any)["status"])

	w, body = h.do(http.MethodGet, "/api/contact/stats/overview", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := body["data"].(map[string]any)
	assert.EqualValues(t, 1, stats["total"])
	assert.EqualValues(t, 1, stats["read"])
	assert.EqualValues(t, 0, stats["new"])
	assert.EqualValues(t, 1, stats["recent"])

	w, _ = h.do(http.MethodPut, "/api/contact/"+id+"/status", admin, map[string]string{"status": "spam"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, body = h.do(http.MethodPut, "/api/contact/"+id+"/status", admin, map[string]string{"status": "replied"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "replied", body["data"].(map[string]any)["status"])

	w, _ = h.do(http.MethodDelete, "/api/contact/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, body = h.do(http.MethodDelete, "/api/contact/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Message not found", body["message"])
}

func TestContact_RateLimited(t *testing.T) {
	h := newHarness(t)
	msg := map[string]string{
		"name": "Grace", "email": "grace@example.com",
		"subject": "Hello there", "message": "I would like to talk about a project.",
	}
	for i := 0; i < 3; i++ {
		w, _ := h.do(http.MethodPost, "/api/contact", "", msg)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w, body := h.do(http.MethodPost, "/api/contact", "", msg)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodGet, "/api/health", "", nil)
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
