package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/service"
	"portfolio-api/internal/transport/http/ez"
	mdw "portfolio-api/internal/transport/http/middleware"
	resp "portfolio-api/internal/transport/http/response"
)

type contactModule struct {
	svc       *service.ContactService
	authn     *mdw.Authenticator
	perMinute int
}

func (m *contactModule) Priority() int { return 30 }

// submitted 只回显提交者可见的字段
type submitted struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m *contactModule) Mount(api ez.EZ) {
	admin := api.Group("/contact", m.authn.RequireAuth(), mdw.Authorize(domain.RoleAdmin))

	ez.RegisterAction(api, ez.Action[service.ContactInput, resp.Resp]{
		Method: http.MethodPost,
		Path:   "/contact",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Middleware: []gin.HandlerFunc{
			mdw.RateLimitPerIP(mdw.PerMinute(m.perMinute), max(1, m.perMinute), "Too many messages sent, please try again later"),
		},
		Handler: func(c *gin.Context, in *service.ContactInput) (resp.Resp, error) {
			msg, err := m.svc.Submit(c.Request.Context(), *in, service.ClientInfo{
				IP:        c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
			})
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.OKMsg("Message sent successfully. I will get back to you soon!", submitted{
				ID:        msg.ID,
				Name:      msg.Name,
				Email:     msg.Email,
				Subject:   msg.Subject,
				CreatedAt: msg.CreatedAt,
			}), nil
		},
	})

	ez.RegisterAction(admin, ez.Action[struct{}, resp.List[domain.Contact]]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.List[domain.Contact], error) {
			page, err := m.svc.List(c.Request.Context(), c.Request.URL.Query())
			if err != nil {
				return resp.List[domain.Contact]{}, err
			}
			return resp.FromPage(page), nil
		},
	})

	ez.RegisterAction(admin, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodGet,
		Path:   "/stats/overview",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			st, err := m.svc.Stats(c.Request.Context())
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.OK(st), nil
		},
	})

	ez.RegisterAction(admin, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			msg, err := m.svc.Get(c.Request.Context(), c.Param("id"))
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.OK(msg), nil
		},
	})

	ez.RegisterAction(admin, ez.Action[service.StatusInput, resp.Resp]{
		Method: http.MethodPut,
		Path:   "/:id/status",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.StatusInput) (resp.Resp, error) {
			msg, err := m.svc.UpdateStatus(c.Request.Context(), c.Param("id"), in.Status)
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.OKMsg("Message status updated successfully", msg), nil
		},
	})

	ez.RegisterAction(admin, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			if err := m.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return resp.Resp{}, err
			}
			return resp.Msg("Message deleted successfully"), nil
		},
	})
}
