package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/service"
	"portfolio-api/internal/transport/http/ez"
	mdw "portfolio-api/internal/transport/http/middleware"
	resp "portfolio-api/internal/transport/http/response"
)

type portfolioModule struct {
	svc   *service.ProjectService
	authn *mdw.Authenticator
}

func (m *portfolioModule) Priority() int { return 20 }

type featuredOut struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Data    []domain.Project `json:"data"`
}

func (m *portfolioModule) Mount(api ez.EZ) {
	pub := api.Group("/portfolio")
	opt := api.Group("/portfolio", m.authn.OptionalAuth())
	admin := api.Group("/portfolio", m.authn.RequireAuth(), mdw.Authorize(domain.RoleAdmin))

	ez.RegisterAction(opt, ez.Action[struct{}, resp.List[domain.Project]]{
		Method: http.MethodGet,
		Path:   "/projects",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.List[domain.Project], error) {
			page, err := m.svc.List(c.Request.Context(), c.Request.URL.Query())
			if err != nil {
				return resp.List[domain.Project]{}, err
			}
			return resp.FromPage(page), nil
		},
	})

	ez.RegisterAction(opt, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodGet,
		Path:   "/projects/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			p, err := m.svc.Get(c.Request.Context(), c.Param("id"))
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.OK(p), nil
		},
	})

	ez.RegisterAction(admin, ez.Action[service.ProjectInput, resp.Resp]{
		Method: http.MethodPost,
		Path:   "/projects",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.ProjectInput) (resp.Resp, error) {
			p, err := m.svc.Create(c.Request.Context(), *in)
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.OKMsg("Project created successfully", p), nil
		},
	})

	ez.RegisterAction(admin, ez.Action[service.ProjectInput, resp.Resp]{
		Method: http.MethodPut,
		Path:   "/projects/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.ProjectInput) (resp.Resp, error) {
			p, err := m.svc.Update(c.Request.Context(), c.Param("id"), *in)
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.OKMsg("Project updated successfully", p), nil
		},
	})

	ez.RegisterAction(admin, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodDelete,
		Path:   "/projects/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			if err := m.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return resp.Resp{}, err
			}
			return resp.Msg("Project deleted successfully"), nil
		},
	})

	ez.RegisterAction(pub, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodGet,
		Path:   "/categories",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			cats, err := m.svc.Categories(c.Request.Context())
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.OK(cats), nil
		},
	})

	ez.RegisterAction(pub, ez.Action[struct{}, featuredOut]{
		Method: http.MethodGet,
		Path:   "/featured",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (featuredOut, error) {
			ps, err := m.svc.Featured(c.Request.Context())
			if err != nil {
				return featuredOut{}, err
			}
			return featuredOut{Success: true, Count: len(ps), Data: ps}, nil
		},
	})

	ez.RegisterAction(pub, ez.Action[struct{}, resp.List[domain.Project]]{
		Method: http.MethodGet,
		Path:   "/search",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.List[domain.Project], error) {
			page, q, err := m.svc.Search(c.Request.Context(), c.Request.URL.Query())
			if err != nil {
				return resp.List[domain.Project]{}, err
			}
			out := resp.FromPage(page)
			out.Query = q
			return out, nil
		},
	})
}
