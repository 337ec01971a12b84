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

type authModule struct {
	svc   *service.AuthService
	authn *mdw.Authenticator
}

func (m *authModule) Priority() int { return 10 }

type authOut struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token,omitempty"`
}

func (m *authModule) Mount(api ez.EZ) {
	pub := api.Group("/auth")
	priv := api.Group("/auth", m.authn.RequireAuth())

	ez.RegisterAction(pub, ez.Action[service.RegisterInput, authOut]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.RegisterInput) (authOut, error) {
			u, tok, err := m.svc.Register(c.Request.Context(), *in)
			if err != nil {
				return authOut{}, err
			}
			return authOut{Success: true, User: u, Token: tok}, nil
		},
	})

	ez.RegisterAction(pub, ez.Action[service.LoginInput, authOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.LoginInput) (authOut, error) {
			u, tok, err := m.svc.Login(c.Request.Context(), *in)
			if err != nil {
				return authOut{}, err
			}
			return authOut{Success: true, User: u, Token: tok}, nil
		},
	})

	ez.RegisterAction(priv, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodPost,
		Path:   "/logout",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			id := identity(c)
			if err := m.svc.Logout(c.Request.Context(), id.TokenID, id.ExpiresAt); err != nil {
				return resp.Resp{}, err
			}
			return resp.Msg("Logged out successfully"), nil
		},
	})

	ez.RegisterAction(priv, ez.Action[struct{}, authOut]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (authOut, error) {
			u, err := m.svc.Me(c.Request.Context(), identity(c).UserID)
			if err != nil {
				return authOut{}, err
			}
			return authOut{Success: true, User: u}, nil
		},
	})

	ez.RegisterAction(priv, ez.Action[service.ProfileInput, authOut]{
		Method: http.MethodPut,
		Path:   "/profile",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.ProfileInput) (authOut, error) {
			u, err := m.svc.UpdateProfile(c.Request.Context(), identity(c).UserID, *in)
			if err != nil {
				return authOut{}, err
			}
			return authOut{Success: true, Message: "Profile updated successfully", User: u}, nil
		},
	})

	ez.RegisterAction(priv, ez.Action[service.ChangePasswordInput, resp.Resp]{
		Method: http.MethodPut,
		Path:   "/change-password",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.ChangePasswordInput) (resp.Resp, error) {
			if err := m.svc.ChangePassword(c.Request.Context(), identity(c).UserID, *in); err != nil {
				return resp.Resp{}, err
			}
			return resp.Msg("Password changed successfully"), nil
		},
	})
}

// identity 只在 RequireAuth 之后调用
func identity(c *gin.Context) *mdw.Identity {
	id, _ := mdw.IdentityFrom(c)
	return id
}
