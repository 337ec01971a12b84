package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"portfolio-api/internal/core/config"
	"portfolio-api/internal/core/server"
	"portfolio-api/internal/service"
	"portfolio-api/internal/transport/http/ez"
	mdw "portfolio-api/internal/transport/http/middleware"
	resp "portfolio-api/internal/transport/http/response"
)

type Deps struct {
	Log      *zap.Logger
	Config   *config.Config
	Authn    *mdw.Authenticator
	Auth     *service.AuthService
	Projects *service.ProjectService
	Contacts *service.ContactService

	// Now 为空时使用 time.Now（健康检查的时间戳）
	Now func() time.Time
}

func NewAPIEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	lim := d.Config.Limits
	r := server.NewRouter(d.Log, d.Config.App.CORSOrigins)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(time.Duration(lim.TimeoutSec)*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Portfolio API is running",
			"timestamp": d.Now().UTC().Format(time.RFC3339),
			"env":       d.Config.App.Env,
		})
	})

	var reg registry
	reg.Register(
		&authModule{svc: d.Auth, authn: d.Authn},
		&portfolioModule{svc: d.Projects, authn: d.Authn},
		&contactModule{svc: d.Contacts, authn: d.Authn, perMinute: d.Config.Limits.ContactPerMinute},
	)
	reg.MountAll(ez.New(api, d.Log))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, resp.Error("Route not found"))
	})
	return r
}
