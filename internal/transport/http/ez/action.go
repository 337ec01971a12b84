package ez

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "portfolio-api/internal/transport/http/response"
)

// 请求 ID 在 gin.Context 中的 key，与 middleware.RequestID 一致
const ridKey = "X-Request-ID"

type EZ struct {
	g *gin.RouterGroup
	l *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, l: l}
}

// Group 在当前分组下创建子分组，并挂上中间件
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), l: e.l}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"
)

// 统一错误对象
type AErr struct {
	Code   int
	Msg    string
	Err    error
	Fields []resp.FieldError
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error      { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error    { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error       { return &AErr{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error        { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Conflict(msg string) error        { return &AErr{Code: http.StatusConflict, Msg: msg} }
func TooManyRequests(msg string) error { return &AErr{Code: http.StatusTooManyRequests, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// 动作定义：I 入参，O 为完整响应体
type Action[I any, O any] struct {
	Method     string // "GET" | "POST" | "PUT" | "DELETE"
	Path       string
	Binder     Binder
	Status     int // 成功状态码，默认 200
	Middleware []gin.HandlerFunc
	Handler    func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			e.fail(c, FromBindError(bindErr))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		c.JSON(status, out)
	}

	handlers := append(append([]gin.HandlerFunc(nil), a.Middleware...), h)
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, handlers...)
	case http.MethodPut:
		e.g.PUT(a.Path, handlers...)
	case http.MethodDelete:
		e.g.DELETE(a.Path, handlers...)
	default: // 默认 POST
		e.g.POST(a.Path, handlers...)
	}
}

// fail 写出错误响应；5xx 只返回通用提示，原因写日志
func (e EZ) fail(c *gin.Context, err error) {
	ae := FromError(err)
	if ae.Code >= http.StatusInternalServerError {
		e.l.Error("request failed",
			zap.String("rid", c.GetString(ridKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(ae.Code, resp.Error("internal server error"))
		return
	}
	if len(ae.Fields) > 0 {
		c.AbortWithStatusJSON(ae.Code, resp.Invalid(ae.Msg, ae.Fields))
		return
	}
	c.AbortWithStatusJSON(ae.Code, resp.Error(ae.Error()))
}
