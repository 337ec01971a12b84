package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "portfolio-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；超限由绑定层返回 413
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp.Error("request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
