package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "everkeep-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；头像/照片走 multipart，上限给到 16MB
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Err() != nil && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp.Error(resp.CodeBadRequest, "request body too large"))
		}
	}
}
