package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"everkeep-api/internal/core/auth"
	resp "everkeep-api/internal/transport/http/response"
)

// 下游从 gin context 取当前用户
const (
	KeyUserID = "userId"
	KeyRole   = "role"
)

// AuthJWT 缺失/非法 header 在碰任何存储之前就拒掉
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(resp.HTTPStatus(resp.CodeUnauthorized), resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(resp.HTTPStatus(resp.CodeUnauthorized), resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(resp.HTTPStatus(resp.CodeForbidden), resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}

// OptionalAuth 公共读路径：带合法 token 就识别身份，不带照样放行
func OptionalAuth(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if strings.HasPrefix(ah, "Bearer ") {
			if claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer ")); err == nil {
				c.Set(KeyUserID, claims.UID)
				c.Set(KeyRole, claims.Role)
			}
		}
		c.Next()
	}
}
