package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"everkeep-api/internal/core/auth"
	"everkeep-api/internal/core/server"
	mdw "everkeep-api/internal/transport/http/middleware"
)

// NewAdminEngine 管理端引擎，整个 /admin/v1 要求 admin 角色
func NewAdminEngine(l *zap.Logger, db *gorm.DB, jwter *auth.JWTer) *gin.Engine {
	r := server.NewRouter(l)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, "admin"))

	reg := NewRegistry()
	reg.Register(newTributeModule(db)) // 追思审核
	reg.Register(newAdminModule(db))   // 用户管理 + 纪念页下架
	reg.MountAllAdmin(admin)

	return r
}
