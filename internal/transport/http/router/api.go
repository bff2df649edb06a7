package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"everkeep-api/internal/core/auth"
	"everkeep-api/internal/core/cache"
	"everkeep-api/internal/core/storage"
	mdw "everkeep-api/internal/transport/http/middleware"
)

// NewAPIEngine 用户端引擎：公共读 + 鉴权写
// media / c 允许为 nil（未配置对象存储 / redis 时降级运行）
func NewAPIEngine(l *zap.Logger, db *gorm.DB, jwter *auth.JWTer, c *cache.Cache, media *storage.MediaStore) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	// 健康检查 + 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	// 公共路径带 token 也识别身份（非公开纪念页只有所有者能看）
	api.Use(mdw.OptionalAuth(jwter))

	authed := api.Group("")
	authed.Use(mdw.AuthJWT(jwter, ""))

	reg := NewRegistry()
	reg.Register(newAuthModule(db, jwter))
	reg.Register(newMemorialModule(db, l, c, media))
	reg.Register(newTributeModule(db))
	reg.MountAllAPI(api, authed)

	return r
}
