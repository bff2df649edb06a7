package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"everkeep-api/internal/domain"
	"everkeep-api/internal/service"
	httpez "everkeep-api/internal/transport/http/ez"
	mdw "everkeep-api/internal/transport/http/middleware"
)

type tributeModule struct {
	db  *gorm.DB
	svc *service.TributeService
}

func newTributeModule(db *gorm.DB) *tributeModule {
	return &tributeModule{db: db, svc: service.NewTributeService(db)}
}

type tributeOut struct {
	Tribute *domain.Tribute `json:"tribute"`
	Message string          `json:"message"`
}

func (m *tributeModule) MountAPI(pub, _ *gin.RouterGroup) {
	// 公开写入口单独收紧：每 IP 限速
	grp := pub.Group("")
	grp.Use(mdw.RateLimitPerIP(rate.Limit(1), 5))
	ezPub := httpez.New(grp)

	// --- POST /tributes  公开提交，永远落成 pending ---
	type submitIn struct {
		MemorialID string `json:"memorialId" binding:"required"`
		Content    string `json:"content"    binding:"required"`
		Type       string `json:"type"       binding:"required"`
		AuthorName string `json:"authorName" binding:"required"`
	}
	httpez.RegisterAction[submitIn, tributeOut](ezPub, m.db, httpez.Action[submitIn, tributeOut]{
		Method: http.MethodPost,
		Path:   "/tributes",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *gorm.DB, in *submitIn) (tributeOut, error) {
			t, err := m.svc.Submit(c.Request.Context(), service.SubmitTributeInput{
				MemorialID: in.MemorialID,
				Content:    in.Content,
				Type:       domain.TributeType(in.Type),
				AuthorName: in.AuthorName,
				AuthorID:   c.GetString(mdw.KeyUserID), // 登录用户顺带记上
			})
			if err != nil {
				if service.IsValidation(err) {
					return tributeOut{}, httpez.BadRequest(err.Error())
				}
				return tributeOut{}, err
			}
			return tributeOut{
				Tribute: t,
				Message: "Thank you for your tribute. It will be reviewed before being published.",
			}, nil
		},
	})
}

// MountAdmin 审核工位：pending → approved 的唯一入口
func (m *tributeModule) MountAdmin(admin *gin.RouterGroup) {
	ez := httpez.New(admin)

	type pendingQ struct {
		Offset int `form:"offset,default=0"`
		Limit  int `form:"limit,default=20"`
	}
	type pendingOut struct {
		Total int64            `json:"total"`
		Items []domain.Tribute `json:"items"`
	}
	httpez.RegisterAction[pendingQ, pendingOut](ez, m.db, httpez.Action[pendingQ, pendingOut]{
		Method: http.MethodGet,
		Path:   "/tributes/pending",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, _ *gorm.DB, in *pendingQ) (pendingOut, error) {
			items, total, err := m.svc.Pending(c.Request.Context(), in.Offset, in.Limit)
			if err != nil {
				return pendingOut{}, httpez.Internal("list pending tributes failed", err)
			}
			return pendingOut{Total: total, Items: items}, nil
		},
	})

	httpez.RegisterAction[struct{}, gin.H](ez, m.db, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/tributes/:id/approve",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			if err := m.svc.Approve(c.Request.Context(), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"id": c.Param("id"), "approved": true}, nil
		},
	})

	httpez.RegisterAction[struct{}, gin.H](ez, m.db, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/tributes/:id/reject",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			if err := m.svc.Reject(c.Request.Context(), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"id": c.Param("id")}, nil
		},
	})
}
