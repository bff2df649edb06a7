package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"everkeep-api/internal/domain"
	"everkeep-api/internal/repo"
	httpez "everkeep-api/internal/transport/http/ez"
)

// adminModule 运营工位：用户管理 + 纪念页下架
type adminModule struct {
	db        *gorm.DB
	memorials *repo.MemorialRepo
}

func newAdminModule(db *gorm.DB) *adminModule {
	return &adminModule{db: db, memorials: repo.NewMemorialRepo(db)}
}

func (m *adminModule) MountAdmin(admin *gin.RouterGroup) {
	ez := httpez.New(admin)

	// --- GET /users  用户列表 ---
	type listQ struct {
		Offset      int    `form:"offset,default=0"`
		Limit       int    `form:"limit,default=20"`
		Q           string `form:"q"`            // 按 email/姓名模糊搜
		WithDeleted bool   `form:"with_deleted"` // 是否包含已封禁（软删）
	}
	type row struct {
		ID        string      `json:"id"`
		Email     string      `json:"email"`
		FirstName string      `json:"firstName"`
		LastName  string      `json:"lastName"`
		Plan      domain.Plan `json:"plan"`
		Role      string      `json:"role"`
		CreatedAt time.Time   `json:"createdAt"`
	}
	type listOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}
	httpez.RegisterAction[listQ, listOut](ez, m.db, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			q := tx.Model(&domain.User{})
			if in.WithDeleted {
				q = q.Unscoped()
			}
			if s := strings.TrimSpace(in.Q); s != "" {
				like := "%" + s + "%"
				q = q.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
			}

			var total int64
			if err := q.Count(&total).Error; err != nil {
				return listOut{}, httpez.Internal("count users failed", err)
			}
			var us []domain.User
			if err := q.Order("created_at DESC").Limit(in.Limit).Offset(in.Offset).Find(&us).Error; err != nil {
				return listOut{}, httpez.Internal("list users failed", err)
			}

			out := listOut{Total: total, Items: make([]row, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, row{
					ID: u.ID, Email: u.Email,
					FirstName: u.FirstName, LastName: u.LastName,
					Plan: u.Plan, Role: u.Role, CreatedAt: u.CreatedAt,
				})
			}
			return out, nil
		},
	})

	// --- POST /users/:id/ban  封禁（软删） ---
	httpez.RegisterAction[struct{}, gin.H](ez, m.db, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if id == "" {
				return nil, httpez.BadRequest("missing id")
			}
			res := tx.Where("id = ?", id).Delete(&domain.User{})
			if res.Error != nil {
				return nil, httpez.Internal("ban user failed", res.Error)
			}
			if res.RowsAffected == 0 {
				return nil, httpez.NotFound("user not found")
			}
			return gin.H{"id": id}, nil
		},
	})

	// --- POST /memorials/:id/deactivate  运营下架 ---
	httpez.RegisterAction[struct{}, gin.H](ez, m.db, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/memorials/:id/deactivate",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			if err := m.memorials.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"id": c.Param("id"), "isActive": false}, nil
		},
	})
}
