package router

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"everkeep-api/internal/core/cache"
	"everkeep-api/internal/core/storage"
	"everkeep-api/internal/domain"
	"everkeep-api/internal/service"
	httpez "everkeep-api/internal/transport/http/ez"
	mdw "everkeep-api/internal/transport/http/middleware"
	resp "everkeep-api/internal/transport/http/response"
)

const (
	dateLayout = "2006-01-02"

	// 只缓存落地页第一屏；写路径统一失效这个 key
	publicListCacheKey = "memorials:public:first"
	publicListCacheTTL = 30 * time.Second
)

type memorialModule struct {
	db    *gorm.DB
	log   *zap.Logger
	svc   *service.MemorialService
	cache *cache.Cache
	media *storage.MediaStore
}

func newMemorialModule(db *gorm.DB, log *zap.Logger, c *cache.Cache, media *storage.MediaStore) *memorialModule {
	return &memorialModule{
		db: db, log: log,
		svc:   service.NewMemorialService(db, log),
		cache: c, media: media,
	}
}

type publicListOut struct {
	Memorials []domain.MemorialCard `json:"memorials"`
	Total     int64                 `json:"total"`
}

func (m *memorialModule) MountAPI(pub, authed *gin.RouterGroup) {
	ezPub := httpez.New(pub)
	ezAuth := httpez.New(authed)

	// --- GET /memorials  公共列表，仅 PUBLIC + active，最新在前 ---
	type listQ struct {
		Page  int `form:"page,default=1"`
		Limit int `form:"limit,default=12"`
	}
	httpez.RegisterAction[listQ, *publicListOut](ezPub, m.db, httpez.Action[listQ, *publicListOut]{
		Method: http.MethodGet,
		Path:   "/memorials",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, _ *gorm.DB, in *listQ) (*publicListOut, error) {
			load := func(ctx2 context.Context) (*publicListOut, error) {
				cards, total, err := m.svc.ListPublic(ctx2, in.Page, in.Limit)
				if err != nil {
					return nil, httpez.Internal("list memorials failed", err)
				}
				return &publicListOut{Memorials: cards, Total: total}, nil
			}
			if in.Page == 1 && in.Limit == 12 {
				return cache.GetOrLoadJSON[publicListOut](m.cache, c.Request.Context(), publicListCacheKey, publicListCacheTTL, load)
			}
			return load(c.Request.Context())
		},
	})

	// --- GET /memorials/:slug  详情聚合 ---
	httpez.RegisterAction[struct{}, *service.MemorialDetail](ezPub, m.db, httpez.Action[struct{}, *service.MemorialDetail]{
		Method: http.MethodGet,
		Path:   "/memorials/:slug",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (*service.MemorialDetail, error) {
			return m.svc.Detail(c.Request.Context(), c.Param("slug"), c.GetString(mdw.KeyUserID))
		},
	})

	// --- POST /memorials/:slug/view  无鉴权，无去重，每次 +1 ---
	httpez.RegisterAction[struct{}, gin.H](ezPub, m.db, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/memorials/:slug/view",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			if err := m.svc.RecordView(c.Request.Context(), c.Param("slug")); err != nil {
				return nil, err
			}
			mdw.CountMemorialView()
			return gin.H{"success": true}, nil
		},
	})

	// --- POST /memorials  multipart 创建（带可选头像）---
	authed.POST("/memorials", m.handleCreate)

	// --- POST /memorials/:slug/avatar  换头像 ---
	authed.POST("/memorials/:slug/avatar", m.handleAvatar)

	// --- GET /me/memorials  我的纪念页 ---
	httpez.RegisterAction[struct{}, []domain.Memorial](ezAuth, m.db, httpez.Action[struct{}, []domain.Memorial]{
		Method: http.MethodGet,
		Path:   "/me/memorials",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) ([]domain.Memorial, error) {
			return m.svc.ListByOwner(c.Request.Context(), c.GetString(mdw.KeyUserID))
		},
	})

	// --- PUT /memorials/:id  所有者部分更新 ---
	type updateIn struct {
		Biography  *string `json:"biography"`
		Location   *string `json:"location"`
		Theme      *string `json:"theme"`
		Privacy    *string `json:"privacy"`
		CoverImage *string `json:"coverImage"`
		MusicURL   *string `json:"musicUrl"`
		MusicTitle *string `json:"musicTitle"`
	}
	httpez.RegisterAction[updateIn, *domain.Memorial](ezAuth, m.db, httpez.Action[updateIn, *domain.Memorial]{
		Method: http.MethodPut,
		Path:   "/memorials/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, in *updateIn) (*domain.Memorial, error) {
			fields := map[string]any{}
			if in.Biography != nil {
				fields["biography"] = *in.Biography
			}
			if in.Location != nil {
				fields["location"] = *in.Location
			}
			if in.Theme != nil {
				if !domain.Theme(*in.Theme).Valid() {
					return nil, httpez.BadRequest("unknown theme")
				}
				fields["theme"] = *in.Theme
			}
			if in.Privacy != nil {
				if !domain.Privacy(*in.Privacy).Valid() {
					return nil, httpez.BadRequest("unknown privacy")
				}
				fields["privacy"] = *in.Privacy
			}
			if in.CoverImage != nil {
				fields["cover_image"] = *in.CoverImage
			}
			if in.MusicURL != nil {
				fields["music_url"] = *in.MusicURL
			}
			if in.MusicTitle != nil {
				fields["music_title"] = *in.MusicTitle
			}
			out, err := m.svc.UpdateFields(c.Request.Context(), c.Param("id"), c.GetString(mdw.KeyUserID), fields)
			if err != nil {
				if errors.Is(err, service.ErrNotOwner) {
					return nil, httpez.Forbidden("not the owner")
				}
				return nil, err
			}
			m.cache.Invalidate(c.Request.Context(), publicListCacheKey)
			return out, nil
		},
	})

	// --- DELETE /memorials/:id  下线（不硬删）---
	httpez.RegisterAction[struct{}, gin.H](ezAuth, m.db, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/memorials/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			err := m.svc.Deactivate(c.Request.Context(), c.Param("id"), c.GetString(mdw.KeyUserID))
			if err != nil {
				if errors.Is(err, service.ErrNotOwner) {
					return nil, httpez.Forbidden("not the owner")
				}
				return nil, err
			}
			m.cache.Invalidate(c.Request.Context(), publicListCacheKey)
			return gin.H{"id": c.Param("id")}, nil
		},
	})

	m.mountCrud(authed)
}

// handleCreate 鉴权 → 校验 → 可选头像上传 → slug 分配 → 落库
// 头像上传成功但落库失败会留下孤儿对象，这里不做补偿
func (m *memorialModule) handleCreate(c *gin.Context) {
	uid := c.GetString(mdw.KeyUserID)
	if uid == "" {
		c.JSON(resp.HTTPStatus(resp.CodeUnauthorized), resp.Error(resp.CodeUnauthorized, "unauthorized"))
		return
	}

	var in struct {
		FirstName     string `form:"firstName" binding:"required,max=64"`
		LastName      string `form:"lastName"  binding:"required,max=64"`
		DateOfBirth   string `form:"dateOfBirth"   binding:"required"`
		DateOfPassing string `form:"dateOfPassing" binding:"required"`
		Biography     string `form:"biography"`
		Location      string `form:"location"`
		Theme         string `form:"theme"   binding:"required"`
		Privacy       string `form:"privacy" binding:"required"`
		MusicURL      string `form:"musicUrl"`
		MusicTitle    string `form:"musicTitle"`
	}
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(resp.HTTPStatus(resp.CodeBadRequest), resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	birth, err := time.Parse(dateLayout, in.DateOfBirth)
	if err != nil {
		c.JSON(resp.HTTPStatus(resp.CodeBadRequest), resp.Error(resp.CodeBadRequest, "invalid dateOfBirth"))
		return
	}
	passing, err := time.Parse(dateLayout, in.DateOfPassing)
	if err != nil {
		c.JSON(resp.HTTPStatus(resp.CodeBadRequest), resp.Error(resp.CodeBadRequest, "invalid dateOfPassing"))
		return
	}

	mem := &domain.Memorial{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		DateOfBirth:   birth,
		DateOfPassing: passing,
		Biography:     in.Biography,
		Location:      in.Location,
		Theme:         domain.Theme(in.Theme),
		Privacy:       domain.Privacy(in.Privacy),
		MusicURL:      in.MusicURL,
		MusicTitle:    in.MusicTitle,
		OwnerID:       uid,
	}

	// 可选头像；空文件跳过，上传失败整个创建中止
	if fh, err := c.FormFile("avatar"); err == nil && fh != nil && fh.Size > 0 {
		url, err := m.uploadFile(c, storage.FolderAvatars, fh.Filename, fh)
		if err != nil {
			m.log.Error("avatar upload failed", zap.Error(err))
			c.JSON(resp.HTTPStatus(resp.CodeServerError), resp.Error(resp.CodeServerError, "avatar upload failed"))
			return
		}
		mem.Avatar = url
	}

	if err := m.svc.Create(c.Request.Context(), mem); err != nil {
		if service.IsValidation(err) {
			c.JSON(resp.HTTPStatus(resp.CodeBadRequest), resp.Error(resp.CodeBadRequest, err.Error()))
			return
		}
		m.log.Error("create memorial failed", zap.Error(err))
		c.JSON(resp.HTTPStatus(resp.CodeServerError), resp.Error(resp.CodeServerError, "failed to create memorial"))
		return
	}

	m.cache.Invalidate(c.Request.Context(), publicListCacheKey)
	c.JSON(http.StatusCreated, resp.OK(mem))
}

func (m *memorialModule) handleAvatar(c *gin.Context) {
	uid := c.GetString(mdw.KeyUserID)
	mem, err := m.svc.Repo().FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httpez.WriteError(c, err)
		return
	}
	if mem.OwnerID != uid {
		c.JSON(resp.HTTPStatus(resp.CodeForbidden), resp.Error(resp.CodeForbidden, "not the owner"))
		return
	}
	fh, err := c.FormFile("avatar")
	if err != nil || fh == nil || fh.Size == 0 {
		c.JSON(resp.HTTPStatus(resp.CodeBadRequest), resp.Error(resp.CodeBadRequest, "no file uploaded"))
		return
	}
	url, err := m.uploadFile(c, storage.FolderAvatars, fh.Filename, fh)
	if err != nil {
		m.log.Error("avatar upload failed", zap.Error(err))
		c.JSON(resp.HTTPStatus(resp.CodeServerError), resp.Error(resp.CodeServerError, "avatar upload failed"))
		return
	}
	if err := m.svc.Repo().Updates(c.Request.Context(), mem.ID, map[string]any{"avatar": url}); err != nil {
		httpez.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"avatar": url}))
}

func (m *memorialModule) uploadFile(c *gin.Context, folder, name string, fh *multipart.FileHeader) (string, error) {
	if m.media == nil {
		return "", errors.New("media storage not configured")
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return m.media.Upload(c.Request.Context(), folder, name, f, fh.Size)
}

// requireMemorialOwner photos/timeline 的 BeforeCreate 钩子用
func (m *memorialModule) requireMemorialOwner(c *gin.Context, memorialID string) error {
	if memorialID == "" {
		return httpez.BadRequest("memorialId is required")
	}
	mem, err := m.svc.Repo().FindByID(c.Request.Context(), memorialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpez.NotFound("memorial not found")
		}
		return httpez.Internal("lookup memorial failed", err)
	}
	if mem.OwnerID != c.GetString(mdw.KeyUserID) {
		return httpez.Forbidden("not the owner")
	}
	return nil
}

// mountCrud 附属资源：相册照片 + 生平时间线
func (m *memorialModule) mountCrud(authed *gin.RouterGroup) {
	httpez.Crud[domain.Photo](httpez.CrudConfig[domain.Photo]{
		DB:    m.db,
		Group: authed,
		Path:  "/photos",
		New:   func() *domain.Photo { return &domain.Photo{} },

		OwnerField: "UploadedByID",
		OrderBy:    "created_at desc",

		AllowCreate: true,
		AllowList:   true,
		AllowGet:    true,
		AllowDelete: true,

		Hooks: httpez.CrudHooks[domain.Photo]{
			BeforeCreate: func(c *gin.Context, p *domain.Photo) error {
				if p.URL == "" {
					return httpez.BadRequest("url is required")
				}
				return m.requireMemorialOwner(c, p.MemorialID)
			},
			ScopeList: func(c *gin.Context, q *gorm.DB) *gorm.DB {
				if mid := c.Query("memorial_id"); mid != "" {
					q = q.Where("memorial_id = ?", mid)
				}
				return q
			},
		},
	})

	httpez.Crud[domain.TimelineEvent](httpez.CrudConfig[domain.TimelineEvent]{
		DB:    m.db,
		Group: authed,
		Path:  "/timeline-events",
		New:   func() *domain.TimelineEvent { return &domain.TimelineEvent{} },

		OwnerField: "CreatedByID",
		OrderBy:    "date asc",

		Hooks: httpez.CrudHooks[domain.TimelineEvent]{
			BeforeCreate: func(c *gin.Context, e *domain.TimelineEvent) error {
				if e.Title == "" {
					return httpez.BadRequest("title is required")
				}
				if e.Date.IsZero() {
					return httpez.BadRequest("date is required")
				}
				return m.requireMemorialOwner(c, e.MemorialID)
			},
			BeforeUpdate: func(c *gin.Context, e *domain.TimelineEvent) error {
				return m.requireMemorialOwner(c, e.MemorialID)
			},
			ScopeList: func(c *gin.Context, q *gorm.DB) *gorm.DB {
				if mid := c.Query("memorial_id"); mid != "" {
					q = q.Where("memorial_id = ?", mid)
				}
				return q
			},
		},
	})
}
