package router

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"everkeep-api/internal/domain"
	"everkeep-api/internal/service"
)

type adminFixture struct {
	db       *gorm.DB
	engine   *gin.Engine
	admin    string // admin token
	user     string // plain user token
	memorial *domain.Memorial
	tribute  *domain.Tribute
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	db := newTestDB(t)
	jwter := newTestJWTer()
	ctx := context.Background()

	users := service.NewUserService(db)
	owner, err := users.Register(ctx, service.RegisterInput{
		Email: "owner@example.com", Password: "hunter2hunter2",
		FirstName: "Jane", LastName: "Doe",
	})
	require.NoError(t, err)

	memorials := service.NewMemorialService(db, zap.NewNop())
	m := &domain.Memorial{
		FirstName: "Jane", LastName: "Doe",
		DateOfBirth:   time.Date(1950, 6, 15, 0, 0, 0, 0, time.UTC),
		DateOfPassing: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Theme:         domain.ThemeClassic,
		Privacy:       domain.PrivacyPublic,
		OwnerID:       owner.ID,
	}
	require.NoError(t, memorials.Create(ctx, m))

	tributes := service.NewTributeService(db)
	tr, err := tributes.Submit(ctx, service.SubmitTributeInput{
		MemorialID: m.ID, Content: "A heartfelt goodbye from everyone.",
		Type: domain.TributeMessage, AuthorName: "Alice",
	})
	require.NoError(t, err)

	adminTok, err := jwter.Issue("admin-1", "admin")
	require.NoError(t, err)
	userTok, err := jwter.Issue(owner.ID, "user")
	require.NoError(t, err)

	return &adminFixture{
		db:       db,
		engine:   NewAdminEngine(zap.NewNop(), db, jwter),
		admin:    adminTok,
		user:     userTok,
		memorial: m,
		tribute:  tr,
	}
}

func TestAdminRequiresAdminRole(t *testing.T) {
	f := newAdminFixture(t)

	w, _ := doJSON(t, f.engine, http.MethodGet, "/admin/v1/tributes/pending", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, f.engine, http.MethodGet, "/admin/v1/tributes/pending", f.user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminModeration(t *testing.T) {
	f := newAdminFixture(t)

	// 审核队列
	w, env := doJSON(t, f.engine, http.MethodGet, "/admin/v1/tributes/pending", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pending struct {
		Total int64            `json:"total"`
		Items []domain.Tribute `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	assert.Equal(t, int64(1), pending.Total)

	// 批准
	w, _ = doJSON(t, f.engine, http.MethodPost, "/admin/v1/tributes/"+f.tribute.ID+"/approve", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tr domain.Tribute
	require.NoError(t, f.db.First(&tr, "id = ?", f.tribute.ID).Error)
	assert.True(t, tr.IsApproved)

	// 已批准的不再出现在队列
	w, env = doJSON(t, f.engine, http.MethodGet, "/admin/v1/tributes/pending", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	assert.Equal(t, int64(0), pending.Total)

	// 不存在的 id → 404
	w, _ = doJSON(t, f.engine, http.MethodPost, "/admin/v1/tributes/no-such-id/approve", f.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRejectDeletes(t *testing.T) {
	f := newAdminFixture(t)

	w, _ := doJSON(t, f.engine, http.MethodPost, "/admin/v1/tributes/"+f.tribute.ID+"/reject", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var n int64
	require.NoError(t, f.db.Model(&domain.Tribute{}).Where("id = ?", f.tribute.ID).Count(&n).Error)
	assert.Equal(t, int64(0), n)
}

func TestAdminUserManagement(t *testing.T) {
	f := newAdminFixture(t)

	w, env := doJSON(t, f.engine, http.MethodGet, "/admin/v1/users?q=jane", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(1), list.Total)

	// 封禁后默认列表不再出现，with_deleted 还能看到
	w, _ = doJSON(t, f.engine, http.MethodPost, "/admin/v1/users/"+f.memorial.OwnerID+"/ban", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, f.engine, http.MethodGet, "/admin/v1/users", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(0), list.Total)

	w, env = doJSON(t, f.engine, http.MethodGet, "/admin/v1/users?with_deleted=true", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(1), list.Total)

	w, _ = doJSON(t, f.engine, http.MethodPost, "/admin/v1/users/no-such-id/ban", f.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminDeactivateMemorial(t *testing.T) {
	f := newAdminFixture(t)

	w, _ := doJSON(t, f.engine, http.MethodPost, "/admin/v1/memorials/"+f.memorial.ID+"/deactivate", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var m domain.Memorial
	require.NoError(t, f.db.First(&m, "id = ?", f.memorial.ID).Error)
	assert.False(t, m.IsActive)
}
