package router

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"everkeep-api/internal/core/auth"
	"everkeep-api/internal/core/database"
	"everkeep-api/internal/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Memorial{},
		&domain.Photo{},
		&domain.Tribute{},
		&domain.TimelineEvent{},
	))
	return db
}

func newTestJWTer() *auth.JWTer {
	return &auth.JWTer{Secret: []byte("test-secret"), Issuer: "everkeep", TTL: time.Hour}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, e *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	var env envelope
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	}
	return w, env
}

func register(t *testing.T, e *gin.Engine, email string) (token, userID string) {
	t.Helper()
	w, env := doJSON(t, e, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": email, "password": "hunter2hunter2",
		"firstName": "Jane", "lastName": "Doe",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var out struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token, out.User.ID
}

func createMemorial(t *testing.T, e *gin.Engine, token string, fields map[string]string) domain.Memorial {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memorials", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var m domain.Memorial
	require.NoError(t, json.Unmarshal(env.Data, &m))
	return m
}

func janeForm() map[string]string {
	return map[string]string{
		"firstName":     "Jane",
		"lastName":      "Doe",
		"dateOfBirth":   "1950-06-15",
		"dateOfPassing": "2024-06-15",
		"theme":         "CLASSIC",
		"privacy":       "PUBLIC",
		"biography":     "A life well lived.",
	}
}

func TestHealth(t *testing.T) {
	e := NewAPIEngine(zap.NewNop(), newTestDB(t), newTestJWTer(), nil, nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMemorialLifecycle(t *testing.T) {
	e := NewAPIEngine(zap.NewNop(), newTestDB(t), newTestJWTer(), nil, nil)
	token, userID := register(t, e, "jane@example.com")

	m := createMemorial(t, e, token, janeForm())
	assert.Equal(t, "jane-doe", m.Slug)
	assert.Equal(t, userID, m.OwnerID)
	assert.True(t, m.IsActive)

	// 公共列表
	w, env := doJSON(t, e, http.MethodGet, "/api/v1/memorials", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Memorials []domain.MemorialCard `json:"memorials"`
		Total     int64                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Memorials, 1)
	assert.Equal(t, "jane-doe", list.Memorials[0].Slug)

	// 详情聚合
	w, env = doJSON(t, e, http.MethodGet, "/api/v1/memorials/jane-doe", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Slug string `json:"slug"`
		Age  int    `json:"age"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "jane-doe", detail.Slug)
	assert.Equal(t, 74, detail.Age)

	// 浏览计数，无鉴权无去重
	w, _ = doJSON(t, e, http.MethodPost, "/api/v1/memorials/jane-doe/view", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, e, http.MethodPost, "/api/v1/memorials/jane-doe/view", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, e, http.MethodGet, "/api/v1/memorials/jane-doe", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var viewed struct {
		ViewCount int64 `json:"viewCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &viewed))
	assert.Equal(t, int64(2), viewed.ViewCount)

	// 我的纪念页
	w, env = doJSON(t, e, http.MethodGet, "/api/v1/me/memorials", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []domain.Memorial
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Len(t, mine, 1)

	// 更新 + 下线
	w, _ = doJSON(t, e, http.MethodPut, "/api/v1/memorials/"+m.ID, token, gin.H{"theme": "NATURE"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, e, http.MethodDelete, "/api/v1/memorials/"+m.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, e, http.MethodGet, "/api/v1/memorials/jane-doe", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRequiresAuth(t *testing.T) {
	e := NewAPIEngine(zap.NewNop(), newTestDB(t), newTestJWTer(), nil, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("firstName", "Jane")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memorials", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRejectsBadDates(t *testing.T) {
	e := NewAPIEngine(zap.NewNop(), newTestDB(t), newTestJWTer(), nil, nil)
	token, _ := register(t, e, "jane@example.com")

	form := janeForm()
	form["dateOfBirth"] = "2024-06-15"
	form["dateOfPassing"] = "1950-06-15"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range form {
		_ = mw.WriteField(k, v)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memorials", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrivateMemorialVisibility(t *testing.T) {
	e := NewAPIEngine(zap.NewNop(), newTestDB(t), newTestJWTer(), nil, nil)
	ownerToken, _ := register(t, e, "owner@example.com")
	otherToken, _ := register(t, e, "other@example.com")

	form := janeForm()
	form["privacy"] = "PRIVATE"
	m := createMemorial(t, e, ownerToken, form)

	// 匿名和外人 404，所有者 200
	w, _ := doJSON(t, e, http.MethodGet, "/api/v1/memorials/"+m.Slug, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doJSON(t, e, http.MethodGet, "/api/v1/memorials/"+m.Slug, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doJSON(t, e, http.MethodGet, "/api/v1/memorials/"+m.Slug, ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 私密页也不进公共列表
	w, env := doJSON(t, e, http.MethodGet, "/api/v1/memorials", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(0), list.Total)
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	e := NewAPIEngine(zap.NewNop(), newTestDB(t), newTestJWTer(), nil, nil)
	ownerToken, _ := register(t, e, "owner@example.com")
	otherToken, _ := register(t, e, "other@example.com")

	m := createMemorial(t, e, ownerToken, janeForm())

	w, _ := doJSON(t, e, http.MethodPut, "/api/v1/memorials/"+m.ID, otherToken, gin.H{"biography": "mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = doJSON(t, e, http.MethodDelete, "/api/v1/memorials/"+m.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTributeSubmitGoesPending(t *testing.T) {
	e := NewAPIEngine(zap.NewNop(), newTestDB(t), newTestJWTer(), nil, nil)
	token, _ := register(t, e, "owner@example.com")
	m := createMemorial(t, e, token, janeForm())

	w, env := doJSON(t, e, http.MethodPost, "/api/v1/tributes", "", gin.H{
		"memorialId": m.ID,
		"content":    "You will be dearly missed by everyone.",
		"type":       "MESSAGE",
		"authorName": "Alice",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var out struct {
		Tribute domain.Tribute `json:"tribute"`
		Message string         `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.False(t, out.Tribute.IsApproved)
	assert.Contains(t, out.Message, "reviewed")

	// pending 不出现在公开详情
	w, env = doJSON(t, e, http.MethodGet, "/api/v1/memorials/"+m.Slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Tributes []domain.Tribute `json:"tributes"`
		Counts   struct {
			Tributes int64 `json:"tributes"`
		} `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Empty(t, detail.Tributes)
	assert.Equal(t, int64(0), detail.Counts.Tributes)
}

func TestTributeValidation(t *testing.T) {
	e := NewAPIEngine(zap.NewNop(), newTestDB(t), newTestJWTer(), nil, nil)
	token, _ := register(t, e, "owner@example.com")
	m := createMemorial(t, e, token, janeForm())

	w, _ := doJSON(t, e, http.MethodPost, "/api/v1/tributes", "", gin.H{
		"memorialId": m.ID, "content": "short", "type": "MESSAGE", "authorName": "Alice",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, e, http.MethodPost, "/api/v1/tributes", "", gin.H{
		"memorialId": "missing", "content": "long enough to pass validation",
		"type": "MESSAGE", "authorName": "Alice",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginFlow(t *testing.T) {
	e := NewAPIEngine(zap.NewNop(), newTestDB(t), newTestJWTer(), nil, nil)
	register(t, e, "jane@example.com")

	w, env := doJSON(t, e, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "jane@example.com", "password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)

	// GET /me
	w, env = doJSON(t, e, http.MethodGet, "/api/v1/me", out.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "jane@example.com", me.Email)

	w, _ = doJSON(t, e, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "jane@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, e, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPhotoAndTimelineCrud(t *testing.T) {
	e := NewAPIEngine(zap.NewNop(), newTestDB(t), newTestJWTer(), nil, nil)
	token, _ := register(t, e, "owner@example.com")
	m := createMemorial(t, e, token, janeForm())

	w, env := doJSON(t, e, http.MethodPost, "/api/v1/photos", token, gin.H{
		"memorialId": m.ID,
		"url":        "https://cdn.example.com/p1.jpg",
		"caption":    "Summer 1975",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var photo domain.Photo
	require.NoError(t, json.Unmarshal(env.Data, &photo))
	assert.Equal(t, m.ID, photo.MemorialID)

	// url 缺失被钩子拦下
	w, _ = doJSON(t, e, http.MethodPost, "/api/v1/photos", token, gin.H{"memorialId": m.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, e, http.MethodPost, "/api/v1/timeline-events", token, gin.H{
		"memorialId": m.ID,
		"title":      "Born in Springfield",
		"date":       "1950-06-15T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 时间线进详情聚合
	w, env = doJSON(t, e, http.MethodGet, "/api/v1/memorials/"+m.Slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Photos   []domain.Photo         `json:"photos"`
		Timeline []domain.TimelineEvent `json:"timeline"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Len(t, detail.Photos, 1)
	assert.Len(t, detail.Timeline, 1)
}
