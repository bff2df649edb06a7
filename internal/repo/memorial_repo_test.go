package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"everkeep-api/internal/core/database"
	"everkeep-api/internal/domain"
	"everkeep-api/pkg/utils"
)

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
	require.NoError(t, db.AutoMigrate(&domain.Memorial{}))
	return db
}

func fixture(slug string) *domain.Memorial {
	return &domain.Memorial{
		ID: utils.NewID(), Slug: slug,
		FirstName: "Jane", LastName: "Doe",
		DateOfBirth:   time.Date(1950, 6, 15, 0, 0, 0, 0, time.UTC),
		DateOfPassing: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Theme:         domain.ThemeClassic,
		Privacy:       domain.PrivacyPublic,
		IsActive:      true,
		OwnerID:       utils.NewID(),
	}
}

// slug 唯一索引兜底并发撞名，冲突要能被 IsDupKey 识别
func TestSlugUniqueIndex(t *testing.T) {
	db := newTestDB(t)
	r := NewMemorialRepo(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, fixture("jane-doe")))
	err := r.Create(ctx, fixture("jane-doe"))
	require.Error(t, err)
	assert.True(t, domain.IsDupKey(err), "got %v", err)

	exists, err := r.SlugExists(ctx, "jane-doe")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = r.SlugExists(ctx, "john-smith")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIncrementViewCount(t *testing.T) {
	db := newTestDB(t)
	r := NewMemorialRepo(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, fixture("jane-doe")))

	require.NoError(t, r.IncrementViewCount(ctx, "jane-doe"))
	require.NoError(t, r.IncrementViewCount(ctx, "jane-doe"))

	m, err := r.FindBySlug(ctx, "jane-doe")
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.ViewCount)

	assert.ErrorIs(t, r.IncrementViewCount(ctx, "nobody"), gorm.ErrRecordNotFound)
}

func TestUpdatesMissingRow(t *testing.T) {
	db := newTestDB(t)
	r := NewMemorialRepo(db)
	ctx := context.Background()

	err := r.Updates(ctx, "no-such-id", map[string]any{"biography": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
