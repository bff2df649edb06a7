package repo

import (
	"context"

	"gorm.io/gorm"

	"everkeep-api/internal/domain"
)

type MemorialRepo struct{ db *gorm.DB }

func NewMemorialRepo(db *gorm.DB) *MemorialRepo { return &MemorialRepo{db: db} }

func (r *MemorialRepo) Create(ctx context.Context, m *domain.Memorial) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MemorialRepo) FindBySlug(ctx context.Context, slug string) (*domain.Memorial, error) {
	var m domain.Memorial
	if err := r.db.WithContext(ctx).First(&m, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemorialRepo) FindByID(ctx context.Context, id string) (*domain.Memorial, error) {
	var m domain.Memorial
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemorialRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Memorial{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

// ListPublic 公共列表：仅 PUBLIC 且 isActive，最新在前
func (r *MemorialRepo) ListPublic(ctx context.Context, offset, limit int) ([]domain.MemorialCard, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Memorial{}).
		Where("privacy = ? AND is_active = ?", domain.PrivacyPublic, true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var cards []domain.MemorialCard
	err := q.Select("id, slug, first_name, last_name, date_of_birth, date_of_passing, avatar, theme, view_count, created_at").
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&cards).Error
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

func (r *MemorialRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Memorial, error) {
	var ms []domain.Memorial
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&ms).Error
	return ms, err
}

func (r *MemorialRepo) Updates(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Memorial{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Deactivate 文档化路径里永不硬删，只下线
func (r *MemorialRepo) Deactivate(ctx context.Context, id string) error {
	return r.Updates(ctx, id, map[string]any{"is_active": false})
}

// IncrementViewCount SQL 级自增，避免应用层 read-modify-write 丢更新
func (r *MemorialRepo) IncrementViewCount(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Model(&domain.Memorial{}).
		Where("slug = ?", slug).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
