package repo

import (
	"context"

	"gorm.io/gorm"

	"everkeep-api/internal/domain"
)

type PhotoRepo struct{ db *gorm.DB }

func NewPhotoRepo(db *gorm.DB) *PhotoRepo { return &PhotoRepo{db: db} }

func (r *PhotoRepo) ListByMemorial(ctx context.Context, memorialID string, limit int) ([]domain.Photo, error) {
	var ps []domain.Photo
	err := r.db.WithContext(ctx).
		Where("memorial_id = ?", memorialID).
		Order("created_at desc").
		Limit(limit).
		Find(&ps).Error
	return ps, err
}

func (r *PhotoRepo) Count(ctx context.Context, memorialID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Photo{}).
		Where("memorial_id = ?", memorialID).
		Count(&n).Error
	return n, err
}

type TimelineRepo struct{ db *gorm.DB }

func NewTimelineRepo(db *gorm.DB) *TimelineRepo { return &TimelineRepo{db: db} }

func (r *TimelineRepo) ListByMemorial(ctx context.Context, memorialID string) ([]domain.TimelineEvent, error) {
	var es []domain.TimelineEvent
	err := r.db.WithContext(ctx).
		Where("memorial_id = ?", memorialID).
		Order("date asc").
		Find(&es).Error
	return es, err
}
