package repo

import (
	"context"

	"gorm.io/gorm"

	"everkeep-api/internal/domain"
)

type TributeRepo struct{ db *gorm.DB }

func NewTributeRepo(db *gorm.DB) *TributeRepo { return &TributeRepo{db: db} }

func (r *TributeRepo) Create(ctx context.Context, t *domain.Tribute) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// ListApproved 公共读路径只取 is_approved = true
func (r *TributeRepo) ListApproved(ctx context.Context, memorialID string, limit int) ([]domain.Tribute, error) {
	var ts []domain.Tribute
	err := r.db.WithContext(ctx).
		Where("memorial_id = ? AND is_approved = ?", memorialID, true).
		Order("created_at desc").
		Limit(limit).
		Find(&ts).Error
	return ts, err
}

func (r *TributeRepo) ListPending(ctx context.Context, offset, limit int) ([]domain.Tribute, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Tribute{}).Where("is_approved = ?", false)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ts []domain.Tribute
	if err := q.Order("created_at asc").Offset(offset).Limit(limit).Find(&ts).Error; err != nil {
		return nil, 0, err
	}
	return ts, total, nil
}

// Approve pending → approved，唯一的状态翻转入口；没有回退
func (r *TributeRepo) Approve(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&domain.Tribute{}).
		Where("id = ?", id).
		UpdateColumn("is_approved", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TributeRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Tribute{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TributeRepo) CountApproved(ctx context.Context, memorialID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Tribute{}).
		Where("memorial_id = ? AND is_approved = ?", memorialID, true).
		Count(&n).Error
	return n, err
}
