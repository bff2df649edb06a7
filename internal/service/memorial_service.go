package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"everkeep-api/internal/domain"
	"everkeep-api/internal/repo"
	"everkeep-api/pkg/utils"
)

// slug 冲突重试上限；超过说明撞名异常密集，放弃并报错
const maxSlugAttempts = 5

type MemorialService struct {
	memorials *repo.MemorialRepo
	tributes  *repo.TributeRepo
	photos    *repo.PhotoRepo
	timeline  *repo.TimelineRepo
	users     *repo.UserRepo
	log       *zap.Logger
}

func NewMemorialService(db *gorm.DB, log *zap.Logger) *MemorialService {
	return &MemorialService{
		memorials: repo.NewMemorialRepo(db),
		tributes:  repo.NewTributeRepo(db),
		photos:    repo.NewPhotoRepo(db),
		timeline:  repo.NewTimelineRepo(db),
		users:     repo.NewUserRepo(db),
		log:       log,
	}
}

func (s *MemorialService) Repo() *repo.MemorialRepo { return s.memorials }

// Create 分配唯一 slug 并落库。先查后插只是快路径；并发撞名时依赖
// slug 唯一索引拒绝，捕获唯一冲突后换下一个后缀重试
func (s *MemorialService) Create(ctx context.Context, m *domain.Memorial) error {
	if !m.DateOfBirth.Before(m.DateOfPassing) {
		return Invalid("dateOfPassing must be after dateOfBirth")
	}
	if !m.Theme.Valid() {
		return Invalid("unknown theme")
	}
	if !m.Privacy.Valid() {
		return Invalid("unknown privacy")
	}

	base := utils.Slugify(m.FirstName + "-" + m.LastName)
	if base == "" {
		base = "memorial"
	}

	if m.ID == "" {
		m.ID = utils.NewID()
	}
	m.IsActive = true
	m.ViewCount = 0

	candidate := base
	counter := 1
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		// 快路径：已占用就不用白插一次
		for {
			exists, err := s.memorials.SlugExists(ctx, candidate)
			if err != nil {
				return err
			}
			if !exists {
				break
			}
			candidate = fmt.Sprintf("%s-%d", base, counter)
			counter++
		}

		m.Slug = candidate
		err := s.memorials.Create(ctx, m)
		if err == nil {
			return nil
		}
		if !domain.IsDupKey(err) {
			return err
		}
		// 输掉了并发竞争，换下一个后缀再来
		s.log.Warn("slug collision on insert, retrying",
			zap.String("slug", candidate), zap.Int("attempt", attempt+1))
		candidate = fmt.Sprintf("%s-%d", base, counter)
		counter++
	}
	return ErrSlugExhausted
}

type OwnerSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar,omitempty"`
}

type Counts struct {
	Photos   int64 `json:"photos"`
	Tributes int64 `json:"tributes"`
}

// MemorialDetail 详情页聚合：最近 20 张照片、最近 10 条已审核追思、时间线升序
type MemorialDetail struct {
	domain.Memorial
	Age      int                    `json:"age"`
	Owner    *OwnerSummary          `json:"owner,omitempty"`
	Photos   []domain.Photo         `json:"photos"`
	Tributes []domain.Tribute       `json:"tributes"`
	Timeline []domain.TimelineEvent `json:"timeline"`
	Counts   Counts                 `json:"counts"`
}

// Detail viewerID 为空表示匿名访客；非公开或已下线的页面只有所有者可见
func (s *MemorialService) Detail(ctx context.Context, slug, viewerID string) (*MemorialDetail, error) {
	m, err := s.memorials.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if (m.Privacy != domain.PrivacyPublic || !m.IsActive) && m.OwnerID != viewerID {
		return nil, gorm.ErrRecordNotFound
	}

	d := &MemorialDetail{
		Memorial: *m,
		Age:      utils.Age(m.DateOfBirth, m.DateOfPassing),
		Photos:   []domain.Photo{},
		Tributes: []domain.Tribute{},
		Timeline: []domain.TimelineEvent{},
	}

	if owner, err := s.users.FindByID(ctx, m.OwnerID); err == nil && owner != nil {
		d.Owner = &OwnerSummary{
			ID: owner.ID, FirstName: owner.FirstName,
			LastName: owner.LastName, Avatar: owner.Avatar,
		}
	}
	if ps, err := s.photos.ListByMemorial(ctx, m.ID, 20); err == nil {
		d.Photos = ps
	} else {
		return nil, err
	}
	if ts, err := s.tributes.ListApproved(ctx, m.ID, 10); err == nil {
		d.Tributes = ts
	} else {
		return nil, err
	}
	if es, err := s.timeline.ListByMemorial(ctx, m.ID); err == nil {
		d.Timeline = es
	} else {
		return nil, err
	}
	if d.Counts.Photos, err = s.photos.Count(ctx, m.ID); err != nil {
		return nil, err
	}
	if d.Counts.Tributes, err = s.tributes.CountApproved(ctx, m.ID); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *MemorialService) ListPublic(ctx context.Context, page, limit int) ([]domain.MemorialCard, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 12
	}
	return s.memorials.ListPublic(ctx, (page-1)*limit, limit)
}

func (s *MemorialService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Memorial, error) {
	return s.memorials.ListByOwner(ctx, ownerID)
}

// UpdateFields 只允许所有者改自己的纪念页
func (s *MemorialService) UpdateFields(ctx context.Context, id, callerID string, fields map[string]any) (*domain.Memorial, error) {
	m, err := s.memorials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	if len(fields) == 0 {
		return m, nil
	}
	if err := s.memorials.Updates(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.memorials.FindByID(ctx, id)
}

func (s *MemorialService) Deactivate(ctx context.Context, id, callerID string) error {
	m, err := s.memorials.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if m.OwnerID != callerID {
		return ErrNotOwner
	}
	return s.memorials.Deactivate(ctx, id)
}

// RecordView 每次调用 +1，不做访客去重（产品语义如此）
func (s *MemorialService) RecordView(ctx context.Context, slug string) error {
	err := s.memorials.IncrementViewCount(ctx, slug)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		// 计数失败不值得打断页面渲染，记一条就行
		s.log.Warn("view count increment failed", zap.String("slug", slug), zap.Error(err))
	}
	return err
}
