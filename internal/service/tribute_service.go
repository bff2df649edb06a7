package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"everkeep-api/internal/domain"
	"everkeep-api/internal/repo"
	"everkeep-api/pkg/utils"
)

type TributeService struct {
	tributes  *repo.TributeRepo
	memorials *repo.MemorialRepo
}

func NewTributeService(db *gorm.DB) *TributeService {
	return &TributeService{
		tributes:  repo.NewTributeRepo(db),
		memorials: repo.NewMemorialRepo(db),
	}
}

type SubmitTributeInput struct {
	MemorialID string
	Content    string
	Type       domain.TributeType
	AuthorName string
	AuthorID   string // 登录用户可选
}

// Submit 提交即 pending；IsApproved 由这里硬编码为 false，不接受任何输入覆盖
func (s *TributeService) Submit(ctx context.Context, in SubmitTributeInput) (*domain.Tribute, error) {
	if len(strings.TrimSpace(in.Content)) < 10 {
		return nil, Invalid("tribute must be at least 10 characters")
	}
	if len(strings.TrimSpace(in.AuthorName)) < 2 {
		return nil, Invalid("name is required")
	}
	if !in.Type.Valid() {
		return nil, Invalid("unknown tribute type")
	}
	// 目标纪念页必须存在
	if _, err := s.memorials.FindByID(ctx, in.MemorialID); err != nil {
		return nil, err
	}

	t := &domain.Tribute{
		ID:         utils.NewID(),
		MemorialID: in.MemorialID,
		Content:    strings.TrimSpace(in.Content),
		Type:       in.Type,
		AuthorName: strings.TrimSpace(in.AuthorName),
		AuthorID:   in.AuthorID,
		IsApproved: false,
	}
	if err := s.tributes.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TributeService) Pending(ctx context.Context, offset, limit int) ([]domain.Tribute, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.tributes.ListPending(ctx, offset, limit)
}

func (s *TributeService) Approve(ctx context.Context, id string) error {
	return s.tributes.Approve(ctx, id)
}

func (s *TributeService) Reject(ctx context.Context, id string) error {
	return s.tributes.Delete(ctx, id)
}
