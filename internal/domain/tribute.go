package domain

import (
	"context"
	"time"
)

// Tribute 访客提交的追思内容，默认 pending，审核通过后才对公众可见
type Tribute struct {
	ID         string      `gorm:"primaryKey;type:varchar(32)" json:"id"`
	MemorialID string      `gorm:"index;type:varchar(32);not null" json:"memorialId"`
	Content    string      `gorm:"type:text;not null" json:"content"`
	Type       TributeType `gorm:"size:16;not null;default:MESSAGE" json:"type"`
	AuthorName string      `gorm:"size:64;not null" json:"authorName"`
	AuthorID   string      `gorm:"type:varchar(32)" json:"authorId,omitempty"`
	IsApproved bool        `gorm:"not null;default:false;index" json:"isApproved"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"createdAt"`
}

func (Tribute) TableName() string { return "tributes" }

type TributeRepository interface {
	Create(ctx context.Context, t *Tribute) error
	ListApproved(ctx context.Context, memorialID string, limit int) ([]Tribute, error)
	ListPending(ctx context.Context, offset, limit int) ([]Tribute, int64, error)
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountApproved(ctx context.Context, memorialID string) (int64, error)
}
