package domain

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Memorial struct {
	ID            string    `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Slug          string    `gorm:"uniqueIndex;size:191;not null" json:"slug"`
	FirstName     string    `gorm:"size:64;not null" json:"firstName"`
	LastName      string    `gorm:"size:64;not null" json:"lastName"`
	DateOfBirth   time.Time `gorm:"not null" json:"dateOfBirth"`
	DateOfPassing time.Time `gorm:"not null" json:"dateOfPassing"`
	Biography     string    `gorm:"type:text" json:"biography,omitempty"`
	Location      string    `gorm:"size:191" json:"location,omitempty"`
	Avatar        string    `gorm:"size:512" json:"avatar,omitempty"`
	CoverImage    string    `gorm:"size:512" json:"coverImage,omitempty"`
	MusicURL      string    `gorm:"size:512" json:"musicUrl,omitempty"`
	MusicTitle    string    `gorm:"size:191" json:"musicTitle,omitempty"`
	Theme         Theme     `gorm:"size:32;not null;default:CLASSIC" json:"theme"`
	Privacy       Privacy   `gorm:"size:16;not null;default:PUBLIC" json:"privacy"`
	IsActive      bool      `gorm:"not null;default:true" json:"isActive"`
	ViewCount     int64     `gorm:"not null;default:0" json:"viewCount"`
	OwnerID       string    `gorm:"index;type:varchar(32);not null" json:"ownerId"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Memorial) TableName() string { return "memorials" }

// MemorialCard 公共列表投影（与详情页分开，列表不带传记等大字段）
type MemorialCard struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	DateOfBirth   time.Time `json:"dateOfBirth"`
	DateOfPassing time.Time `json:"dateOfPassing"`
	Avatar        string    `json:"avatar,omitempty"`
	Theme         Theme     `json:"theme"`
	ViewCount     int64     `json:"viewCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type MemorialRepository interface {
	Create(ctx context.Context, m *Memorial) error
	FindBySlug(ctx context.Context, slug string) (*Memorial, error)
	FindByID(ctx context.Context, id string) (*Memorial, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListPublic(ctx context.Context, offset, limit int) ([]MemorialCard, int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Memorial, error)
	Updates(ctx context.Context, id string, fields map[string]any) error
	Deactivate(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, slug string) error
}

// IsDupKey 唯一约束冲突判定；不依赖 gorm.ErrDuplicatedKey，规避驱动间差异
func IsDupKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}

var ErrNotFound = gorm.ErrRecordNotFound
