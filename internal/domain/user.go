package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID            string         `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Email         string         `gorm:"uniqueIndex;size:191;not null" json:"email"`
	FirstName     string         `gorm:"size:64;not null" json:"firstName"`
	LastName      string         `gorm:"size:64;not null" json:"lastName"`
	PasswordHash  string         `gorm:"size:100;not null" json:"-"`
	Avatar        string         `gorm:"size:512" json:"avatar,omitempty"`
	Plan          Plan           `gorm:"size:32;not null;default:FREE" json:"plan"`
	PlanExpiresAt *time.Time     `json:"planExpiresAt,omitempty"`
	Role          string         `gorm:"size:16;not null;default:user" json:"role"` // "user"/"admin"
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
	SoftDelete(ctx context.Context, id string) error
}
