package domain

import "time"

type Photo struct {
	ID           string    `gorm:"primaryKey;type:varchar(32)" json:"id"`
	MemorialID   string    `gorm:"index;type:varchar(32);not null" json:"memorialId"`
	URL          string    `gorm:"size:512;not null" json:"url"`
	Caption      string    `gorm:"size:255" json:"caption,omitempty"`
	UploadedByID string    `gorm:"type:varchar(32)" json:"uploadedById,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Photo) TableName() string { return "photos" }
