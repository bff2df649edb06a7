package domain

import "time"

// TimelineEvent 生平时间线条目，按 date 升序展示
type TimelineEvent struct {
	ID          string    `gorm:"primaryKey;type:varchar(32)" json:"id"`
	MemorialID  string    `gorm:"index;type:varchar(32);not null" json:"memorialId"`
	Title       string    `gorm:"size:191;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Date        time.Time `gorm:"not null" json:"date"`
	Location    string    `gorm:"size:191" json:"location,omitempty"`
	PhotoURL    string    `gorm:"size:512" json:"photoUrl,omitempty"`
	CreatedByID string    `gorm:"index;type:varchar(32);not null" json:"createdById"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (TimelineEvent) TableName() string { return "timeline_events" }
