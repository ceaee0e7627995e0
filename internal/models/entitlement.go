package models

import (
	"time"

	"gorm.io/gorm"
)

// Entitlement marks a story as readable by a user without further payment.
// The set only grows; granting an already-held entitlement is a no-op thanks
// to the (user_id, story_id) unique index.
type Entitlement struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_entitlement_user_story" json:"user_id"`
	StoryID   uint           `gorm:"not null;uniqueIndex:idx_entitlement_user_story" json:"story_id"`
	SessionID string         `gorm:"size:255;index" json:"session_id"` // session that granted it, for audit
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Story Story `gorm:"foreignKey:StoryID" json:"-"`
}

func (Entitlement) TableName() string {
	return "entitlements"
}
