package models

import (
	"time"

	"gorm.io/gorm"
)

// Story is a catalog entry. PriceCents is the only price the checkout flow
// trusts; client-submitted prices are ignored everywhere.
type Story struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	AuthorName  string         `gorm:"size:100;not null" json:"author_name"`
	AuthorEmail string         `gorm:"size:255;not null" json:"author_email"`
	Description string         `gorm:"size:2000;not null" json:"description"`
	Content     string         `gorm:"type:text" json:"content,omitempty"` // full text, entitlement-gated
	ImageURL    string         `gorm:"size:512;not null" json:"image_url"`
	PriceCents  int64          `gorm:"not null;default:0" json:"price_cents"`
	UserID      *uint          `gorm:"index" json:"user_id,omitempty"` // submitter, when authenticated
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Story) TableName() string {
	return "stories"
}
