package models

import (
	"time"
)

// CartItem is one line of a user's server-side cart. The (user_id, story_id)
// unique index makes add-to-cart a merge rather than a blind insert.
//
// Cart lines are deleted outright, never soft-deleted: a tombstone would
// keep occupying the unique index and block the line from being re-added.
type CartItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_cart_user_story" json:"user_id"`
	StoryID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_story" json:"story_id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	PriceCents int64     `gorm:"not null" json:"price_cents"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	ImageURL   string    `gorm:"size:512" json:"image_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
