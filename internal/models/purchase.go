package models

import (
	"time"

	"gorm.io/gorm"
)

// PurchaseRecord is one completed cart checkout. SessionID carries the
// external checkout session id; its unique index is the idempotency backstop
// against double reconciliation (reload, double tab, webhook redelivery).
type PurchaseRecord struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	SessionID   string         `gorm:"size:255;not null;uniqueIndex" json:"session_id"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	Currency    string         `gorm:"size:3;default:'USD'" json:"currency"`
	Items       []PurchaseItem `gorm:"foreignKey:PurchaseRecordID" json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (PurchaseRecord) TableName() string {
	return "purchase_records"
}

type PurchaseItem struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	PurchaseRecordID uint   `gorm:"not null;index" json:"-"`
	StoryID          uint   `gorm:"not null" json:"story_id"`
	Title            string `gorm:"size:200" json:"title"`
	PriceCents       int64  `gorm:"not null" json:"price_cents"`
	Quantity         int    `gorm:"not null;default:1" json:"quantity"`
}

func (PurchaseItem) TableName() string {
	return "purchase_items"
}
