package models

import (
	"time"

	"gorm.io/gorm"
)

// RaffleEntry records one paid raffle checkout, deduped by SessionID the same
// way purchase records are.
type RaffleEntry struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	SessionID   string         `gorm:"size:255;not null;uniqueIndex" json:"session_id"`
	TicketCount int            `gorm:"not null" json:"ticket_count"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (RaffleEntry) TableName() string {
	return "raffle_entries"
}
