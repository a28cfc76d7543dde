package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wallet is a per-user running balance, one per user. Its balance moves only
// as a side effect of completed ledger entries.
type Wallet struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;unique" json:"user_id"`
	Balance      float64   `gorm:"type:numeric(14,2);not null;default:0.00" json:"balance"`
	CurrencyCode string    `gorm:"size:3;not null;default:'INR'" json:"currency_code"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "user_wallets"
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
