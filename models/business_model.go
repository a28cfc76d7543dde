package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BusinessStatusActive   = "active"
	BusinessStatusInactive = "inactive"
)

// Business carries a master wallet UPI identifier, a business-level payment
// handle unrelated to per-user wallets.
type Business struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Description     *string   `gorm:"type:text" json:"description"`
	OwnerUserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	MasterWalletUpi *string   `gorm:"size:100" json:"master_wallet_upi"`
	Status          string    `gorm:"size:20;not null;default:'active'" json:"status"`

	Owner User `gorm:"foreignkey:OwnerUserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
