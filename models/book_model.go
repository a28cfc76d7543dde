package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is a cashbook: a named container of ledger entries owned by one user.
type Book struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Description  *string   `gorm:"type:text" json:"description"`
	CurrencyCode string    `gorm:"size:3;not null;default:'INR'" json:"currency_code"`
	OwnerUserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_user_id"`

	Owner User `gorm:"foreignkey:OwnerUserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BookUser associates additional users with a book beyond its owner.
type BookUser struct {
	ID      uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	BookID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_book_user" json:"book_id"`
	UserID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_book_user" json:"user_id"`
	AddedBy *uuid.UUID `gorm:"type:uuid" json:"added_by"`
	AddedAt time.Time  `gorm:"autoCreateTime" json:"added_at"`
}

func (bu *BookUser) BeforeCreate(tx *gorm.DB) error {
	if bu.ID == uuid.Nil {
		bu.ID = uuid.New()
	}
	return nil
}
