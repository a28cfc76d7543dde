package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PayoutStatusPending  = "pending"
	PayoutStatusAccepted = "accepted"
	PayoutStatusRejected = "rejected"
)

// PayoutRequest is a user-submitted request to withdraw funds, requiring admin
// approval. Status starts at pending and transitions exactly once, to either
// accepted or rejected. UserID is nullable: legacy rows predate the column.
type PayoutRequest struct {
	ID       uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID   *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Amount   float64    `gorm:"type:numeric(14,2);not null" json:"amount"`
	Utr      string     `gorm:"size:100;not null" json:"utr"`
	Remarks  string     `gorm:"type:text;not null" json:"remarks"`
	ProofRef *string    `gorm:"size:512" json:"proof_ref"`
	BookID   *uuid.UUID `gorm:"type:uuid" json:"book_id"`
	Status   string     `gorm:"size:20;not null;default:'pending'" json:"status"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PayoutRequest) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
