package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TransactionTypeCredit = "credit"
	TransactionTypeDebit  = "debit"

	TransactionStatusCompleted = "completed"
)

// JSONMap stores arbitrary structured metadata as a JSONB column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for JSONMap")
	}
}

// Transaction is an immutable, append-only ledger entry. OccurredAt records
// when the money moved, distinct from the row's CreatedAt.
type Transaction struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	BookID       *uuid.UUID `gorm:"type:uuid;index" json:"book_id"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	WalletID     *uuid.UUID `gorm:"type:uuid" json:"wallet_id"`
	Type         string     `gorm:"size:10;not null" json:"type"`
	Status       string     `gorm:"size:20;not null" json:"status"`
	Amount       float64    `gorm:"type:numeric(14,2);not null" json:"amount"`
	CurrencyCode string     `gorm:"size:3;not null;default:'INR'" json:"currency_code"`
	Description  *string    `gorm:"type:text" json:"description"`
	Metadata     JSONMap    `gorm:"type:jsonb" json:"metadata"`
	OccurredAt   time.Time  `gorm:"not null" json:"occurred_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
