package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleAgents   = "agents"
	RoleManagers = "managers"
	RoleAuditor  = "auditor"
)

type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"size:50;not null;unique" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// UserRole is the join table between users and roles. AssignedAt ordering
// determines a user's primary role.
type UserRole struct {
	UserID     uuid.UUID `gorm:"type:uuid;primary_key" json:"user_id"`
	RoleID     uuid.UUID `gorm:"type:uuid;primary_key" json:"role_id"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`
}
