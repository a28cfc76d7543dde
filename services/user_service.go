package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/hissabbook/admin-api/models"
	"gorm.io/gorm"
)

func FindUserByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Preload("Detail").Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserRoles(db *gorm.DB, userID uuid.UUID) ([]string, error) {
	var names []string
	err := db.Table("user_roles ur").
		Joins("JOIN roles r ON ur.role_id = r.id").
		Where("ur.user_id = ?", userID).
		Order("ur.assigned_at ASC").
		Pluck("r.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func IsAdmin(db *gorm.DB, userID uuid.UUID) (bool, error) {
	var count int64
	err := db.Table("user_roles ur").
		Joins("JOIN roles r ON ur.role_id = r.id").
		Where("ur.user_id = ? AND r.name = ?", userID, models.RoleAdmin).
		Count(&count).Error
	return count > 0, err
}
