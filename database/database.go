package database

import (
	"log"
	"strings"
	"time"

	config "github.com/hissabbook/admin-api/configs"
	"github.com/hissabbook/admin-api/models"
	"github.com/hissabbook/admin-api/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	log.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.UserDetail{},
		&models.Role{},
		&models.UserRole{},
		&models.Book{},
		&models.BookUser{},
		&models.Business{},
		&models.Wallet{},
		&models.Transaction{},
		&models.PayoutRequest{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	log.Println("✅ Database migration successful")
}

var defaultRoles = map[string]string{
	models.RoleAdmin:    "Platform administrator with full access",
	models.RoleStaff:    "Staff member submitting payout requests",
	models.RoleAgents:   "Field agent",
	models.RoleManagers: "Business manager",
	models.RoleAuditor:  "Read-only auditor",
}

func SeedRoles() {
	for name, description := range defaultRoles {
		desc := description
		role := models.Role{Name: name, Description: &desc}
		if err := DB.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			log.Fatalf("🔥 Failed to seed role %q: %v", name, err)
		}
	}
	log.Println("✅ Roles seeded successfully")
}

// SeedAdmin ensures the admin account from the environment exists, holds the
// admin role, and owns a wallet.
func SeedAdmin() {
	adminEmail := strings.ToLower(config.Config("ADMIN_EMAIL"))
	adminPassword := config.Config("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️ ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	err := DB.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		err := tx.Where("email = ?", adminEmail).First(&admin).Error
		if err == gorm.ErrRecordNotFound {
			hashed, hashErr := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if hashErr != nil {
				return hashErr
			}
			admin = models.User{
				Email:        adminEmail,
				PasswordHash: string(hashed),
				Status:       models.UserStatusActive,
			}
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var adminRole models.Role
		if err := tx.Where("name = ?", models.RoleAdmin).First(&adminRole).Error; err != nil {
			return err
		}

		assignment := models.UserRole{UserID: admin.ID, RoleID: adminRole.ID, AssignedAt: time.Now()}
		if err := tx.Where("user_id = ? AND role_id = ?", admin.ID, adminRole.ID).
			FirstOrCreate(&assignment).Error; err != nil {
			return err
		}

		_, err = services.EnsureWallet(tx, admin.ID)
		return err
	})
	if err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
	}

	log.Println("✅ Admin user seeded successfully")
}
