package configs

import (
	"errors"
	"fmt"
	"log/slog"

	"littlelemon/entity"
	"littlelemon/policy"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedGroups creates the two staff groups the policy relies on.
func SeedGroups(db *gorm.DB) error {
	for _, name := range []string{policy.GroupManager, policy.GroupDeliveryCrew} {
		if err := db.FirstOrCreate(&entity.Group{}, entity.Group{Name: name}).Error; err != nil {
			return fmt.Errorf("seed group %q: %w", name, err)
		}
	}
	return nil
}

// SeedAdmin creates the first manager from ADMIN_USERNAME / ADMIN_PASSWORD.
func SeedAdmin(db *gorm.DB, cfg *Config, log *slog.Logger) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		log.Info("skip seeding admin: ADMIN_USERNAME/ADMIN_PASSWORD not set")
		return nil
	}

	var existing entity.User
	err := db.Where("username = ?", cfg.AdminUsername).First(&existing).Error
	if err == nil {
		log.Info("admin already exists", slog.String("username", cfg.AdminUsername))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var managers entity.Group
	if err := db.Where("name = ?", policy.GroupManager).First(&managers).Error; err != nil {
		return fmt.Errorf("load manager group: %w", err)
	}

	admin := entity.User{
		Username: cfg.AdminUsername,
		Password: string(hash),
		Groups:   []entity.Group{managers},
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Info("seeded admin manager", slog.String("username", admin.Username))
	return nil
}

// SeedCategories inserts the starter categories when none exist.
func SeedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	cats := []entity.Category{
		{Slug: "appetizers", Title: "Appetizers"},
		{Slug: "mains", Title: "Mains"},
		{Slug: "desserts", Title: "Desserts"},
		{Slug: "drinks", Title: "Drinks"},
	}
	return db.Create(&cats).Error
}
