// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"testing"

	"littlelemon/configs"
	"littlelemon/entity"
	"littlelemon/pkg/money"
	"littlelemon/policy"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated, seeded (groups only) private in-memory database.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a single connection keeps the in-memory database alive and private
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := configs.SetupDatabase(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := configs.SeedGroups(db); err != nil {
		t.Fatalf("seed groups: %v", err)
	}
	return db
}

// User creates a user in the given groups and returns it with groups loaded.
func User(t testing.TB, db *gorm.DB, username string, groups ...string) entity.User {
	t.Helper()
	u := entity.User{Username: username, Password: "x"}
	if len(groups) > 0 {
		var gs []entity.Group
		if err := db.Where("name IN ?", groups).Find(&gs).Error; err != nil {
			t.Fatalf("load groups: %v", err)
		}
		u.Groups = gs
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// Identity builds the request identity for u from its groups.
func Identity(u entity.User) policy.Identity {
	return policy.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Role:     policy.RoleFromGroups(u.GroupNames()),
	}
}

// Category creates a category.
func Category(t testing.TB, db *gorm.DB, slug string) entity.Category {
	t.Helper()
	c := entity.Category{Slug: slug, Title: slug}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("create category %s: %v", slug, err)
	}
	return c
}

// MenuItem creates a menu item with the given price.
func MenuItem(t testing.TB, db *gorm.DB, title, price string, categoryID uint) entity.MenuItem {
	t.Helper()
	m := entity.MenuItem{Title: title, Price: money.MustParse(price), CategoryID: categoryID}
	if err := db.Omit("Category").Create(&m).Error; err != nil {
		t.Fatalf("create menu item %s: %v", title, err)
	}
	return m
}
