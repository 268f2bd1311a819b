// repository/menu_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MenuRepository struct {
	DB *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{DB: db}
}

var menuOrdering = map[string]string{
	"title": "title",
	"price": "price",
}

// List returns one page of menu items plus the total match count.
func (r *MenuRepository) List(ctx context.Context, q MenuQuery) ([]entity.MenuItem, int64, error) {
	db := r.DB.WithContext(ctx).Model(&entity.MenuItem{})
	if q.CategoryID != nil {
		db = db.Where("category_id = ?", *q.CategoryID)
	}
	if q.Featured != nil {
		db = db.Where("featured = ?", *q.Featured)
	}
	if q.Price != nil {
		db = db.Where("price = ?", *q.Price)
	}
	if q.Search != "" {
		db = db.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q.Search)+"%")
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "menu items")
	}

	order, err := orderBy(q.Ordering, menuOrdering, "title")
	if err != nil {
		return nil, 0, err
	}

	var items []entity.MenuItem
	err = q.Page.apply(db.Preload("Category").Order(order)).Find(&items).Error
	if err != nil {
		return nil, 0, translate(err, "menu items")
	}
	return items, total, nil
}

// FindByID loads one menu item with its category.
func (r *MenuRepository) FindByID(ctx context.Context, id uint) (*entity.MenuItem, error) {
	var item entity.MenuItem
	if err := r.DB.WithContext(ctx).Preload("Category").First(&item, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("menu item %d", id))
	}
	return &item, nil
}

// Create inserts a menu item after checking the category exists.
func (r *MenuRepository) Create(ctx context.Context, item *entity.MenuItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cat, err := categoryExists(tx, item.CategoryID)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
			return translate(err, "menu item")
		}
		item.Category = *cat
		return nil
	})
}

// Update saves every editable column of item.
func (r *MenuRepository) Update(ctx context.Context, item *entity.MenuItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cat, err := categoryExists(tx, item.CategoryID)
		if err != nil {
			return err
		}
		res := tx.Model(&entity.MenuItem{}).
			Where("id = ?", item.ID).
			Updates(map[string]any{
				"title":       item.Title,
				"price":       item.Price,
				"featured":    item.Featured,
				"category_id": item.CategoryID,
			})
		if res.Error != nil {
			return translate(res.Error, "menu item")
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: menu item %d", apperr.ErrNotFound, item.ID)
		}
		item.Category = *cat
		return nil
	})
}

// Delete removes a menu item unless a cart line or order item still points at
// it. References block the delete; they never cascade.
func (r *MenuRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&entity.CartLine{}).Where("menu_item_id = ?", id).Count(&refs).Error; err != nil {
			return translate(err, "cart lines")
		}
		if refs == 0 {
			if err := tx.Model(&entity.OrderItem{}).Where("menu_item_id = ?", id).Count(&refs).Error; err != nil {
				return translate(err, "order items")
			}
		}
		if refs > 0 {
			return fmt.Errorf("%w: menu item %d is referenced by carts or orders", apperr.ErrConstraintViolation, id)
		}

		res := tx.Delete(&entity.MenuItem{}, id)
		if res.Error != nil {
			return translate(res.Error, "menu item")
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: menu item %d", apperr.ErrNotFound, id)
		}
		return nil
	})
}

func categoryExists(tx *gorm.DB, id uint) (*entity.Category, error) {
	var cat entity.Category
	if err := tx.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %d does not exist", apperr.ErrConstraintViolation, id)
		}
		return nil, translate(err, "category")
	}
	return &cat, nil
}
