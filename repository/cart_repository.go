package repository

import (
	"fmt"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository methods take the handle to run on: either a transaction or
// r.DB.WithContext(ctx) from the caller.
type CartRepository struct{ DB *gorm.DB }

func NewCartRepository(db *gorm.DB) *CartRepository { return &CartRepository{DB: db} }

// Lines returns the user's cart lines with menu items and categories loaded,
// oldest first.
func (r *CartRepository) Lines(tx *gorm.DB, userID uint) ([]entity.CartLine, error) {
	var lines []entity.CartLine
	err := tx.Where("user_id = ?", userID).
		Preload("MenuItem.Category").
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, translate(err, "cart")
	}
	return lines, nil
}

// Upsert writes line under the (user, menu item) unique index in one
// statement. An existing row gets the new quantity and prices. line is
// reloaded afterwards so its ID is the stored row's.
func (r *CartRepository) Upsert(tx *gorm.DB, line *entity.CartLine) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "menu_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "unit_price", "price", "updated_at"}),
	}).Omit(clause.Associations).Create(line).Error
	if err != nil {
		return translate(err, "cart line")
	}

	var stored entity.CartLine
	err = tx.Where("user_id = ? AND menu_item_id = ?", line.UserID, line.MenuItemID).
		Preload("MenuItem.Category").
		First(&stored).Error
	if err != nil {
		return translate(err, "cart line")
	}
	*line = stored
	return nil
}

// DeleteLines removes exactly the given line ids of the user. If any of them
// is already gone the cart changed under the caller and ErrConflictRetry is
// returned so the surrounding transaction rolls back.
func (r *CartRepository) DeleteLines(tx *gorm.DB, userID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	res := tx.Where("user_id = ? AND id IN ?", userID, ids).Delete(&entity.CartLine{})
	if res.Error != nil {
		return translate(res.Error, "cart lines")
	}
	if res.RowsAffected != int64(len(ids)) {
		return fmt.Errorf("%w: cart changed during checkout (%d of %d lines removed)",
			apperr.ErrConflictRetry, res.RowsAffected, len(ids))
	}
	return nil
}

// Clear deletes every line of the user and reports how many went.
func (r *CartRepository) Clear(tx *gorm.DB, userID uint) (int64, error) {
	res := tx.Where("user_id = ?", userID).Delete(&entity.CartLine{})
	if res.Error != nil {
		return 0, translate(res.Error, "cart")
	}
	return res.RowsAffected, nil
}

// MenuItem loads the menu item a cart write refers to, on the same handle so
// the price is read inside the caller's transaction.
func (r *CartRepository) MenuItem(tx *gorm.DB, id uint) (*entity.MenuItem, error) {
	var item entity.MenuItem
	if err := tx.Preload("Category").First(&item, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("menu item %d", id))
	}
	return &item, nil
}
