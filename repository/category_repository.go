package repository

import (
	"context"
	"fmt"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	var cats []entity.Category
	if err := r.DB.WithContext(ctx).Order("title ASC, id ASC").Find(&cats).Error; err != nil {
		return nil, translate(err, "categories")
	}
	return cats, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*entity.Category, error) {
	var cat entity.Category
	if err := r.DB.WithContext(ctx).First(&cat, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("category %d", id))
	}
	return &cat, nil
}

// Create inserts a category. A duplicate slug is a ConstraintViolation.
func (r *CategoryRepository) Create(ctx context.Context, cat *entity.Category) error {
	if err := r.DB.WithContext(ctx).Create(cat).Error; err != nil {
		return translate(err, fmt.Sprintf("category %q", cat.Slug))
	}
	return nil
}

// Delete removes a category that no menu item references.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&entity.MenuItem{}).Where("category_id = ?", id).Count(&refs).Error; err != nil {
			return translate(err, "menu items")
		}
		if refs > 0 {
			return fmt.Errorf("%w: category %d still has %d menu items", apperr.ErrConstraintViolation, id, refs)
		}

		res := tx.Delete(&entity.Category{}, id)
		if res.Error != nil {
			return translate(res.Error, "category")
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: category %d", apperr.ErrNotFound, id)
		}
		return nil
	})
}
