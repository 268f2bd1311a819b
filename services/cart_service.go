package services

import (
	"context"

	"littlelemon/entity"
	"littlelemon/policy"
	"littlelemon/repository"

	"gorm.io/gorm"
)

type CartService struct {
	DB       *gorm.DB
	CartRepo *repository.CartRepository
}

func NewCartService(db *gorm.DB, cr *repository.CartRepository) *CartService {
	return &CartService{DB: db, CartRepo: cr}
}

// AddToCartIn carries no price fields; prices always come from the menu.
type AddToCartIn struct {
	MenuItemID uint `json:"menuitem_id" validate:"required"`
	Quantity   int  `json:"quantity" validate:"min=1,max=32767"`
}

func (s *CartService) List(ctx context.Context, id policy.Identity) ([]entity.CartLine, error) {
	if err := policy.Decide(id, policy.CartRead); err != nil {
		return nil, err
	}
	return s.CartRepo.Lines(s.DB.WithContext(ctx), id.UserID)
}

// Add puts a menu item in the caller's cart. If the item is already there its
// quantity is set to the posted value and the line is repriced.
func (s *CartService) Add(ctx context.Context, id policy.Identity, in AddToCartIn) (*entity.CartLine, error) {
	if err := policy.Decide(id, policy.CartWrite); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}

	line := &entity.CartLine{UserID: id.UserID, Quantity: in.Quantity}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.CartRepo.MenuItem(tx, in.MenuItemID)
		if err != nil {
			return err
		}
		DeriveCartLine(line, item)
		if err := checkAmount("price", line.Price); err != nil {
			return err
		}
		return s.CartRepo.Upsert(tx, line)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// Clear empties the caller's cart and returns how many lines were removed.
func (s *CartService) Clear(ctx context.Context, id policy.Identity) (int64, error) {
	if err := policy.Decide(id, policy.CartWrite); err != nil {
		return 0, err
	}
	return s.CartRepo.Clear(s.DB.WithContext(ctx), id.UserID)
}
