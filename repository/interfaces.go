package repository

import (
	"context"

	"littlelemon/entity"
	"littlelemon/pkg/money"
)

// MenuQuery filters the menu item listing.
type MenuQuery struct {
	CategoryID *uint
	Featured   *bool
	Price      *money.Amount
	Search     string
	Ordering   []string
	Page
}

// MenuItemRepository is the catalog store for menu items. The redis cache in
// package cache decorates it.
type MenuItemRepository interface {
	List(ctx context.Context, q MenuQuery) ([]entity.MenuItem, int64, error)
	FindByID(ctx context.Context, id uint) (*entity.MenuItem, error)
	Create(ctx context.Context, item *entity.MenuItem) error
	Update(ctx context.Context, item *entity.MenuItem) error
	Delete(ctx context.Context, id uint) error
}

// OrderQuery filters the order listing. UserID and DeliveryCrewID restrict
// the result to one owner or one assignee.
type OrderQuery struct {
	UserID         *uint
	DeliveryCrewID *uint
	Status         *bool
	Date           *entity.Date
	Ordering       []string
	Page
}
