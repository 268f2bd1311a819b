package entity

import (
	"time"

	"littlelemon/pkg/money"
)

// CartLine is one pending menu item in a user's cart. (user, menu item) is
// unique; UnitPrice and Price are derived from the menu item on every write.
type CartLine struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_cart_user_item,priority:1" json:"user"`
	User   User `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	MenuItemID uint     `gorm:"not null;uniqueIndex:idx_cart_user_item,priority:2" json:"menuitem_id"`
	MenuItem   MenuItem `gorm:"constraint:OnDelete:RESTRICT;" json:"menuitem"`

	Quantity  int          `gorm:"not null;default:1;check:chk_cart_quantity,quantity >= 1" json:"quantity"`
	UnitPrice money.Amount `gorm:"not null" json:"unit_price"`
	Price     money.Amount `gorm:"not null" json:"price"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
