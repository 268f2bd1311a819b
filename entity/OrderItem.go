package entity

import "littlelemon/pkg/money"

// OrderItem is a line frozen at checkout. Its prices are copied from the cart
// line and never recomputed.
type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;uniqueIndex:idx_order_item_menu,priority:1" json:"-"`

	MenuItemID uint     `gorm:"not null;uniqueIndex:idx_order_item_menu,priority:2" json:"menuitem_id"`
	MenuItem   MenuItem `gorm:"constraint:OnDelete:RESTRICT;" json:"menuitem"`

	Quantity  int          `gorm:"not null;default:1;check:chk_order_item_quantity,quantity >= 1" json:"quantity"`
	UnitPrice money.Amount `gorm:"not null" json:"unit_price"`
	Price     money.Amount `gorm:"not null" json:"price"`
}
