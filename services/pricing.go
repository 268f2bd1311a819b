package services

import (
	"fmt"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"
	"littlelemon/pkg/money"
)

// DeriveCartLine prices line from the menu item's current price. Every cart
// write goes through here; nothing the client sends is used as a price.
func DeriveCartLine(line *entity.CartLine, item *entity.MenuItem) {
	line.MenuItemID = item.ID
	line.MenuItem = *item
	line.UnitPrice = item.Price
	line.Price = item.Price.Mul(line.Quantity)
}

// FreezeOrderItem copies a cart line into an order item. The prices are
// taken as they are and never recomputed afterwards.
func FreezeOrderItem(line entity.CartLine) entity.OrderItem {
	return entity.OrderItem{
		MenuItemID: line.MenuItemID,
		MenuItem:   line.MenuItem,
		Quantity:   line.Quantity,
		UnitPrice:  line.UnitPrice,
		Price:      line.Price,
	}
}

// OrderTotal is the exact sum of the item prices.
func OrderTotal(items []entity.OrderItem) money.Amount {
	prices := make([]money.Amount, len(items))
	for i, it := range items {
		prices[i] = it.Price
	}
	return money.Sum(prices...)
}

// checkAmount rejects a derived price or total that does not fit the
// decimal(6,2) columns.
func checkAmount(field string, a money.Amount) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", apperr.ErrConstraintViolation, field, err)
	}
	return nil
}
