package entity

import (
	"time"

	"littlelemon/pkg/money"
)

type Order struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user"`
	User   User `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	DeliveryCrewID *uint `gorm:"index" json:"delivery_crew"`
	DeliveryCrew   *User `gorm:"constraint:OnDelete:SET NULL;" json:"-"`

	// false = out for delivery, true = delivered
	Status bool         `gorm:"index;not null;default:false" json:"status"`
	Total  money.Amount `gorm:"not null" json:"total"`
	Date   Date         `gorm:"index;not null" json:"date"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE;" json:"order_items"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
