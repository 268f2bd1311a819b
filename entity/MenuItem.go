package entity

import (
	"time"

	"littlelemon/pkg/money"
)

type MenuItem struct {
	ID       uint         `gorm:"primaryKey" json:"id"`
	Title    string       `gorm:"index;size:255;not null" json:"title"`
	Price    money.Amount `gorm:"index;not null" json:"price"`
	Featured bool         `gorm:"index;not null;default:false" json:"featured"`

	CategoryID uint     `gorm:"index;not null" json:"category_id"`
	Category   Category `json:"category"` // preloaded on reads

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
