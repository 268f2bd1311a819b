package entity

type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Slug  string `gorm:"uniqueIndex;size:50;not null" json:"slug"`
	Title string `gorm:"index;size:255;not null" json:"title"`

	MenuItems []MenuItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}
