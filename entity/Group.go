package entity

type Group struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:150;not null" json:"name"`

	Users []User `gorm:"many2many:user_groups;" json:"-"`
}
