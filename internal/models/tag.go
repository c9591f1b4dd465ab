package models

type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`

	Posts []Post `gorm:"many2many:post_tags;" json:"-"`
}
