package models

import "time"

// Category groups products in the catalog
type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	Name      string    `gorm:"not null" json:"name" bson:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// CategoryWithCount is a category annotated with the number of products referencing it
type CategoryWithCount struct {
	Category     `bson:",inline"`
	ProductCount int64 `json:"productCount" bson:"productCount"`
}
