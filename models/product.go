package models

import "time"

// Product represents a piece of equipment listed in the catalog.
// CategoryID is a plain reference: deleting the category leaves it dangling.
type Product struct {
	ID           string    `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	Name         string    `gorm:"not null" json:"name" bson:"name"`
	Brand        string    `json:"brand" bson:"brand"`
	CategoryID   string    `gorm:"size:36;not null;index" json:"categoryId" bson:"category"`
	Category     *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty" bson:"-"`
	Price        float64   `json:"price" bson:"price"`
	Description  string    `gorm:"type:text" json:"description" bson:"description"`
	Images       []string  `gorm:"type:text;serializer:json" json:"images" bson:"images"`
	IsBestSeller bool      `gorm:"not null;default:false" json:"isBestSeller" bson:"isBestSeller"`
	ReviewIDs    []string  `gorm:"type:text;serializer:json" json:"reviews" bson:"reviews"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// ProductPage is one page of the product listing
type ProductPage struct {
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
	Total      int64     `json:"total"`
	Products   []Product `json:"products"`
}

// TopSellingProduct is a product annotated with the total quantity ordered across all orders
type TopSellingProduct struct {
	Product      `bson:",inline"`
	SoldQuantity int `json:"soldQuantity" bson:"soldQuantity"`
}
