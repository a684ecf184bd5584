package models

import "time"

// Order lifecycle statuses
const (
	OrderStatusNew       = "new"
	OrderStatusContacted = "contacted"
	OrderStatusClosed    = "closed"
)

var orderTransitions = map[string][]string{
	OrderStatusNew:       {OrderStatusContacted, OrderStatusClosed},
	OrderStatusContacted: {OrderStatusClosed},
}

// CanTransitionOrder reports whether an order may move from one status to another
func CanTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order represents an inquiry submitted from the storefront
type Order struct {
	ID        string      `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	UserID    string      `gorm:"size:36;not null;index" json:"userId" bson:"user"`
	User      *User       `gorm:"foreignKey:UserID" json:"user,omitempty" bson:"-"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"products" bson:"products"`
	Message   string      `gorm:"type:text" json:"message" bson:"message"`
	Status    string      `gorm:"not null;default:'new'" json:"status" bson:"status"`
	CreatedAt time.Time   `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one (product, quantity) line of an order
type OrderItem struct {
	ID        uint     `gorm:"primaryKey" json:"-" bson:"-"`
	OrderID   string   `gorm:"size:36;not null;index" json:"-" bson:"-"`
	ProductID string   `gorm:"size:36;not null;index" json:"productId" bson:"product"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty" bson:"-"`
	Quantity  int      `gorm:"not null;default:1" json:"quantity" bson:"quantity"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
