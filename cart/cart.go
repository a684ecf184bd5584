// Package cart models the shopper's cart as a pure reducer over a keyed,
// insertion-ordered collection of products. The storefront persists it in
// local storage; the API uses it to normalize inquiry line items.
package cart

import (
	"encoding/json"
	"fmt"

	"github.com/sierra-health/medequip-api/models"
)

// Action types accepted by Reduce
const (
	ActionAdd            = "add"
	ActionRemove         = "remove"
	ActionUpdateQuantity = "update_quantity"
	ActionClear          = "clear"
)

// Item is one cart entry: the product as shown in the catalog plus a quantity
type Item struct {
	models.Product
	Quantity int `json:"quantity"`
}

// Cart is an immutable value; Reduce returns a new cart
type Cart struct {
	items []Item
}

// Action describes one change to a cart
type Action struct {
	Type      string
	Product   models.Product
	ProductID string
	Quantity  int
}

// Add builds an add action. A quantity below 1 adds a single unit.
func Add(product models.Product, quantity int) Action {
	return Action{Type: ActionAdd, Product: product, Quantity: quantity}
}

// Remove builds a remove action
func Remove(productID string) Action {
	return Action{Type: ActionRemove, ProductID: productID}
}

// UpdateQuantity builds an update action. A quantity of 0 or less removes the item.
func UpdateQuantity(productID string, quantity int) Action {
	return Action{Type: ActionUpdateQuantity, ProductID: productID, Quantity: quantity}
}

// Clear builds a clear action
func Clear() Action {
	return Action{Type: ActionClear}
}

// Reduce applies a to c and returns the resulting cart. Unknown actions return c unchanged.
func Reduce(c Cart, a Action) Cart {
	switch a.Type {
	case ActionAdd:
		quantity := a.Quantity
		if quantity < 1 {
			quantity = 1
		}
		items := c.copyItems()
		if i := c.indexOf(a.Product.ID); i >= 0 {
			items[i].Quantity += quantity
			return Cart{items: items}
		}
		return Cart{items: append(items, Item{Product: a.Product, Quantity: quantity})}

	case ActionRemove:
		return c.without(a.ProductID)

	case ActionUpdateQuantity:
		i := c.indexOf(a.ProductID)
		if i < 0 {
			return c
		}
		if a.Quantity <= 0 {
			return c.without(a.ProductID)
		}
		items := c.copyItems()
		items[i].Quantity = a.Quantity
		return Cart{items: items}

	case ActionClear:
		return Cart{}
	}
	return c
}

// Items returns the entries in the order they were first added
func (c Cart) Items() []Item {
	return c.copyItems()
}

// Len returns the number of distinct products
func (c Cart) Len() int {
	return len(c.items)
}

// TotalQuantity returns the number of units across all entries
func (c Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// Subtotal returns the sum of price times quantity
func (c Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Lines converts the cart into order line items
func (c Cart) Lines() []models.OrderItem {
	lines := make([]models.OrderItem, 0, len(c.items))
	for _, item := range c.items {
		lines = append(lines, models.OrderItem{ProductID: item.ID, Quantity: item.Quantity})
	}
	return lines
}

// MarshalStorage encodes the cart in the local storage format: a JSON array of
// product documents each carrying a quantity
func (c Cart) MarshalStorage() ([]byte, error) {
	return json.Marshal(c.copyItems())
}

// UnmarshalStorage decodes the local storage format. Entries are folded
// through Reduce so duplicates merge and invalid quantities become 1.
func UnmarshalStorage(data []byte) (Cart, error) {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return Cart{}, fmt.Errorf("invalid cart data: %w", err)
	}
	var c Cart
	for _, item := range items {
		if item.ID == "" {
			return Cart{}, fmt.Errorf("invalid cart data: entry without _id")
		}
		c = Reduce(c, Add(item.Product, item.Quantity))
	}
	return c, nil
}

func (c Cart) indexOf(productID string) int {
	for i, item := range c.items {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) copyItems() []Item {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

func (c Cart) without(productID string) Cart {
	i := c.indexOf(productID)
	if i < 0 {
		return c
	}
	items := make([]Item, 0, len(c.items)-1)
	items = append(items, c.items[:i]...)
	items = append(items, c.items[i+1:]...)
	return Cart{items: items}
}
