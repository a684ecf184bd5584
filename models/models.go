package models

// All returns every persisted model, in migration order
func All() []interface{} {
	return []interface{}{
		&Category{},
		&Product{},
		&User{},
		&Order{},
		&OrderItem{},
		&Review{},
		&Notification{},
	}
}
