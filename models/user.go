package models

import "time"

// User is a lead captured from an inquiry. A new row is created for every submission.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `gorm:"index" json:"email" bson:"email"`
	Phone     string    `json:"phone" bson:"phone"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
