package models

import "time"

// Notification kinds
const (
	NotificationAdminInquiry    = "admin_inquiry"
	NotificationCustomerInquiry = "customer_inquiry"
)

// Notification delivery statuses
const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

// Notification is an outbox entry for an email that still has to be delivered
type Notification struct {
	ID            string     `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	OrderID       string     `gorm:"size:36;index" json:"orderId" bson:"orderId"`
	Kind          string     `gorm:"not null" json:"kind" bson:"kind"`
	Recipient     string     `gorm:"not null" json:"recipient" bson:"recipient"`
	Subject       string     `gorm:"not null" json:"subject" bson:"subject"`
	Body          string     `gorm:"type:text" json:"body" bson:"body"`
	Status        string     `gorm:"not null;default:'pending';index" json:"status" bson:"status"`
	Attempts      int        `gorm:"not null;default:0" json:"attempts" bson:"attempts"`
	NextAttemptAt time.Time  `gorm:"index" json:"nextAttemptAt" bson:"nextAttemptAt"`
	LastError     string     `gorm:"type:text" json:"lastError,omitempty" bson:"lastError,omitempty"`
	SentAt        *time.Time `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
