package models

import "time"

// Review moderation statuses
const (
	ReviewStatusPending  = "pending"
	ReviewStatusAccepted = "accepted"
	ReviewStatusRejected = "rejected"
)

// Review limits
const (
	MinStars         = 1
	MaxStars         = 5
	MaxCommentLength = 1000
)

// CanTransitionReview reports whether a review may move from one status to another.
// Only pending reviews can be decided; accepted and rejected are final.
func CanTransitionReview(from, to string) bool {
	return from == ReviewStatusPending && (to == ReviewStatusAccepted || to == ReviewStatusRejected)
}

// Review is a customer rating of a product, visible publicly once accepted
type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	ProductID string    `gorm:"size:36;not null;index" json:"productId" bson:"product"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty" bson:"-"`
	Name      string    `gorm:"not null" json:"name" bson:"name"`
	Stars     int       `gorm:"not null" json:"stars" bson:"stars"`
	Comment   string    `gorm:"type:text;not null" json:"comment" bson:"comment"`
	Status    string    `gorm:"not null;default:'pending';index" json:"status" bson:"status"`
	CreatedAt time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}

// ProductReviews is the public view of a product's accepted reviews
type ProductReviews struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"averageRating"`
	TotalReviews  int      `json:"totalReviews"`
}
