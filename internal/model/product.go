package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// TrackedProduct is a URL a user asked the system to monitor. Products are
// soft-deleted through Active so price history stays attributable; they are
// never removed from the collection.
type TrackedProduct struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"product_id"`
	OwnerID      int64              `bson:"owner_id" json:"-"`
	URL          string             `bson:"url" json:"url"`
	Name         string             `bson:"name" json:"name"`
	CurrentPrice *float64           `bson:"current_price,omitempty" json:"current_price"`
	AlertPrice   *float64           `bson:"alert_price,omitempty" json:"alert_price,omitempty"`
	LastCheck    primitive.DateTime `bson:"last_check" json:"last_check"`
	Active       bool               `bson:"active" json:"-"`
	CreatedAt    primitive.DateTime `bson:"created_at" json:"created_at"`
}
