package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// PriceEpsilon is the smallest price movement treated as a real change.
// Differences at or below it are floating-point noise, not changes.
const PriceEpsilon = 0.01

// PriceObservation is one timestamped price reading for a TrackedProduct.
// Observations are append-only, one per successful check including the
// initial one at creation time.
type PriceObservation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ProductID primitive.ObjectID `bson:"product_id" json:"-"`
	Price     float64            `bson:"pr" json:"pr"`
	Timestamp primitive.DateTime `bson:"ts" json:"ts"`
}
