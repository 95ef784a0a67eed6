package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// FeatureRequest is a free-text piece of user feedback, tagged with the
// user's region and optionally the platform it concerns. Append-only.
type FeatureRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      int64              `bson:"user_id"`
	Region      string             `bson:"region"`
	Category    string             `bson:"category"`
	Platform    string             `bson:"platform,omitempty"`
	Description string             `bson:"description"`
	CreatedAt   primitive.DateTime `bson:"created_at"`
}
