package model

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	TierFree = "free"

	RegionUnknown = "unknown"
)

// User is identified by the opaque numeric id assigned by the chat platform.
// TrackedCount is denormalized and must always equal the number of the
// user's TrackedProducts with Active set.
type User struct {
	ID           int64              `bson:"_id" json:"user_id"`
	DisplayName  string             `bson:"display_name" json:"display_name"`
	Region       string             `bson:"region" json:"region"`
	LanguageTag  string             `bson:"language_tag" json:"language_tag"`
	Tier         string             `bson:"tier" json:"tier"`
	TrackedCount int                `bson:"tracked_count" json:"tracked_count"`
	CreatedAt    primitive.DateTime `bson:"created_at" json:"-"`
	UpdatedAt    primitive.DateTime `bson:"updated_at" json:"-"`
}
