package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fetcha/internal/model"
)

// UserUpsert creates the user or refreshes their mutable profile fields.
// Tier, tracked_count, and a previously chosen region survive repeat
// registrations; a returning user never loses accumulated state.
func (db Database) UserUpsert(ctx context.Context, u model.User) error {
	now := primitive.NewDateTimeFromTime(time.Now())

	region := u.Region
	if region == "" {
		region = model.RegionUnknown
	}
	languageTag := u.LanguageTag
	if languageTag == "" {
		languageTag = "en"
	}

	_, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": u.ID},
		bson.M{
			"$set": bson.M{
				"display_name": u.DisplayName,
				"language_tag": languageTag,
				"updated_at":   now,
			},
			"$setOnInsert": bson.M{
				"region":        region,
				"tier":          model.TierFree,
				"tracked_count": 0,
				"created_at":    now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return errors.Wrapf(err, "error upserting User with ID: %d", u.ID)
}

func (db Database) UserRegionUpdate(ctx context.Context, userID int64, region string) error {
	_, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"region":     region,
			"updated_at": primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	return errors.Wrapf(err, "error updating region to %s for User with ID: %d", region, userID)
}

func (db Database) UserFindByID(ctx context.Context, userID int64) (model.User, error) {
	var u model.User
	err := db.Collection(CollectionUsers).FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	return u, errors.Wrapf(err, "error finding User with ID: %d", userID)
}

// RegionStats is the per-region aggregate fed to the stats endpoint.
type RegionStats struct {
	Region   string `bson:"_id" json:"region"`
	Users    int    `bson:"users" json:"users"`
	Products int    `bson:"products" json:"products"`
}

func (db Database) StatsByRegion(ctx context.Context) ([]RegionStats, error) {
	cur, err := db.Collection(CollectionUsers).Aggregate(ctx, bson.A{
		bson.M{"$group": bson.M{
			"_id":      "$region",
			"users":    bson.M{"$sum": 1},
			"products": bson.M{"$sum": "$tracked_count"},
		}},
		bson.M{"$sort": bson.M{"_id": 1}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "error getting cursor for region stats aggregation")
	}
	var stats []RegionStats
	if err = cur.All(ctx, &stats); err != nil {
		return nil, errors.Wrap(err, "error getting region stats from cursor")
	}
	return stats, nil
}
