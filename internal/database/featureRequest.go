package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fetcha/internal/model"
)

func (db Database) FeatureRequestInsert(ctx context.Context, fr model.FeatureRequest) error {
	fr.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	_, err := db.Collection(CollectionFeatureRequests).InsertOne(ctx, fr)
	return errors.Wrapf(err, "error inserting FeatureRequest for UserID: %d, category: %s", fr.UserID, fr.Category)
}
