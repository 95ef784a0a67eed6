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

func (db Database) ObservationsFind(ctx context.Context, productID string) ([]model.PriceObservation, error) {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating ObjectID from hex: %s", productID)
	}
	opts := options.Find().SetSort(bson.M{"ts": -1})
	cur, err := db.Collection(CollectionObservations).Find(ctx, bson.M{"product_id": objID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find PriceObservations for ProductID: %s", productID)
	}
	var os []model.PriceObservation
	if err = cur.All(ctx, &os); err != nil {
		return nil, errors.Wrapf(err, "error getting PriceObservations from cursor for ProductID: %s", productID)
	}
	return os, nil
}

func (db Database) ObservationsFindRange(
	ctx context.Context, productID string, start time.Time, end time.Time,
) ([]model.PriceObservation, error) {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating ObjectID from hex: %s", productID)
	}
	opts := options.Find().SetSort(bson.M{"ts": -1})
	cur, err := db.Collection(CollectionObservations).Find(ctx, bson.M{
		"product_id": objID,
		"ts": bson.M{
			"$gte": primitive.NewDateTimeFromTime(start),
			"$lte": primitive.NewDateTimeFromTime(end),
		},
	}, opts)
	if err != nil {
		return nil, errors.Wrapf(err,
			"error getting cursor to find PriceObservations for ProductID: %s, start: %s, end: %s",
			productID, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	var os []model.PriceObservation
	if err = cur.All(ctx, &os); err != nil {
		return nil, errors.Wrapf(err,
			"error getting PriceObservations from cursor for ProductID: %s, start: %s, end: %s",
			productID, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return os, nil
}
