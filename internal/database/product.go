package database

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fetcha/internal/model"
)

// ProductInsert creates a TrackedProduct together with its first
// PriceObservation and the owner's counter increment, all in one
// transaction. A partially created product is never visible.
func (db Database) ProductInsert(ctx context.Context, p model.TrackedProduct) (id string, err error) {
	now := primitive.NewDateTimeFromTime(time.Now())
	p.ID = primitive.NewObjectID()
	p.Active = true
	p.LastCheck = now
	p.CreatedAt = now

	err = db.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := db.Collection(CollectionProducts).InsertOne(sc, p); err != nil {
			return err
		}
		if p.CurrentPrice != nil {
			o := model.PriceObservation{
				ProductID: p.ID,
				Price:     *p.CurrentPrice,
				Timestamp: now,
			}
			if _, err := db.Collection(CollectionObservations).InsertOne(sc, o); err != nil {
				return err
			}
		}
		_, err := db.Collection(CollectionUsers).UpdateOne(
			sc,
			bson.M{"_id": p.OwnerID},
			bson.M{"$inc": bson.M{"tracked_count": 1}},
		)
		return err
	})
	if err != nil {
		return "", errors.Wrapf(err, "error inserting TrackedProduct for owner: %d, url: %s", p.OwnerID, p.URL)
	}
	return p.ID.Hex(), nil
}

func (db Database) ProductFindOne(ctx context.Context, productID string) (model.TrackedProduct, error) {
	var p model.TrackedProduct
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return p, errors.Wrapf(err, "error creating ObjectID from hex: %s", productID)
	}
	err = db.Collection(CollectionProducts).FindOne(ctx, bson.M{"_id": objID}).Decode(&p)
	return p, errors.Wrapf(err, "error finding TrackedProduct with ID: %s", productID)
}

// ProductsFindActiveByOwner returns the owner's active products, newest
// first.
func (db Database) ProductsFindActiveByOwner(ctx context.Context, ownerID int64) ([]model.TrackedProduct, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := db.Collection(CollectionProducts).Find(ctx, bson.M{"owner_id": ownerID, "active": true}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find TrackedProducts for owner: %d", ownerID)
	}
	var ps []model.TrackedProduct
	if err = cur.All(ctx, &ps); err != nil {
		return nil, errors.Wrapf(err, "error getting TrackedProducts from cursor for owner: %d", ownerID)
	}
	return ps, nil
}

// ProductsFindAllActive feeds the periodic checker with every active
// product across all users.
func (db Database) ProductsFindAllActive(ctx context.Context) ([]model.TrackedProduct, error) {
	cur, err := db.Collection(CollectionProducts).Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, errors.Wrap(err, "error getting cursor to find all active TrackedProducts")
	}
	var ps []model.TrackedProduct
	if err = cur.All(ctx, &ps); err != nil {
		return nil, errors.Wrap(err, "error getting all active TrackedProducts from cursor")
	}
	return ps, nil
}

// ProductPriceCheckRecord writes newPrice and the check timestamp, appends
// a PriceObservation, and reports whether the price actually moved.
// changed is only true when a prior price existed and differs from
// newPrice by more than model.PriceEpsilon. previous echoes newPrice when
// the product had no price yet.
func (db Database) ProductPriceCheckRecord(
	ctx context.Context, productID string, newPrice float64,
) (changed bool, previous float64, err error) {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return false, 0, errors.Wrapf(err, "error creating ObjectID from hex: %s", productID)
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	previous = newPrice

	err = db.withTransaction(ctx, func(sc mongo.SessionContext) error {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
		var prior model.TrackedProduct
		err := db.Collection(CollectionProducts).FindOneAndUpdate(
			sc,
			bson.M{"_id": objID},
			bson.M{"$set": bson.M{
				"current_price": newPrice,
				"last_check":    now,
			}},
			opts,
		).Decode(&prior)
		if err != nil {
			return err
		}

		if prior.CurrentPrice != nil {
			previous = *prior.CurrentPrice
			changed = math.Abs(previous-newPrice) > model.PriceEpsilon
		}

		o := model.PriceObservation{
			ProductID: objID,
			Price:     newPrice,
			Timestamp: now,
		}
		_, err = db.Collection(CollectionObservations).InsertOne(sc, o)
		return err
	})
	if err != nil {
		return false, 0, errors.Wrapf(err, "error recording price check for TrackedProduct: %s, price: %.2f", productID, newPrice)
	}
	return changed, previous, nil
}

// ProductDeactivate soft-deletes the product and decrements the owner's
// counter, atomically. A product that is already inactive or not owned by
// ownerID leaves everything untouched; the decrement only fires when this
// call actually flipped the active flag, so the counter cannot be
// decremented twice or driven negative.
func (db Database) ProductDeactivate(ctx context.Context, productID string, ownerID int64) error {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", productID)
	}

	err = db.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := db.Collection(CollectionProducts).UpdateOne(
			sc,
			bson.M{"_id": objID, "owner_id": ownerID, "active": true},
			bson.M{"$set": bson.M{"active": false}},
		)
		if err != nil {
			return err
		}
		if res.ModifiedCount == 0 {
			return nil
		}
		_, err = db.Collection(CollectionUsers).UpdateOne(
			sc,
			bson.M{"_id": ownerID, "tracked_count": bson.M{"$gt": 0}},
			bson.M{"$inc": bson.M{"tracked_count": -1}},
		)
		return err
	})
	return errors.Wrapf(err, "error deactivating TrackedProduct: %s for owner: %d", productID, ownerID)
}
