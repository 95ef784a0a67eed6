// Package tracker holds the business rules around the tracked-product
// lifecycle: creation against the tier limit, soft-deletion, and the
// classification of re-checked prices.
package tracker

import (
	"context"
	"math"
	"net/url"

	"github.com/pkg/errors"

	"fetcha/internal/model"
)

var (
	// ErrInvalidInput rejects a malformed URL or price before any write.
	ErrInvalidInput = errors.New("invalid input")
	// ErrLimitExceeded rejects tracking beyond the caller's tier limit.
	ErrLimitExceeded = errors.New("tracked product limit exceeded")
)

// Store is the slice of the price store the engine needs. Satisfied by
// database.Database.
type Store interface {
	UserFindByID(ctx context.Context, userID int64) (model.User, error)
	ProductInsert(ctx context.Context, p model.TrackedProduct) (string, error)
	ProductsFindActiveByOwner(ctx context.Context, ownerID int64) ([]model.TrackedProduct, error)
	ProductPriceCheckRecord(ctx context.Context, productID string, newPrice float64) (changed bool, previous float64, err error)
	ProductDeactivate(ctx context.Context, productID string, ownerID int64) error
}

type Engine struct {
	DB                     Store
	TierLimit              int
	ChangeThresholdPercent float64
}

// Track validates the submitted URL and extracted price, enforces the
// owner's tier limit, and creates the product. Nothing is written when a
// precondition fails.
func (e Engine) Track(
	ctx context.Context, ownerID int64, rawURL string, name string, price float64, alertPrice *float64,
) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", err
	}
	if err := validatePrice(price); err != nil {
		return "", err
	}
	if alertPrice != nil {
		if err := validatePrice(*alertPrice); err != nil {
			return "", err
		}
	}

	u, err := e.DB.UserFindByID(ctx, ownerID)
	if err != nil {
		return "", errors.Wrapf(err, "error finding owner: %d before tracking", ownerID)
	}
	if u.TrackedCount >= e.TierLimit {
		return "", errors.Wrapf(ErrLimitExceeded, "owner: %d is tracking %d of %d products", ownerID, u.TrackedCount, e.TierLimit)
	}

	p := model.TrackedProduct{
		OwnerID:      ownerID,
		URL:          rawURL,
		Name:         name,
		CurrentPrice: &price,
		AlertPrice:   alertPrice,
	}
	id, err := e.DB.ProductInsert(ctx, p)
	return id, errors.Wrapf(err, "error inserting product for owner: %d", ownerID)
}

// Untrack soft-deletes the product. Idempotent: untracking a product that
// is already inactive or not owned by ownerID is not an error.
func (e Engine) Untrack(ctx context.Context, productID string, ownerID int64) error {
	return e.DB.ProductDeactivate(ctx, productID, ownerID)
}

// List returns the owner's active products, newest first.
func (e Engine) List(ctx context.Context, ownerID int64) ([]model.TrackedProduct, error) {
	return e.DB.ProductsFindActiveByOwner(ctx, ownerID)
}

// Recheck records the freshly extracted price and classifies the movement.
// The observation is recorded unconditionally; only the classification
// decides whether anyone hears about it.
func (e Engine) Recheck(ctx context.Context, productID string, newPrice float64) (ChangeDecision, error) {
	if err := validatePrice(newPrice); err != nil {
		return ChangeDecision{}, err
	}

	changed, previous, err := e.DB.ProductPriceCheckRecord(ctx, productID, newPrice)
	if err != nil {
		return ChangeDecision{}, errors.Wrapf(err, "error recording price check for product: %s", productID)
	}
	if !changed {
		return ChangeDecision{Kind: NoChange, PreviousPrice: previous, NewPrice: newPrice}, nil
	}
	return EvaluateChange(&previous, newPrice, e.ChangeThresholdPercent), nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.Wrapf(ErrInvalidInput, "unparseable url: %s", rawURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Wrapf(ErrInvalidInput, "url is not absolute http(s): %s", rawURL)
	}
	return nil
}

func validatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return errors.Wrapf(ErrInvalidInput, "price is not a finite non-negative number: %f", price)
	}
	return nil
}
