package tracker

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fetcha/internal/model"
)

// fakeStore mimics the price store's contract in memory, including the
// counter coupling and the epsilon rule of ProductPriceCheckRecord.
type fakeStore struct {
	users    map[int64]*model.User
	products map[string]*model.TrackedProduct
	inserts  int
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[int64]*model.User{},
		products: map[string]*model.TrackedProduct{},
	}
}

func (f *fakeStore) addUser(id int64, trackedCount int) {
	f.users[id] = &model.User{ID: id, Tier: model.TierFree, TrackedCount: trackedCount}
}

func (f *fakeStore) UserFindByID(_ context.Context, userID int64) (model.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("user not found: %d", userID)
	}
	return *u, nil
}

func (f *fakeStore) ProductInsert(_ context.Context, p model.TrackedProduct) (string, error) {
	f.nextID++
	f.inserts++
	id := fmt.Sprintf("product-%d", f.nextID)
	p.Active = true
	f.products[id] = &p
	f.users[p.OwnerID].TrackedCount++
	return id, nil
}

func (f *fakeStore) ProductsFindActiveByOwner(_ context.Context, ownerID int64) ([]model.TrackedProduct, error) {
	var ps []model.TrackedProduct
	for _, p := range f.products {
		if p.OwnerID == ownerID && p.Active {
			ps = append(ps, *p)
		}
	}
	return ps, nil
}

func (f *fakeStore) ProductPriceCheckRecord(_ context.Context, productID string, newPrice float64) (bool, float64, error) {
	p, ok := f.products[productID]
	if !ok {
		return false, 0, fmt.Errorf("product not found: %s", productID)
	}
	previous := newPrice
	changed := false
	if p.CurrentPrice != nil {
		previous = *p.CurrentPrice
		changed = math.Abs(previous-newPrice) > model.PriceEpsilon
	}
	p.CurrentPrice = &newPrice
	return changed, previous, nil
}

func (f *fakeStore) ProductDeactivate(_ context.Context, productID string, ownerID int64) error {
	p, ok := f.products[productID]
	if !ok || p.OwnerID != ownerID || !p.Active {
		return nil
	}
	p.Active = false
	if f.users[ownerID].TrackedCount > 0 {
		f.users[ownerID].TrackedCount--
	}
	return nil
}

func newTestEngine(db Store) Engine {
	return Engine{DB: db, TierLimit: 3, ChangeThresholdPercent: 5}
}

func TestTrackValidation(t *testing.T) {
	db := newFakeStore()
	db.addUser(1, 0)
	e := newTestEngine(db)
	ctx := context.Background()

	tests := []struct {
		name  string
		url   string
		price float64
	}{
		{"relative url", "/product/123", 10},
		{"missing scheme", "example.com/product", 10},
		{"ftp scheme", "ftp://example.com/product", 10},
		{"negative price", "https://example.com/product", -1},
		{"NaN price", "https://example.com/product", math.NaN()},
		{"infinite price", "https://example.com/product", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Track(ctx, 1, tt.url, "Widget", tt.price, nil)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Zero(t, db.inserts, "rejected input must not reach the store")
}

func TestTrackTierLimit(t *testing.T) {
	db := newFakeStore()
	db.addUser(1, 0)
	e := newTestEngine(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := e.Track(ctx, 1, fmt.Sprintf("https://example.com/p/%d", i), "Widget", 10, nil)
		require.NoError(t, err)
	}

	_, err := e.Track(ctx, 1, "https://example.com/p/4", "Widget", 10, nil)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Equal(t, 3, db.inserts, "store unchanged by the rejected fourth product")
	assert.Equal(t, 3, db.users[1].TrackedCount)
}

func TestTrackCounterMatchesActiveProducts(t *testing.T) {
	db := newFakeStore()
	db.addUser(1, 0)
	e := newTestEngine(db)
	ctx := context.Background()

	id1, err := e.Track(ctx, 1, "https://example.com/p/1", "A", 10, nil)
	require.NoError(t, err)
	_, err = e.Track(ctx, 1, "https://example.com/p/2", "B", 20, nil)
	require.NoError(t, err)

	require.NoError(t, e.Untrack(ctx, id1, 1))
	require.NoError(t, e.Untrack(ctx, id1, 1)) // repeat is a no-op

	ps, err := e.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, ps, 1)
	assert.Equal(t, len(ps), db.users[1].TrackedCount)
}

func TestUntrackForeignProductIsNoOp(t *testing.T) {
	db := newFakeStore()
	db.addUser(1, 0)
	db.addUser(2, 0)
	e := newTestEngine(db)
	ctx := context.Background()

	id, err := e.Track(ctx, 1, "https://example.com/p/1", "A", 10, nil)
	require.NoError(t, err)

	require.NoError(t, e.Untrack(ctx, id, 2))
	assert.Equal(t, 1, db.users[1].TrackedCount)
	assert.Equal(t, 0, db.users[2].TrackedCount)
	assert.True(t, db.products[id].Active)
}

func TestRecheckDecisions(t *testing.T) {
	db := newFakeStore()
	db.addUser(1, 0)
	e := newTestEngine(db)
	ctx := context.Background()

	id, err := e.Track(ctx, 1, "https://example.com/p/1", "A", 100, nil)
	require.NoError(t, err)

	d, err := e.Recheck(ctx, id, 94)
	require.NoError(t, err)
	assert.Equal(t, ChangedAboveThreshold, d.Kind)
	assert.Equal(t, DirectionDecrease, d.Direction)
	assert.InDelta(t, -6.0, d.PercentChange, 0.0001)
	assert.Equal(t, 100.0, d.PreviousPrice)

	// Identical repeated price: the second recheck is NoChange and leaves
	// the current price alone.
	d, err = e.Recheck(ctx, id, 94)
	require.NoError(t, err)
	assert.Equal(t, NoChange, d.Kind)
	assert.Equal(t, 94.0, *db.products[id].CurrentPrice)

	d, err = e.Recheck(ctx, id, 96)
	require.NoError(t, err)
	assert.Equal(t, ChangedBelowThreshold, d.Kind)
	assert.Equal(t, DirectionIncrease, d.Direction)
}

func TestRecheckRejectsBadPrice(t *testing.T) {
	db := newFakeStore()
	db.addUser(1, 0)
	e := newTestEngine(db)

	_, err := e.Recheck(context.Background(), "product-1", math.NaN())
	assert.ErrorIs(t, err, ErrInvalidInput)
}
