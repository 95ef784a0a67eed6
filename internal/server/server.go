package server

import (
	"context"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"

	"fetcha/internal/client"
	"fetcha/internal/database"
	"fetcha/internal/model"
	"fetcha/internal/session"
	"fetcha/internal/tracker"
)

// Server wires the tracking engine, the price store, the session store,
// and the outbound collaborators behind the HTTP API used by the chat
// frontend, and drives the periodic re-check cycle.
type Server struct {
	DB             Store
	Tracker        tracker.Engine
	Sessions       session.Store
	Extractor      Extractor
	Notifier       Notifier
	Logger         logger
	AuthSecretKey  jwk.Key
	ExtractTimeout time.Duration
	CheckPace      time.Duration

	checkMu sync.Mutex
}

// Store is the slice of the price store the API and the checker need on
// top of what the tracking engine already covers. Satisfied by
// database.Database.
type Store interface {
	UserUpsert(ctx context.Context, u model.User) error
	UserRegionUpdate(ctx context.Context, userID int64, region string) error
	UserFindByID(ctx context.Context, userID int64) (model.User, error)
	ProductFindOne(ctx context.Context, productID string) (model.TrackedProduct, error)
	ProductsFindAllActive(ctx context.Context) ([]model.TrackedProduct, error)
	ObservationsFind(ctx context.Context, productID string) ([]model.PriceObservation, error)
	ObservationsFindRange(ctx context.Context, productID string, start time.Time, end time.Time) ([]model.PriceObservation, error)
	FeatureRequestInsert(ctx context.Context, fr model.FeatureRequest) error
	StatsByRegion(ctx context.Context) ([]database.RegionStats, error)
}

// Extractor is the external extraction collaborator. Satisfied by
// client.Client.
type Extractor interface {
	ExtractProduct(ctx context.Context, url string) (client.ExtractResult, error)
}

// Notifier is the delivery collaborator for price alerts. Satisfied by
// client.Client.
type Notifier interface {
	SendPriceAlert(ctx context.Context, alert client.PriceAlert) error
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Warn(v ...any)
	Error(v ...any)
	Tracef(format string, v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}
