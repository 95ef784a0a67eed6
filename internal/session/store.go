package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/pkg/errors"
)

// Store keeps sessions in Redis keyed by user id. A session is created on
// first need, overwritten on every transition, and expires after TTL of
// inactivity.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

// Get returns the user's session, or a fresh Idle one if none is stored.
func (st Store) Get(ctx context.Context, userID int64) (Session, error) {
	b, err := st.Client.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return New(userID), nil
		}
		return Session{}, errors.Wrapf(err, "error getting session for UserID: %d", userID)
	}

	var s Session
	if err = json.Unmarshal(b, &s); err != nil {
		return Session{}, errors.Wrapf(err, "error unmarshalling session for UserID: %d, data: %s", userID, b)
	}
	return s, nil
}

// Put stores the session and resets its expiry.
func (st Store) Put(ctx context.Context, s Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return errors.Wrapf(err, "error marshalling session for UserID: %d", s.UserID)
	}
	err = st.Client.Set(ctx, sessionKey(s.UserID), b, st.TTL).Err()
	return errors.Wrapf(err, "error storing session for UserID: %d", s.UserID)
}

// Clear removes the session, returning the user to Idle.
func (st Store) Clear(ctx context.Context, userID int64) error {
	err := st.Client.Del(ctx, sessionKey(userID)).Err()
	return errors.Wrapf(err, "error clearing session for UserID: %d", userID)
}
