package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		event   Event
		want    State
		invalid bool
	}{
		{"registration start", StateIdle, EventRegistrationStarted, StateAwaitingRegion, false},
		{"region chosen", StateAwaitingRegion, EventRegionChosen, StateIdle, false},
		{"feedback start", StateIdle, EventFeedbackStarted, StateAwaitingFeedbackCategory, false},
		{"plain category", StateAwaitingFeedbackCategory, EventCategoryChosen, StateAwaitingFeedbackText, false},
		{"platform category", StateAwaitingFeedbackCategory, EventPlatformCategoryChosen, StateAwaitingPlatform, false},
		{"platform chosen", StateAwaitingPlatform, EventPlatformChosen, StateAwaitingFeedbackText, false},
		{"text submitted", StateAwaitingFeedbackText, EventTextSubmitted, StateIdle, false},
		{"text before category", StateIdle, EventTextSubmitted, StateIdle, true},
		{"platform without platform category", StateAwaitingFeedbackCategory, EventPlatformChosen, StateAwaitingFeedbackCategory, true},
		{"region while awaiting text", StateAwaitingFeedbackText, EventRegionChosen, StateAwaitingFeedbackText, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.event)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, got, "invalid events must not move the state")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	s := New(7)
	require.NoError(t, s.Apply(EventFeedbackStarted))
	require.NoError(t, s.Apply(EventPlatformCategoryChosen))
	require.NoError(t, s.Apply(EventPlatformChosen))
	assert.Equal(t, StateAwaitingFeedbackText, s.State)

	err := s.Apply(EventFeedbackStarted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateAwaitingFeedbackText, s.State)
}

func newTestStore(t *testing.T, ttl time.Duration) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return Store{Client: c, TTL: ttl}, mr
}

func TestStoreRoundTrip(t *testing.T) {
	st, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	s, err := st.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, s.State, "missing session reads as a fresh Idle one")

	require.NoError(t, s.Apply(EventFeedbackStarted))
	s.FeedbackCategory = "platform"
	require.NoError(t, st.Put(ctx, s))

	got, err := st.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingFeedbackCategory, got.State)
	assert.Equal(t, "platform", got.FeedbackCategory)

	require.NoError(t, st.Clear(ctx, 7))
	got, err = st.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, got.State)
}

func TestStoreSessionExpires(t *testing.T) {
	st, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	s := New(7)
	require.NoError(t, s.Apply(EventRegistrationStarted))
	require.NoError(t, st.Put(ctx, s))

	mr.FastForward(2 * time.Minute)

	got, err := st.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, got.State, "expired session falls back to Idle")
}
