// Package session models the per-user conversational state the chat
// frontend needs between messages as an explicit finite state machine,
// persisted with a TTL so abandoned conversations expire on their own.
package session

import "github.com/pkg/errors"

type State int

const (
	StateIdle State = iota
	StateAwaitingRegion
	StateAwaitingFeedbackCategory
	StateAwaitingPlatform
	StateAwaitingFeedbackText
)

type Event int

const (
	EventRegistrationStarted Event = iota
	EventRegionChosen
	EventFeedbackStarted
	EventCategoryChosen
	EventPlatformCategoryChosen
	EventPlatformChosen
	EventTextSubmitted
)

var ErrInvalidTransition = errors.New("invalid session transition")

// transitions is the complete table; anything not listed is invalid.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventRegistrationStarted: StateAwaitingRegion,
		EventFeedbackStarted:     StateAwaitingFeedbackCategory,
	},
	StateAwaitingRegion: {
		EventRegionChosen: StateIdle,
	},
	StateAwaitingFeedbackCategory: {
		EventCategoryChosen:         StateAwaitingFeedbackText,
		EventPlatformCategoryChosen: StateAwaitingPlatform,
	},
	StateAwaitingPlatform: {
		EventPlatformChosen: StateAwaitingFeedbackText,
	},
	StateAwaitingFeedbackText: {
		EventTextSubmitted: StateIdle,
	},
}

func Transition(s State, ev Event) (State, error) {
	next, ok := transitions[s][ev]
	if !ok {
		return s, errors.Wrapf(ErrInvalidTransition, "state: %d, event: %d", s, ev)
	}
	return next, nil
}

// Session is one user's conversation state plus the data accumulated on
// the way through the feedback flow.
type Session struct {
	UserID           int64  `json:"user_id"`
	State            State  `json:"state"`
	FeedbackCategory string `json:"feedback_category,omitempty"`
	FeedbackPlatform string `json:"feedback_platform,omitempty"`
}

func New(userID int64) Session {
	return Session{UserID: userID, State: StateIdle}
}

// Apply advances the session through the transition table in place.
func (s *Session) Apply(ev Event) error {
	next, err := Transition(s.State, ev)
	if err != nil {
		return err
	}
	s.State = next
	return nil
}
