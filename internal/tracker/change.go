package tracker

import (
	"math"

	"fetcha/internal/model"
)

type ChangeKind int

const (
	// NoChange covers the first observation, movements within the price
	// epsilon, and a previous price of zero (no meaningful percentage).
	NoChange ChangeKind = iota
	// ChangedBelowThreshold is a real movement too small to notify on.
	ChangedBelowThreshold
	// ChangedAboveThreshold is the only kind that triggers a user-facing
	// notification.
	ChangedAboveThreshold
)

type Direction int

const (
	DirectionNone Direction = iota
	DirectionIncrease
	DirectionDecrease
)

// ChangeDecision classifies the outcome of one price check.
type ChangeDecision struct {
	Kind          ChangeKind
	Direction     Direction
	PercentChange float64
	PreviousPrice float64
	NewPrice      float64
}

// EvaluateChange decides whether newPrice constitutes a change against
// previous and whether it crosses thresholdPercent. Pure, no side effects;
// a nil previous means the product had no prior price.
func EvaluateChange(previous *float64, newPrice float64, thresholdPercent float64) ChangeDecision {
	d := ChangeDecision{Kind: NoChange, NewPrice: newPrice}
	if previous == nil {
		d.PreviousPrice = newPrice
		return d
	}

	d.PreviousPrice = *previous
	if math.Abs(*previous-newPrice) <= model.PriceEpsilon {
		return d
	}
	if *previous == 0 {
		return d
	}

	d.PercentChange = (newPrice - *previous) / *previous * 100
	if newPrice < *previous {
		d.Direction = DirectionDecrease
	} else {
		d.Direction = DirectionIncrease
	}

	if math.Abs(d.PercentChange) >= thresholdPercent {
		d.Kind = ChangedAboveThreshold
	} else {
		d.Kind = ChangedBelowThreshold
	}
	return d
}
