package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(f float64) *float64 { return &f }

func TestEvaluateChange(t *testing.T) {
	tests := []struct {
		name          string
		previous      *float64
		newPrice      float64
		wantKind      ChangeKind
		wantDirection Direction
		wantPercent   float64
	}{
		{
			name:          "drop past threshold",
			previous:      floatPtr(100),
			newPrice:      94,
			wantKind:      ChangedAboveThreshold,
			wantDirection: DirectionDecrease,
			wantPercent:   -6.0,
		},
		{
			name:          "rise past threshold",
			previous:      floatPtr(100),
			newPrice:      110,
			wantKind:      ChangedAboveThreshold,
			wantDirection: DirectionIncrease,
			wantPercent:   10.0,
		},
		{
			name:          "drop below threshold",
			previous:      floatPtr(100),
			newPrice:      97,
			wantKind:      ChangedBelowThreshold,
			wantDirection: DirectionDecrease,
			wantPercent:   -3.0,
		},
		{
			name:          "exactly at threshold",
			previous:      floatPtr(100),
			newPrice:      95,
			wantKind:      ChangedAboveThreshold,
			wantDirection: DirectionDecrease,
			wantPercent:   -5.0,
		},
		{
			name:     "first observation never notifies",
			previous: nil,
			newPrice: 50,
			wantKind: NoChange,
		},
		{
			name:     "movement within epsilon",
			previous: floatPtr(100),
			newPrice: 100.01,
			wantKind: NoChange,
		},
		{
			name:     "identical price",
			previous: floatPtr(100),
			newPrice: 100,
			wantKind: NoChange,
		},
		{
			name:     "zero previous price division guard",
			previous: floatPtr(0),
			newPrice: 10,
			wantKind: NoChange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := EvaluateChange(tt.previous, tt.newPrice, 5)
			assert.Equal(t, tt.wantKind, d.Kind)
			assert.Equal(t, tt.newPrice, d.NewPrice)
			if tt.wantKind == NoChange {
				assert.Equal(t, DirectionNone, d.Direction)
				return
			}
			assert.Equal(t, tt.wantDirection, d.Direction)
			assert.InDelta(t, tt.wantPercent, d.PercentChange, 0.0001)
			assert.Equal(t, *tt.previous, d.PreviousPrice)
		})
	}
}

func TestEvaluateChangeFirstObservationEchoesNewPrice(t *testing.T) {
	d := EvaluateChange(nil, 50, 5)
	assert.Equal(t, 50.0, d.PreviousPrice)
}
