package server

import (
	"context"

	"fetcha/internal/client"
	"fetcha/internal/model"
	"fetcha/internal/tracker"
)

// notifyPriceChange hands a significant change to the delivery
// collaborator. Only the decision of whether and with what to notify is
// made here; delivery mechanics belong to the collaborator.
func (s *Server) notifyPriceChange(ctx context.Context, p model.TrackedProduct, d tracker.ChangeDecision) error {
	alert := client.PriceAlert{
		RecipientID:   p.OwnerID,
		ProductName:   p.Name,
		PreviousPrice: d.PreviousPrice,
		NewPrice:      d.NewPrice,
		PercentChange: d.PercentChange,
		URL:           p.URL,
	}
	return s.Notifier.SendPriceAlert(ctx, alert)
}
