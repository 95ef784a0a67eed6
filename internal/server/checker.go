package server

import (
	"context"

	"golang.org/x/time/rate"

	"fetcha/internal/misc"
	"fetcha/internal/model"
	"fetcha/internal/tracker"
)

// CheckAllPrices runs one re-check cycle: every active product across all
// users is visited exactly once, paced by CheckPace so the extractor is
// not hammered. A failing product is logged and skipped; it never aborts
// the cycle. Cycles are serialized: a call that arrives while one is
// running returns immediately.
func (s *Server) CheckAllPrices(ctx context.Context) {
	if !s.checkMu.TryLock() {
		s.Logger.Warn("CheckAllPrices: Previous cycle still running, skipping this run")
		return
	}
	defer s.checkMu.Unlock()

	s.Logger.Info("CheckAllPrices: Starting re-check cycle over all active TrackedProducts")
	ps, err := s.DB.ProductsFindAllActive(ctx)
	if err != nil {
		s.Logger.Errorf("CheckAllPrices: Error getting active TrackedProducts from DB, err: %v", err)
		return
	}
	s.Logger.Infof("CheckAllPrices: Retrieved %d active TrackedProduct(s) from DB", len(ps))

	limiter := rate.NewLimiter(rate.Every(s.CheckPace), 1)
	checked, notified := 0, 0
	for _, p := range ps {
		if err := limiter.Wait(ctx); err != nil {
			s.Logger.Infof("CheckAllPrices: Cycle aborted after %d of %d product(s), err: %v", checked, len(ps), err)
			return
		}
		ok, sent := s.checkProduct(ctx, p)
		if ok {
			checked++
		}
		if sent {
			notified++
		}
	}
	s.Logger.Infof("CheckAllPrices: Finished cycle, products: %d, checked: %d, notified: %d", len(ps), checked, notified)
}

func (s *Server) checkProduct(ctx context.Context, p model.TrackedProduct) (checked bool, notified bool) {
	productName := misc.StringLimit(p.Name, 45)
	s.Logger.Debugf("checkProduct: Checking price for Product: %s, ID: %s", productName, p.ID.Hex())

	ectx, cancel := context.WithTimeout(ctx, s.ExtractTimeout)
	defer cancel()
	res, err := s.Extractor.ExtractProduct(ectx, p.URL)
	if err != nil {
		s.Logger.Errorf("checkProduct: Error extracting Product: %s, ID: %s, url: %s, err: %v",
			productName, p.ID.Hex(), p.URL, err)
		return false, false
	}

	d, err := s.Tracker.Recheck(ctx, p.ID.Hex(), res.Price)
	if err != nil {
		s.Logger.Errorf("checkProduct: Error recording price check for Product: %s, ID: %s, err: %v",
			productName, p.ID.Hex(), err)
		return false, false
	}

	switch d.Kind {
	case tracker.NoChange:
		s.Logger.Debugf("checkProduct: No price change for Product: %s, ID: %s, price: %.2f",
			productName, p.ID.Hex(), d.NewPrice)
	case tracker.ChangedBelowThreshold:
		s.Logger.Infof("checkProduct: Price change below threshold for Product: %s, ID: %s, %.2f -> %.2f (%+.1f%%), will not notify",
			productName, p.ID.Hex(), d.PreviousPrice, d.NewPrice, d.PercentChange)
	case tracker.ChangedAboveThreshold:
		s.Logger.Infof("checkProduct: Significant price change for Product: %s, ID: %s, %.2f -> %.2f (%+.1f%%)",
			productName, p.ID.Hex(), d.PreviousPrice, d.NewPrice, d.PercentChange)
		if err := s.notifyPriceChange(ctx, p, d); err != nil {
			s.Logger.Errorf("checkProduct: Error notifying owner: %d for Product: %s, ID: %s, err: %v",
				p.OwnerID, productName, p.ID.Hex(), err)
			return true, false
		}
		return true, true
	}
	return true, false
}
