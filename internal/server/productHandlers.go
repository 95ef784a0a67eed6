package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"fetcha/internal/client"
	"fetcha/internal/misc"
	"fetcha/internal/model"
	"fetcha/internal/tracker"
)

func (s *Server) productTrack() http.HandlerFunc {
	type request struct {
		UserID     int64    `json:"user_id"`
		URL        string   `json:"url"`
		AlertPrice *float64 `json:"alert_price"`
	}
	type response struct {
		ProductID string  `json:"product_id"`
		Name      string  `json:"name"`
		Price     float64 `json:"price"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("productTrack: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		ectx, cancel := context.WithTimeout(r.Context(), s.ExtractTimeout)
		defer cancel()
		res, err := s.Extractor.ExtractProduct(ectx, req.URL)
		if err != nil {
			if errors.Is(err, client.ErrExtractionFailed) {
				s.Logger.Debugf("productTrack: Extraction failed for url: %s, err: %v, TraceID: %s", req.URL, err, tid)
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("productTrack: Error extracting url: %s, err: %v, TraceID: %s", req.URL, err, tid)
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		productID, err := s.Tracker.Track(r.Context(), req.UserID, req.URL, res.Name, res.Price, req.AlertPrice)
		if err != nil {
			switch {
			case errors.Is(err, tracker.ErrInvalidInput):
				s.Logger.Debugf("productTrack: Invalid input for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			case errors.Is(err, tracker.ErrLimitExceeded):
				s.Logger.Debugf("productTrack: Limit exceeded for UserID: %d, TraceID: %s", req.UserID, tid)
				http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			default:
				s.Logger.Errorf("productTrack: Error tracking url: %s for UserID: %d, err: %v, TraceID: %s", req.URL, req.UserID, err, tid)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			return
		}

		s.Logger.Infof("productTrack: UserID: %d now tracking %s, ProductID: %s, price: %.2f, TraceID: %s",
			req.UserID, misc.StringLimit(res.Name, 45), productID, res.Price, tid)
		s.writeJsonResponse(w, response{ProductID: productID, Name: res.Name, Price: res.Price}, http.StatusOK)
	}
}

func (s *Server) productList() http.HandlerFunc {
	type response struct {
		Count    int                    `json:"count"`
		Products []model.TrackedProduct `json:"products"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID

		userID, err := parseUserID(mux.Vars(r)["userID"])
		if err != nil {
			s.Logger.Debugf("productList: Bad userID: %s, TraceID: %s", mux.Vars(r)["userID"], tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		ps, err := s.Tracker.List(r.Context(), userID)
		if err != nil {
			s.Logger.Errorf("productList: Error listing products for UserID: %d, err: %v, TraceID: %s", userID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if ps == nil {
			ps = []model.TrackedProduct{}
		}

		s.writeJsonResponse(w, response{Count: len(ps), Products: ps}, http.StatusOK)
	}
}

func (s *Server) productUntrack() http.HandlerFunc {
	type request struct {
		UserID    int64  `json:"user_id"`
		ProductID string `json:"product_id"`
	}
	type response struct {
		ProductID string `json:"product_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("productUntrack: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		if err := s.Tracker.Untrack(r.Context(), req.ProductID, req.UserID); err != nil {
			s.Logger.Errorf("productUntrack: Error untracking ProductID: %s for UserID: %d, err: %v, TraceID: %s",
				req.ProductID, req.UserID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		s.Logger.Debugf("productUntrack: UserID: %d untracked ProductID: %s, TraceID: %s", req.UserID, req.ProductID, tid)
		s.writeJsonResponse(w, response{ProductID: req.ProductID}, http.StatusOK)
	}
}

func (s *Server) productHistory() http.HandlerFunc {
	type request struct {
		Start *time.Time `json:"start"`
		End   *time.Time `json:"end"`
	}
	type response struct {
		ProductID    string                   `json:"product_id"`
		Observations []model.PriceObservation `json:"observations"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		productID := mux.Vars(r)["productID"]

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("productHistory: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		var os []model.PriceObservation
		var err error
		if req.Start != nil && req.End != nil {
			os, err = s.DB.ObservationsFindRange(r.Context(), productID, *req.Start, *req.End)
		} else {
			os, err = s.DB.ObservationsFind(r.Context(), productID)
		}
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("productHistory: Error finding PriceObservations for ProductID: %s, err: %v, TraceID: %s",
				productID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if os == nil {
			os = []model.PriceObservation{}
		}

		s.writeJsonResponse(w, response{ProductID: productID, Observations: os}, http.StatusOK)
	}
}
