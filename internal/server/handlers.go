package server

import (
	"net/http"

	"fetcha/internal/database"
)

func (s *Server) health() http.HandlerFunc {
	type response struct {
		Status string `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJsonResponse(w, response{Status: "ok"}, http.StatusOK)
	}
}

// stats reports per-region user and tracked-product counts for the
// operators watching how the beta spreads across markets.
func (s *Server) stats() http.HandlerFunc {
	type response struct {
		Regions []database.RegionStats `json:"regions"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID

		regions, err := s.DB.StatsByRegion(r.Context())
		if err != nil {
			s.Logger.Errorf("stats: Error aggregating region stats, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if regions == nil {
			regions = []database.RegionStats{}
		}

		s.writeJsonResponse(w, response{Regions: regions}, http.StatusOK)
	}
}
