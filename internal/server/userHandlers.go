package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"fetcha/internal/model"
	"fetcha/internal/session"
)

func (s *Server) userRegister() http.HandlerFunc {
	type request struct {
		UserID      int64  `json:"user_id"`
		DisplayName string `json:"display_name"`
		LanguageTag string `json:"language_tag"`
	}
	type response struct {
		model.User
		NeedsRegion bool `json:"needs_region"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userRegister: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.UserID == 0 {
			s.Logger.Debugf("userRegister: Missing user_id, TraceID: %s", tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		u := model.User{
			ID:          req.UserID,
			DisplayName: req.DisplayName,
			LanguageTag: req.LanguageTag,
		}
		if err := s.DB.UserUpsert(r.Context(), u); err != nil {
			s.Logger.Errorf("userRegister: Error upserting User with ID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		stored, err := s.DB.UserFindByID(r.Context(), req.UserID)
		if err != nil {
			s.Logger.Errorf("userRegister: Error finding User with ID: %d after upsert, err: %v, TraceID: %s", req.UserID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		needsRegion := stored.Region == model.RegionUnknown
		if needsRegion {
			sess := session.New(req.UserID)
			if err := sess.Apply(session.EventRegistrationStarted); err != nil {
				s.Logger.Errorf("userRegister: Error applying session event for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if err := s.Sessions.Put(r.Context(), sess); err != nil {
				s.Logger.Errorf("userRegister: Error storing session for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		}

		s.Logger.Debugf("userRegister: Registered UserID: %d, needsRegion: %t, TraceID: %s", req.UserID, needsRegion, tid)
		s.writeJsonResponse(w, response{User: stored, NeedsRegion: needsRegion}, http.StatusOK)
	}
}

func (s *Server) userRegionSet() http.HandlerFunc {
	type request struct {
		UserID int64  `json:"user_id"`
		Region string `json:"region"`
	}
	type response struct {
		Region string `json:"region"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userRegionSet: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.UserID == 0 || req.Region == "" {
			s.Logger.Debugf("userRegionSet: Missing user_id or region, TraceID: %s", tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		if err := s.DB.UserRegionUpdate(r.Context(), req.UserID, req.Region); err != nil {
			s.Logger.Errorf("userRegionSet: Error updating region for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		// Consume an AwaitingRegion session if one is open; setting the
		// region outside the registration flow is fine too.
		sess, err := s.Sessions.Get(r.Context(), req.UserID)
		if err != nil {
			s.Logger.Errorf("userRegionSet: Error getting session for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
		} else if sess.State == session.StateAwaitingRegion {
			if err := s.Sessions.Clear(r.Context(), req.UserID); err != nil {
				s.Logger.Errorf("userRegionSet: Error clearing session for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
			}
		}

		s.Logger.Debugf("userRegionSet: Set region: %s for UserID: %d, TraceID: %s", req.Region, req.UserID, tid)
		s.writeJsonResponse(w, response{Region: req.Region}, http.StatusOK)
	}
}

func (s *Server) userInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID

		userID, err := parseUserID(mux.Vars(r)["userID"])
		if err != nil {
			s.Logger.Debugf("userInfo: Bad userID: %s, err: %v, TraceID: %s", mux.Vars(r)["userID"], err, tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		u, err := s.DB.UserFindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("userInfo: Error finding User with ID: %d, err: %v, TraceID: %s", userID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		s.writeJsonResponse(w, u, http.StatusOK)
	}
}
