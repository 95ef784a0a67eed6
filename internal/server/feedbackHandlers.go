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

const (
	feedbackCategoryFeature  = "feature"
	feedbackCategoryBug      = "bug"
	feedbackCategoryPricing  = "pricing"
	feedbackCategoryPlatform = "platform"
	feedbackCategoryGeneral  = "general"
)

var feedbackCategories = map[string]bool{
	feedbackCategoryFeature:  true,
	feedbackCategoryBug:      true,
	feedbackCategoryPricing:  true,
	feedbackCategoryPlatform: true,
	feedbackCategoryGeneral:  true,
}

// platformsByRegion lists the marketplaces the frontend offers as
// suggestions per market; unknown regions fall back to the generic list.
var platformsByRegion = map[string][]string{
	"usa":       {"Amazon.com", "eBay", "Walmart", "Shopify", "Etsy"},
	"india":     {"Amazon India", "Flipkart", "Meesho", "Snapdeal", "IndiaMART"},
	"indonesia": {"Shopee", "Tokopedia", "Bukalapak", "Lazada", "Blibli"},
	"russia":    {"Wildberries", "Ozon", "Yandex Market", "AliExpress", "Lamoda"},
	"brazil":    {"Mercado Livre", "Americanas", "Shopee Brazil", "Amazon Brazil", "Magalu"},
	"australia": {"eBay.com.au", "Amazon.com.au", "Bunnings", "Kogan", "Catch"},
}

var platformsDefault = []string{"Amazon", "eBay", "Shopify", "Other"}

func platformOptions(region string) []string {
	if ps, ok := platformsByRegion[region]; ok {
		return ps
	}
	return platformsDefault
}

// feedbackStart opens a feedback conversation for the user: the session
// moves to AwaitingPlatform for the platform category and straight to
// AwaitingFeedbackText for every other one. A feedback conversation that
// was already open is discarded and restarted.
func (s *Server) feedbackStart() http.HandlerFunc {
	type request struct {
		UserID   int64  `json:"user_id"`
		Category string `json:"category"`
	}
	type response struct {
		State           session.State `json:"state"`
		PlatformOptions []string      `json:"platform_options,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("feedbackStart: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.UserID == 0 || !feedbackCategories[req.Category] {
			s.Logger.Debugf("feedbackStart: Missing user_id or unknown category: %s, TraceID: %s", req.Category, tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		sess := session.New(req.UserID)
		sess.FeedbackCategory = req.Category
		categoryEvent := session.EventCategoryChosen
		if req.Category == feedbackCategoryPlatform {
			categoryEvent = session.EventPlatformCategoryChosen
		}
		if err := sess.Apply(session.EventFeedbackStarted); err != nil {
			s.Logger.Errorf("feedbackStart: Error applying session event for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if err := sess.Apply(categoryEvent); err != nil {
			s.Logger.Errorf("feedbackStart: Error applying category event for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if err := s.Sessions.Put(r.Context(), sess); err != nil {
			s.Logger.Errorf("feedbackStart: Error storing session for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		resp := response{State: sess.State}
		if sess.State == session.StateAwaitingPlatform {
			resp.PlatformOptions = platformOptions(s.userRegion(r, req.UserID))
		}
		s.Logger.Debugf("feedbackStart: UserID: %d started %s feedback, TraceID: %s", req.UserID, req.Category, tid)
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s *Server) feedbackPlatform() http.HandlerFunc {
	type request struct {
		UserID   int64  `json:"user_id"`
		Platform string `json:"platform"`
	}
	type response struct {
		State session.State `json:"state"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("feedbackPlatform: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.UserID == 0 || req.Platform == "" {
			s.Logger.Debugf("feedbackPlatform: Missing user_id or platform, TraceID: %s", tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		sess, err := s.Sessions.Get(r.Context(), req.UserID)
		if err != nil {
			s.Logger.Errorf("feedbackPlatform: Error getting session for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if err := sess.Apply(session.EventPlatformChosen); err != nil {
			s.Logger.Debugf("feedbackPlatform: Invalid transition for UserID: %d in state: %d, TraceID: %s", req.UserID, sess.State, tid)
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			return
		}
		sess.FeedbackPlatform = req.Platform
		if err := s.Sessions.Put(r.Context(), sess); err != nil {
			s.Logger.Errorf("feedbackPlatform: Error storing session for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		s.writeJsonResponse(w, response{State: sess.State}, http.StatusOK)
	}
}

// feedbackMessage consumes the conversation: the free-text description is
// appended as a FeatureRequest tagged with the session's category and
// platform and the user's region, then the session is cleared.
func (s *Server) feedbackMessage() http.HandlerFunc {
	type request struct {
		UserID      int64  `json:"user_id"`
		Description string `json:"description"`
	}
	type response struct {
		Category string `json:"category"`
		Platform string `json:"platform,omitempty"`
		Region   string `json:"region"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("feedbackMessage: Error decoding JSON, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.UserID == 0 || req.Description == "" {
			s.Logger.Debugf("feedbackMessage: Missing user_id or description, TraceID: %s", tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		sess, err := s.Sessions.Get(r.Context(), req.UserID)
		if err != nil {
			s.Logger.Errorf("feedbackMessage: Error getting session for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if err := sess.Apply(session.EventTextSubmitted); err != nil {
			s.Logger.Debugf("feedbackMessage: Invalid transition for UserID: %d in state: %d, TraceID: %s", req.UserID, sess.State, tid)
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			return
		}

		region := s.userRegion(r, req.UserID)
		fr := model.FeatureRequest{
			UserID:      req.UserID,
			Region:      region,
			Category:    sess.FeedbackCategory,
			Platform:    sess.FeedbackPlatform,
			Description: req.Description,
		}
		if err := s.DB.FeatureRequestInsert(r.Context(), fr); err != nil {
			s.Logger.Errorf("feedbackMessage: Error inserting FeatureRequest for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if err := s.Sessions.Clear(r.Context(), req.UserID); err != nil {
			s.Logger.Errorf("feedbackMessage: Error clearing session for UserID: %d, err: %v, TraceID: %s", req.UserID, err, tid)
		}

		s.Logger.Infof("feedbackMessage: Saved %s feedback from UserID: %d, region: %s, TraceID: %s",
			fr.Category, req.UserID, region, tid)
		s.writeJsonResponse(w, response{Category: fr.Category, Platform: fr.Platform, Region: region}, http.StatusOK)
	}
}

func (s *Server) feedbackPlatformOptions() http.HandlerFunc {
	type response struct {
		Region    string   `json:"region"`
		Platforms []string `json:"platforms"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID

		userID, err := parseUserID(mux.Vars(r)["userID"])
		if err != nil {
			s.Logger.Debugf("feedbackPlatformOptions: Bad userID: %s, TraceID: %s", mux.Vars(r)["userID"], tid)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		region := s.userRegion(r, userID)
		s.writeJsonResponse(w, response{Region: region, Platforms: platformOptions(region)}, http.StatusOK)
	}
}

// userRegion looks up the user's region for tagging, falling back to
// unknown when the user is absent.
func (s *Server) userRegion(r *http.Request, userID int64) string {
	u, err := s.DB.UserFindByID(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			s.Logger.Errorf("userRegion: Error finding User with ID: %d, err: %v", userID, err)
		}
		return model.RegionUnknown
	}
	if u.Region == "" {
		return model.RegionUnknown
	}
	return u.Region
}
