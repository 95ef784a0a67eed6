package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.maxBytesMw, s.loggingMw)

	r.HandleFunc("/health", s.health()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authMw)

	api.HandleFunc("/user/register", s.userRegister()).Methods(http.MethodPost)
	api.HandleFunc("/user/region", s.userRegionSet()).Methods(http.MethodPost)
	api.HandleFunc("/user/info/{userID}", s.userInfo()).Methods(http.MethodGet)

	api.HandleFunc("/product/track", s.productTrack()).Methods(http.MethodPost)
	api.HandleFunc("/product/list/{userID}", s.productList()).Methods(http.MethodGet)
	api.HandleFunc("/product/untrack", s.productUntrack()).Methods(http.MethodPost)
	api.HandleFunc("/product/history/{productID}", s.productHistory()).Methods(http.MethodPost)

	api.HandleFunc("/feedback/start", s.feedbackStart()).Methods(http.MethodPost)
	api.HandleFunc("/feedback/platform", s.feedbackPlatform()).Methods(http.MethodPost)
	api.HandleFunc("/feedback/message", s.feedbackMessage()).Methods(http.MethodPost)
	api.HandleFunc("/feedback/platforms/{userID}", s.feedbackPlatformOptions()).Methods(http.MethodGet)

	api.HandleFunc("/stats", s.stats()).Methods(http.MethodGet)

	api.PathPrefix("").Handler(s.notFoundHandler())

	return r
}
