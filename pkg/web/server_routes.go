package web

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) setupHandler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/login", s.loginRateLimitMiddleware(s.loginHandler)).Methods(http.MethodPost)
	api.HandleFunc("/scans", s.jwtAuthMiddleware(s.scanCreateHandler)).Methods(http.MethodPost)
	api.HandleFunc("/scans", s.jwtAuthMiddleware(s.scanListHandler)).Methods(http.MethodGet)
	api.HandleFunc("/scans/{id}", s.jwtAuthMiddleware(s.scanGetHandler)).Methods(http.MethodGet)
	api.HandleFunc("/scans/{id}/stop", s.jwtAuthMiddleware(s.scanStopHandler)).Methods(http.MethodPost)
	api.HandleFunc("/monitor", s.jwtAuthMiddleware(s.monitorHandler)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, APIResponse{Success: false, Message: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, APIResponse{Success: false, Message: "method not allowed"})
	})

	// 为所有路由增加安全响应头
	return secureHeadersMiddleware(r)
}
