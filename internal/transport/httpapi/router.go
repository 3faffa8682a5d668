package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// NewRouter собирает API-роутер: вся поверхность живёт под /v1.
func NewRouter(decisions DecisionService, logger *log.Entry) *mux.Router {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	handler := NewRedirectHandler(decisions, logger)

	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)
	router.Use(LoggingMiddleware(logger))

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/redirect/resolve", handler.Resolve).Methods(http.MethodPost)
	v1.HandleFunc("/redirect", handler.Redirect).Methods(http.MethodGet)
	v1.HandleFunc("/products/{productId}", handler.Product).Methods(http.MethodGet)

	return router
}
