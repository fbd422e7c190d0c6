package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mispricing-detector/internal/api/handlers"
	"mispricing-detector/internal/api/middleware"
)

// Dependencies holds everything the API layer needs to build its handlers.
type Dependencies struct {
	Pass    handlers.PassRunner
	Signals handlers.SignalLister
}

// SetupRoutes wires the scheduler's HTTP surface:
//
//	POST /api/v1/pass     - trigger one detection pass, returns its Counters
//	GET  /api/v1/signals  - list currently-active signals
//	GET  /healthz         - liveness probe
//	GET  /metrics         - Prometheus scrape endpoint
//
// Middleware order: Recovery, Logging, CORS - applied to every route.
func SetupRoutes(deps Dependencies, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	router.Use(middleware.CORS)

	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	if deps.Pass != nil {
		passHandler := handlers.NewPassHandler(deps.Pass, logger)
		apiV1.HandleFunc("/pass", passHandler.RunPass).Methods(http.MethodPost)
	}

	if deps.Signals != nil {
		signalHandler := handlers.NewSignalHandler(deps.Signals, logger)
		apiV1.HandleFunc("/signals", signalHandler.ListActive).Methods(http.MethodGet)
	}

	router.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
