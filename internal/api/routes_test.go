package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"mispricing-detector/internal/pipeline"
)

type stubPassRunner struct{}

func (stubPassRunner) RunPass(ctx context.Context) (pipeline.Counters, error) {
	return pipeline.Counters{EventsPolled: 1}, nil
}

func TestSetupRoutes_Healthz(t *testing.T) {
	router := SetupRoutes(Dependencies{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestSetupRoutes_Metrics(t *testing.T) {
	router := SetupRoutes(Dependencies{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestSetupRoutes_PassRouteOnlyRegisteredWhenDepsSet(t *testing.T) {
	router := SetupRoutes(Dependencies{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pass", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when no Pass dependency is wired, got %d", w.Code)
	}
}

func TestSetupRoutes_PassRouteDispatches(t *testing.T) {
	router := SetupRoutes(Dependencies{Pass: stubPassRunner{}}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pass", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
