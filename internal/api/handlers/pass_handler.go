package handlers

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"mispricing-detector/internal/pipeline"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PassRunner is the subset of *pipeline.Pipeline the HTTP layer drives.
type PassRunner interface {
	RunPass(ctx context.Context) (pipeline.Counters, error)
}

// PassHandler triggers one detection pass on demand (§4.9: the scheduler
// has no self-trigger ticker in the default config, so an external caller
// - a cron job, a supervisor - drives passes over this endpoint).
type PassHandler struct {
	pipeline PassRunner
	logger   *zap.Logger
}

func NewPassHandler(p PassRunner, logger *zap.Logger) *PassHandler {
	return &PassHandler{pipeline: p, logger: logger}
}

// RunPass - POST /api/v1/pass. Returns the pass's Counters as JSON.
func (h *PassHandler) RunPass(w http.ResponseWriter, r *http.Request) {
	counters, err := h.pipeline.RunPass(r.Context())
	if err != nil {
		h.logger.Error("pass failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, counters)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// response already started; nothing left to do but log at the call site.
		return
	}
}
