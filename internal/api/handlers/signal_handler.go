package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"mispricing-detector/internal/models"
)

// SignalLister is the read surface the dashboard needs into the persisted
// signal set; satisfied by *repository.SignalRepository.
type SignalLister interface {
	ListActive(ctx context.Context) ([]*models.SignalOpportunity, error)
}

// SignalHandler exposes the currently-active signal set to a dashboard or
// notification consumer. The detector itself never serves trade execution;
// this is a read-only view (§1 "does not place trades").
type SignalHandler struct {
	signals SignalLister
	logger  *zap.Logger
}

func NewSignalHandler(signals SignalLister, logger *zap.Logger) *SignalHandler {
	return &SignalHandler{signals: signals, logger: logger}
}

// ListActive - GET /api/v1/signals.
func (h *SignalHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	signals, err := h.signals.ListActive(r.Context())
	if err != nil {
		h.logger.Error("failed to list active signals", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, signals)
}
