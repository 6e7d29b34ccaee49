package handler

import (
	"log/slog"
	"net/http"

	"github.com/afftrack/afftrack/internal/handler/dto"
	"github.com/afftrack/afftrack/internal/service"
)

// StatsHandler serves the aggregate snapshot.
type StatsHandler struct {
	svc    *service.StatsService
	logger *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(svc *service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		svc:    svc,
		logger: logger,
	}
}

// Get handles GET /affiliate-stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.svc.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("stats_snapshot_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStatsResponse(snapshot))
}
