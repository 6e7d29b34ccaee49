package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/afftrack/afftrack/internal/handler/dto"
	"github.com/afftrack/afftrack/internal/service"
)

// AnalyticsHandler handles click recording and listing.
type AnalyticsHandler struct {
	svc    *service.AnalyticsService
	logger *slog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		svc:    svc,
		logger: logger,
	}
}

// Record handles POST /click-analytics.
// Ingestion is public: landing pages beacon clicks from the browser.
func (h *AnalyticsHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing required fields", missingFields(err))
		return
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = r.UserAgent()
	}
	referrer := req.Referrer
	if referrer == "" {
		referrer = r.Referer()
	}

	input := service.RecordClickInput{
		LinkID:    req.LinkID,
		UserAgent: userAgent,
		Referrer:  referrer,
		IPAddress: clientIP(r),
		Device:    req.Device,
		Converted: req.Converted,
	}

	event, err := h.svc.RecordClick(r.Context(), input)
	if err != nil {
		h.logger.Error("record_click_failed", "link_id", req.LinkID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToClickEventResponse(event))
}

// List handles GET /click-analytics with an optional linkId filter.
func (h *AnalyticsHandler) List(w http.ResponseWriter, r *http.Request) {
	linkID := r.URL.Query().Get("linkId")

	events, err := h.svc.ListClicks(r.Context(), linkID)
	if err != nil {
		h.logger.Error("list_clicks_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToClickEventListResponse(events))
}

// clientIP extracts the client address without the port.
// chi's RealIP middleware has already resolved forwarding headers.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
